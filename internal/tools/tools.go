// Package tools implements the MCP tool surface for campaign and task
// management.
//
// Each tool couples an mcp.Tool definition with a handler that parses the
// argument map, calls the matching engine operation, and serializes the
// domain.Result as a YAML envelope. Tools never touch the store directly;
// everything goes through the engine services.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/taskcrusade/crusader/internal/engine"
)

// Handler is the mcp-go call signature shared by every tool.
type Handler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Tool pairs a definition with its handler for registration.
type Tool struct {
	Def    mcp.Tool
	Handle Handler
}

// Deps carries the engine services the tools dispatch to.
type Deps struct {
	Tasks     *engine.TaskService
	Campaigns *engine.CampaignService
}

// All returns every registered tool. The name set is closed: agents drive
// the tracker exclusively through these.
func All(d Deps) []Tool {
	var out []Tool
	out = append(out, campaignTools(d.Campaigns)...)
	out = append(out, taskTools(d.Tasks)...)
	out = append(out, criteriaTools(d.Tasks)...)
	out = append(out, researchTools(d.Tasks)...)
	out = append(out, noteTools(d.Tasks)...)
	out = append(out, testingTools(d.Tasks)...)
	return out
}
