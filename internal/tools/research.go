package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/taskcrusade/crusader/internal/engine"
)

// researchTools returns the task research tool set.
func researchTools(svc *engine.TaskService) []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("task_research_add",
				mcp.WithDescription("Attach a research item to a task: findings, approaches, options, "+
					"or anything worth remembering while implementing."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("content", mcp.Required(), mcp.Description("Research content")),
				mcp.WithString("research_type", mcp.Description("Research type (default findings)")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				content := req.GetString("content", "")
				if content == "" {
					return missingArg("content")
				}
				return respond(svc.AddResearch(id, content, strArg(req, "research_type", "type")))
			},
		},
		{
			Def: mcp.NewTool("task_research_list",
				mcp.WithDescription("List a task's research items in order."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				return respond(svc.ListResearch(id))
			},
		},
		{
			Def: mcp.NewTool("task_research_show",
				mcp.WithDescription("Get a single research item."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("research_id", mcp.Required(), mcp.Description("Research item ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				rid := req.GetString("research_id", "")
				if rid == "" {
					return missingArg("research_id")
				}
				return respond(svc.GetResearch(id, rid))
			},
		},
		{
			Def: mcp.NewTool("task_research_update",
				mcp.WithDescription("Rewrite a research item's content and/or type."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("research_id", mcp.Required(), mcp.Description("Research item ID")),
				mcp.WithString("content", mcp.Description("New content")),
				mcp.WithString("research_type", mcp.Description("New research type")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				rid := req.GetString("research_id", "")
				if rid == "" {
					return missingArg("research_id")
				}
				return respond(svc.UpdateResearch(id, rid,
					optStrArg(req, "content"), optStrArg(req, "research_type")))
			},
		},
		{
			Def: mcp.NewTool("task_research_delete",
				mcp.WithDescription("Delete a research item from a task."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("research_id", mcp.Required(), mcp.Description("Research item ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				rid := req.GetString("research_id", "")
				if rid == "" {
					return missingArg("research_id")
				}
				return respond(svc.DeleteResearch(id, rid))
			},
		},
		{
			Def: mcp.NewTool("task_research_reorder",
				mcp.WithDescription("Move a research item to a new position in the list."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("research_id", mcp.Required(), mcp.Description("Research item ID")),
				mcp.WithNumber("new_order", mcp.Required(), mcp.Description("New order index (1-based)")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				rid := req.GetString("research_id", "")
				if rid == "" {
					return missingArg("research_id")
				}
				return respond(svc.ReorderResearch(id, rid, intArg(req, "new_order", 0)))
			},
		},
	}
}
