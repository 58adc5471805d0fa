package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/taskcrusade/crusader/internal/domain"
	"github.com/taskcrusade/crusader/internal/redact"
)

// respond serializes a domain.Result as the YAML envelope every tool
// returns: {success: true, data} or {success: false, error, suggestions}.
// Failure messages, details, and suggestions are scrubbed before leaving
// the process.
func respond(res domain.Result) (*mcp.CallToolResult, error) {
	if res.IsSuccess() {
		return marshalEnvelope(map[string]any{
			"success": true,
			"data":    res.Data,
		})
	}

	env := map[string]any{
		"success":     false,
		"error":       redact.Message(res.Message),
		"suggestions": redactAll(res.Suggestions),
	}
	if len(res.Details) > 0 {
		env["details"] = redact.Details(res.Details)
	}
	return marshalEnvelope(env)
}

// missingArg is the envelope for a required argument that was not supplied.
func missingArg(name string) (*mcp.CallToolResult, error) {
	return respond(domain.ValidationError(name+" is required", nil))
}

func marshalEnvelope(env map[string]any) (*mcp.CallToolResult, error) {
	out, err := yaml.Marshal(env)
	if err != nil {
		return mcp.NewToolResultError("response serialization failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func redactAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = redact.Message(s)
	}
	return out
}
