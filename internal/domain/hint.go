package domain

// Hint categories, in priority order for next_action selection.
const (
	HintWorkflow     = "workflow"
	HintQuality      = "quality"
	HintCoordination = "coordination"
	HintProgress     = "progress"
	HintCompletion   = "completion"
)

// Hint is a single piece of next-step guidance attached to a response. The
// ToolCall, when present, is a copy-pasteable call with real ids substituted.
type Hint struct {
	Category string         `json:"category"`
	Message  string         `json:"message"`
	ToolCall string         `json:"tool_call,omitempty"`
	Context  map[string]any `json:"context,omitempty"`
}

// AsMap serializes the hint for the tool-surface boundary.
func (h Hint) AsMap() map[string]any {
	return map[string]any{
		"category":  h.Category,
		"message":   h.Message,
		"tool_call": h.ToolCall,
		"context":   h.Context,
	}
}
