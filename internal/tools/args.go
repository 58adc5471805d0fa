package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/taskcrusade/crusader/internal/depgraph"
	"github.com/taskcrusade/crusader/internal/engine"
)

// strArg returns the first non-empty string among the named arguments.
// Several tools accept legacy aliases (campaign_id|campaign,
// criteria_id|criterion_id) so agents with stale schemas keep working.
func strArg(req mcp.CallToolRequest, names ...string) string {
	for _, name := range names {
		if v := req.GetString(name, ""); v != "" {
			return v
		}
	}
	return ""
}

// intArg coerces the named argument to an int, returning def when absent
// or unparseable.
func intArg(req mcp.CallToolRequest, name string, def int) int {
	args := req.GetArguments()
	v, ok := args[name]
	if !ok {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

// optStrArg returns a pointer to the named argument's string value, or nil
// when the argument was not supplied. Used for partial updates where
// "absent" and "empty" mean different things.
func optStrArg(req mcp.CallToolRequest, name string) *string {
	args := req.GetArguments()
	v, ok := args[name]
	if !ok {
		return nil
	}
	s := cast.ToString(v)
	return &s
}

// strSliceArg coerces the named argument to a string slice. A bare string
// becomes a single-element slice. Returns (nil, false) when absent, which
// callers use to distinguish "not provided" from "provided empty".
func strSliceArg(req mcp.CallToolRequest, name string) ([]string, bool) {
	args := req.GetArguments()
	v, ok := args[name]
	if !ok || v == nil {
		return nil, false
	}
	return toStringSlice(v), true
}

func toStringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, cast.ToString(item))
		}
		return out
	case string:
		if t == "" {
			return []string{}
		}
		return []string{t}
	default:
		return []string{}
	}
}

// researchArg parses a list of research items. Each element is either a
// plain string (content only) or a map with content and type keys.
func researchArg(req mcp.CallToolRequest, name string) []engine.ResearchInput {
	args := req.GetArguments()
	v, ok := args[name]
	if !ok || v == nil {
		return nil
	}
	return toResearchInputs(v)
}

func toResearchInputs(v any) []engine.ResearchInput {
	list, ok := v.([]any)
	if !ok {
		if s := cast.ToString(v); s != "" {
			return []engine.ResearchInput{{Content: s}}
		}
		return nil
	}
	out := make([]engine.ResearchInput, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case map[string]any:
			out = append(out, engine.ResearchInput{
				Content: cast.ToString(t["content"]),
				Type:    cast.ToString(firstOf(t, "research_type", "type")),
			})
		default:
			out = append(out, engine.ResearchInput{Content: cast.ToString(t)})
		}
	}
	return out
}

func toResearchSpecs(v any) []depgraph.ResearchSpec {
	inputs := toResearchInputs(v)
	out := make([]depgraph.ResearchSpec, len(inputs))
	for i, in := range inputs {
		out[i] = depgraph.ResearchSpec{Content: in.Content, Type: in.Type}
	}
	return out
}

// taskSpecsArg parses the tasks list of campaign_create_with_tasks into
// dependency-validator specs.
func taskSpecsArg(req mcp.CallToolRequest, name string) []depgraph.TaskSpec {
	args := req.GetArguments()
	list, ok := args[name].([]any)
	if !ok {
		return nil
	}
	out := make([]depgraph.TaskSpec, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, depgraph.TaskSpec{
			TempID:             cast.ToString(m["temp_id"]),
			Title:              cast.ToString(m["title"]),
			Description:        cast.ToString(m["description"]),
			Priority:           cast.ToString(m["priority"]),
			TaskType:           cast.ToString(m["type"]),
			Tags:               toStringSlice(m["tags"]),
			Dependencies:       toStringSlice(m["dependencies"]),
			AcceptanceCriteria: toStringSlice(m["acceptance_criteria"]),
			Research:           toResearchSpecs(m["research"]),
		})
	}
	return out
}

// taskDetailsArg parses the per-task payload of task_bulk_add_details.
func taskDetailsArg(req mcp.CallToolRequest, name string) []engine.TaskDetailsInput {
	args := req.GetArguments()
	list, ok := args[name].([]any)
	if !ok {
		return nil
	}
	out := make([]engine.TaskDetailsInput, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entry := engine.TaskDetailsInput{
			TaskID:   cast.ToString(m["task_id"]),
			Research: toResearchInputs(m["research"]),
			Notes:    toStringSlice(m["notes"]),
			Criteria: toStringSlice(m["criteria"]),
		}
		if steps, ok := m["testing_steps"].([]any); ok {
			for _, s := range steps {
				switch t := s.(type) {
				case map[string]any:
					entry.TestingStrategy = append(entry.TestingStrategy, engine.TestingStepInput{
						Content:  cast.ToString(t["content"]),
						StepType: cast.ToString(t["step_type"]),
					})
				default:
					entry.TestingStrategy = append(entry.TestingStrategy, engine.TestingStepInput{
						Content: cast.ToString(t),
					})
				}
			}
		}
		out = append(out, entry)
	}
	return out
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil && cast.ToString(v) != "" {
			return v
		}
	}
	return nil
}
