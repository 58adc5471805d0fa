package tools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/taskcrusade/crusader/internal/domain"
	"github.com/taskcrusade/crusader/internal/engine"
	"github.com/taskcrusade/crusader/internal/hints"
	"github.com/taskcrusade/crusader/internal/store"
)

func newDeps(t *testing.T) Deps {
	t.Helper()
	st, err := store.New(store.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	log := zap.NewNop()
	gen := hints.New(true)
	return Deps{
		Tasks:     engine.NewTaskService(st, gen, log),
		Campaigns: engine.NewCampaignService(st, gen, log),
	}
}

func toolByName(t *testing.T, d Deps, name string) Tool {
	t.Helper()
	for _, tool := range All(d) {
		if tool.Def.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %q not registered", name)
	return Tool{}
}

// callTool invokes a tool by name and decodes its YAML envelope.
func callTool(t *testing.T, d Deps, name string, args map[string]any) map[string]any {
	t.Helper()
	tool := toolByName(t, d, name)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	result, err := tool.Handle(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.False(t, result.IsError)

	var text string
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			text = tc.Text
		}
	}
	require.NotEmpty(t, text)

	var env map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(text), &env))
	return env
}

func dataOf(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	require.Equal(t, true, env["success"], "expected success envelope, got: %v", env)
	data, ok := env["data"].(map[string]any)
	require.True(t, ok, "data is not a map: %v", env["data"])
	return data
}

func TestAllRegistersClosedNameSet(t *testing.T) {
	d := newDeps(t)
	seen := map[string]bool{}
	for _, tool := range All(d) {
		assert.False(t, seen[tool.Def.Name], "duplicate tool name %q", tool.Def.Name)
		seen[tool.Def.Name] = true
	}
	assert.Len(t, seen, 65)

	for _, name := range []string{
		"campaign_create", "campaign_workflow_guide", "campaign_create_with_tasks",
		"campaign_renumber_tasks", "task_create", "task_complete_with_workflow",
		"task_acceptance_criteria_mark_met", "task_testing_strategy_mark_skipped",
		"task_testing_step_add", "task_bulk_add_details",
	} {
		assert.True(t, seen[name], "missing tool %q", name)
	}
}

func TestCampaignCreateEnvelope(t *testing.T) {
	d := newDeps(t)

	env := callTool(t, d, "campaign_create", map[string]any{
		"name":     "release",
		"priority": "high",
	})
	data := dataOf(t, env)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, "release", data["name"])
	assert.Equal(t, "high", data["priority"])
}

func TestMissingRequiredArgument(t *testing.T) {
	d := newDeps(t)

	env := callTool(t, d, "campaign_show", map[string]any{})
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "campaign_id is required", env["error"])
}

func TestCampaignIDAlias(t *testing.T) {
	d := newDeps(t)
	created := dataOf(t, callTool(t, d, "campaign_create", map[string]any{"name": "alpha"}))

	// The legacy "campaign" argument name resolves like campaign_id.
	env := callTool(t, d, "task_create", map[string]any{
		"title":    "first task",
		"campaign": created["id"],
	})
	data := dataOf(t, env)
	assert.Equal(t, created["id"], data["campaign_id"])
}

func TestTaskLifecycleThroughTools(t *testing.T) {
	d := newDeps(t)
	campaign := dataOf(t, callTool(t, d, "campaign_create", map[string]any{"name": "alpha"}))

	task := dataOf(t, callTool(t, d, "task_create", map[string]any{
		"title":               "guarded task",
		"campaign_id":         campaign["id"],
		"acceptance_criteria": []any{"works"},
	}))
	taskID := task["id"].(string)

	criteria := task["acceptance_criteria_details"].([]any)
	require.Len(t, criteria, 1)
	criterionID := criteria[0].(map[string]any)["id"].(string)

	// Completion is refused until the criterion is met.
	env := callTool(t, d, "task_complete", map[string]any{"task_id": taskID})
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "Cannot complete task: 1 acceptance criteria not met", env["error"])
	details := env["details"].(map[string]any)
	assert.Equal(t, "all_criteria_must_be_met", details["rule"])

	dataOf(t, callTool(t, d, "task_acceptance_criteria_mark_met", map[string]any{
		"criterion_id": criterionID, // alias of criteria_id
	}))

	done := dataOf(t, callTool(t, d, "task_complete", map[string]any{"task_id": taskID}))
	assert.Equal(t, "done", done["status"])
}

func TestTaskListFiltersThroughTool(t *testing.T) {
	d := newDeps(t)
	campaign := dataOf(t, callTool(t, d, "campaign_create", map[string]any{"name": "alpha"}))

	for _, spec := range []struct{ title, taskType, category string }{
		{"write docs", "documentation", "docs"},
		{"schema", "code", "backend"},
		{"endpoints", "code", "backend"},
	} {
		dataOf(t, callTool(t, d, "task_create", map[string]any{
			"title":       spec.title,
			"campaign_id": campaign["id"],
			"type":        spec.taskType,
			"category":    spec.category,
		}))
	}

	env := callTool(t, d, "task_list", map[string]any{"task_type": "documentation"})
	require.Equal(t, true, env["success"])
	tasks := env["data"].([]any)
	require.Len(t, tasks, 1)
	assert.Equal(t, "write docs", tasks[0].(map[string]any)["title"])

	env = callTool(t, d, "task_list", map[string]any{
		"category": "backend",
		"limit":    1,
		"offset":   1,
	})
	tasks = env["data"].([]any)
	require.Len(t, tasks, 1)
	assert.Equal(t, "endpoints", tasks[0].(map[string]any)["title"])
}

func TestBulkUpdateThroughTool(t *testing.T) {
	d := newDeps(t)
	campaign := dataOf(t, callTool(t, d, "campaign_create", map[string]any{"name": "alpha"}))
	a := dataOf(t, callTool(t, d, "task_create", map[string]any{
		"title": "one", "campaign_id": campaign["id"],
	}))
	b := dataOf(t, callTool(t, d, "task_create", map[string]any{
		"title": "two", "campaign_id": campaign["id"],
	}))

	env := callTool(t, d, "task_bulk_update", map[string]any{
		"task_ids": []any{a["id"], b["id"]},
		"status":   "in-progress",
	})
	data := dataOf(t, env)
	assert.Equal(t, 2, data["updated_count"])
	assert.Equal(t, 0, data["failed_count"])
}

func TestCreateWithTasksThroughTool(t *testing.T) {
	d := newDeps(t)

	env := callTool(t, d, "campaign_create_with_tasks", map[string]any{
		"name": "launch",
		"tasks": []any{
			map[string]any{
				"temp_id":      "deploy",
				"title":        "Deploy",
				"dependencies": []any{"build"},
			},
			map[string]any{"temp_id": "build", "title": "Build"},
		},
	})
	data := dataOf(t, env)
	mapping := data["temp_id_to_uuid"].(map[string]any)
	assert.Len(t, mapping, 2)
}

func TestWorkflowGuide(t *testing.T) {
	d := newDeps(t)
	data := dataOf(t, callTool(t, d, "campaign_workflow_guide", map[string]any{}))
	phases := data["phases"].([]any)
	require.Len(t, phases, 3)
	first := phases[0].(map[string]any)
	assert.Equal(t, "1. Planning", first["phase"])
}

func TestRespondRedactsFailureOutput(t *testing.T) {
	res := domain.OperationFailed("open_store",
		"open /home/user/.crusader/database.db: permission denied")
	result, err := respond(res)
	require.NoError(t, err)

	var text string
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			text = tc.Text
		}
	}
	var env map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(text), &env))

	assert.Equal(t, false, env["success"])
	assert.NotContains(t, env["error"], "/home/user")
	assert.Contains(t, env["error"], "[REDACTED_PATH]")
}
