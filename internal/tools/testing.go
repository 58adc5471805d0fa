package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/taskcrusade/crusader/internal/engine"
)

// testingTools returns the testing-strategy tool set. Steps carry a test
// status (pending, passed, failed, skipped) alongside their content.
func testingTools(svc *engine.TaskService) []Tool {
	addHandler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("task_id", "")
		if id == "" {
			return missingArg("task_id")
		}
		content := req.GetString("content", "")
		if content == "" {
			return missingArg("content")
		}
		return respond(svc.AddTestingStep(id, content, req.GetString("step_type", "")))
	}
	addOpts := []mcp.ToolOption{
		mcp.WithDescription("Add a testing step to a task describing how to verify it. " +
			"Steps start with test_status pending."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
		mcp.WithString("content", mcp.Required(), mcp.Description("What to test and how")),
		mcp.WithString("step_type", mcp.Description("Step type (default verify)")),
	}

	return []Tool{
		{
			Def:    mcp.NewTool("task_testing_strategy_add", addOpts...),
			Handle: addHandler,
		},
		{
			// Alias kept for agents using the original testing-step name.
			Def:    mcp.NewTool("task_testing_step_add", addOpts...),
			Handle: addHandler,
		},
		{
			Def: mcp.NewTool("task_testing_strategy_list",
				mcp.WithDescription("List a task's testing steps with their statuses."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				return respond(svc.ListTestingSteps(id))
			},
		},
		{
			Def: mcp.NewTool("task_testing_strategy_show",
				mcp.WithDescription("Get a single testing step."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("step_id", mcp.Required(), mcp.Description("Testing step ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				sid := req.GetString("step_id", "")
				if sid == "" {
					return missingArg("step_id")
				}
				return respond(svc.GetTestingStep(id, sid))
			},
		},
		{
			Def: mcp.NewTool("task_testing_strategy_update",
				mcp.WithDescription("Rewrite a testing step's content and/or type."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("step_id", mcp.Required(), mcp.Description("Testing step ID")),
				mcp.WithString("content", mcp.Description("New content")),
				mcp.WithString("step_type", mcp.Description("New step type")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				sid := req.GetString("step_id", "")
				if sid == "" {
					return missingArg("step_id")
				}
				return respond(svc.UpdateTestingStep(id, sid,
					optStrArg(req, "content"), optStrArg(req, "step_type")))
			},
		},
		{
			Def: mcp.NewTool("task_testing_strategy_delete",
				mcp.WithDescription("Delete a testing step from a task."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("step_id", mcp.Required(), mcp.Description("Testing step ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				sid := req.GetString("step_id", "")
				if sid == "" {
					return missingArg("step_id")
				}
				return respond(svc.DeleteTestingStep(id, sid))
			},
		},
		{
			Def: mcp.NewTool("task_testing_strategy_reorder",
				mcp.WithDescription("Move a testing step to a new position in the list."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("step_id", mcp.Required(), mcp.Description("Testing step ID")),
				mcp.WithNumber("new_order", mcp.Required(), mcp.Description("New order index (1-based)")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				sid := req.GetString("step_id", "")
				if sid == "" {
					return missingArg("step_id")
				}
				return respond(svc.ReorderTestingSteps(id, sid, intArg(req, "new_order", 0)))
			},
		},
		{
			Def: mcp.NewTool("task_testing_strategy_mark_passed",
				mcp.WithDescription("Mark a testing step as passed."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("step_id", mcp.Required(), mcp.Description("Testing step ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				sid := req.GetString("step_id", "")
				if sid == "" {
					return missingArg("step_id")
				}
				return respond(svc.MarkTestingStepPassed(id, sid))
			},
		},
		{
			Def: mcp.NewTool("task_testing_strategy_mark_failed",
				mcp.WithDescription("Mark a testing step as failed."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("step_id", mcp.Required(), mcp.Description("Testing step ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				sid := req.GetString("step_id", "")
				if sid == "" {
					return missingArg("step_id")
				}
				return respond(svc.MarkTestingStepFailed(id, sid))
			},
		},
		{
			Def: mcp.NewTool("task_testing_strategy_mark_skipped",
				mcp.WithDescription("Mark a testing step as skipped."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("step_id", mcp.Required(), mcp.Description("Testing step ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				sid := req.GetString("step_id", "")
				if sid == "" {
					return missingArg("step_id")
				}
				return respond(svc.MarkTestingStepSkipped(id, sid))
			},
		},
	}
}
