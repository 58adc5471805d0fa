package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/taskcrusade/crusader/internal/engine"
)

// criteriaTools returns the acceptance-criteria tool set. Criteria gate
// task completion: a task cannot be completed while any criterion is unmet.
func criteriaTools(svc *engine.TaskService) []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("task_acceptance_criteria_add",
				mcp.WithDescription("Add an acceptance criterion to a task. The task cannot be completed "+
					"until every criterion is marked met."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("content", mcp.Required(), mcp.Description("What must be true for the task to be done")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				content := strArg(req, "content", "criterion")
				if content == "" {
					return missingArg("content")
				}
				return respond(svc.AddAcceptanceCriteria(id, content))
			},
		},
		{
			Def: mcp.NewTool("task_acceptance_criteria_list",
				mcp.WithDescription("List a task's acceptance criteria with their met status."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				return respond(svc.ListAcceptanceCriteria(id))
			},
		},
		{
			Def: mcp.NewTool("task_acceptance_criteria_show",
				mcp.WithDescription("Get a single acceptance criterion."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("criteria_id", mcp.Required(), mcp.Description("Criterion ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				cid := strArg(req, "criteria_id", "criterion_id")
				if cid == "" {
					return missingArg("criteria_id")
				}
				return respond(svc.GetAcceptanceCriterion(id, cid))
			},
		},
		{
			Def: mcp.NewTool("task_acceptance_criteria_update",
				mcp.WithDescription("Rewrite an acceptance criterion's content."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("criteria_id", mcp.Required(), mcp.Description("Criterion ID")),
				mcp.WithString("content", mcp.Required(), mcp.Description("New content")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				cid := strArg(req, "criteria_id", "criterion_id")
				if cid == "" {
					return missingArg("criteria_id")
				}
				content := req.GetString("content", "")
				if content == "" {
					return missingArg("content")
				}
				return respond(svc.UpdateAcceptanceCriterion(id, cid, content))
			},
		},
		{
			Def: mcp.NewTool("task_acceptance_criteria_delete",
				mcp.WithDescription("Delete an acceptance criterion from a task."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("criteria_id", mcp.Required(), mcp.Description("Criterion ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				cid := strArg(req, "criteria_id", "criterion_id")
				if cid == "" {
					return missingArg("criteria_id")
				}
				return respond(svc.DeleteAcceptanceCriterion(id, cid))
			},
		},
		{
			Def: mcp.NewTool("task_acceptance_criteria_reorder",
				mcp.WithDescription("Move an acceptance criterion to a new position in the list."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("criteria_id", mcp.Required(), mcp.Description("Criterion ID")),
				mcp.WithNumber("new_order", mcp.Required(), mcp.Description("New order index (1-based)")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				cid := strArg(req, "criteria_id", "criterion_id")
				if cid == "" {
					return missingArg("criteria_id")
				}
				return respond(svc.ReorderAcceptanceCriteria(id, cid, intArg(req, "new_order", 0)))
			},
		},
		{
			Def: mcp.NewTool("task_acceptance_criteria_mark_met",
				mcp.WithDescription("Mark an acceptance criterion as met. When all criteria are met the "+
					"task becomes completable."),
				mcp.WithString("criteria_id", mcp.Required(), mcp.Description("Criterion ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cid := strArg(req, "criteria_id", "criterion_id")
				if cid == "" {
					return missingArg("criteria_id")
				}
				return respond(svc.MarkCriteriaMet(cid))
			},
		},
		{
			Def: mcp.NewTool("task_acceptance_criteria_mark_unmet",
				mcp.WithDescription("Mark an acceptance criterion as not met."),
				mcp.WithString("criteria_id", mcp.Required(), mcp.Description("Criterion ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cid := strArg(req, "criteria_id", "criterion_id")
				if cid == "" {
					return missingArg("criteria_id")
				}
				return respond(svc.MarkCriteriaUnmet(cid))
			},
		},
	}
}
