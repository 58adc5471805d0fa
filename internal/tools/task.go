package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/taskcrusade/crusader/internal/engine"
	"github.com/taskcrusade/crusader/internal/store"
)

// taskTools returns the core task CRUD, workflow, and query tools.
func taskTools(svc *engine.TaskService) []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("task_create",
				mcp.WithDescription("Create a task in a campaign. Dependencies reference existing task IDs "+
					"in the same campaign. Acceptance criteria and research can be attached in the same call."),
				mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign the task belongs to")),
				mcp.WithString("description", mcp.Description("Task description")),
				mcp.WithString("priority", mcp.Description("low, medium (default), high, or critical")),
				mcp.WithString("category", mcp.Description("Free-form category label")),
				mcp.WithString("type", mcp.Description("code (default), research, test, documentation, refactor")),
				mcp.WithArray("dependencies",
					mcp.Description("Task IDs that must be done before this one"),
					mcp.Items(map[string]any{"type": "string"}),
				),
				mcp.WithArray("tags",
					mcp.Description("Free-form tags"),
					mcp.Items(map[string]any{"type": "string"}),
				),
				mcp.WithArray("acceptance_criteria",
					mcp.Description("Criteria contents to attach on creation"),
					mcp.Items(map[string]any{"type": "string"}),
				),
				mcp.WithArray("research",
					mcp.Description("Research items to attach: {content, research_type?}"),
					mcp.Items(map[string]any{"type": "object"}),
				),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				title := req.GetString("title", "")
				if title == "" {
					return missingArg("title")
				}
				campaignID := strArg(req, "campaign_id", "campaign")
				if campaignID == "" {
					return missingArg("campaign_id")
				}
				deps, _ := strSliceArg(req, "dependencies")
				tags, _ := strSliceArg(req, "tags")
				criteria, _ := strSliceArg(req, "acceptance_criteria")
				return respond(svc.Create(engine.CreateTaskInput{
					Title:              title,
					CampaignID:         campaignID,
					Description:        req.GetString("description", ""),
					Priority:           req.GetString("priority", ""),
					Category:           req.GetString("category", ""),
					Type:               req.GetString("type", ""),
					Dependencies:       deps,
					Tags:               tags,
					AcceptanceCriteria: criteria,
					Research:           researchArg(req, "research"),
				}))
			},
		},
		{
			Def: mcp.NewTool("task_list",
				mcp.WithDescription("List tasks with optional campaign, status, priority, category, and type "+
					"filters. limit/offset paginate the filtered set."),
				mcp.WithString("campaign_id", mcp.Description("Filter by campaign")),
				mcp.WithString("status", mcp.Description("pending, in-progress, done, cancelled, or blocked")),
				mcp.WithString("priority", mcp.Description("low, medium, high, or critical")),
				mcp.WithString("category", mcp.Description("Filter by category label")),
				mcp.WithString("task_type", mcp.Description("code, research, test, documentation, refactor, deployment, or review")),
				mcp.WithNumber("limit", mcp.Description("Maximum number of tasks to return")),
				mcp.WithNumber("offset", mcp.Description("Number of tasks to skip")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return respond(svc.List(store.TaskFilter{
					CampaignID: strArg(req, "campaign_id", "campaign"),
					Status:     req.GetString("status", ""),
					Priority:   req.GetString("priority", ""),
					Category:   req.GetString("category", ""),
					Type:       strArg(req, "task_type", "type"),
					Limit:      intArg(req, "limit", 0),
					Offset:     intArg(req, "offset", 0),
				}))
			},
		},
		{
			Def: mcp.NewTool("task_show",
				mcp.WithDescription("Show a task with its acceptance criteria, research, implementation "+
					"notes, and testing steps."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				return respond(svc.Get(id))
			},
		},
		{
			Def: mcp.NewTool("task_update",
				mcp.WithDescription("Update task fields. Dependency edits accept exactly one of "+
					"dependencies (replace), add_dependencies, or remove_dependencies per call. "+
					"Setting status to done or cancelled stamps completed_at."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("title", mcp.Description("New title")),
				mcp.WithString("description", mcp.Description("New description")),
				mcp.WithString("status", mcp.Description("pending, in-progress, done, cancelled, or blocked")),
				mcp.WithString("priority", mcp.Description("low, medium, high, or critical")),
				mcp.WithString("category", mcp.Description("New category")),
				mcp.WithString("failure_reason", mcp.Description("Why the task is blocked or cancelled")),
				mcp.WithArray("dependencies",
					mcp.Description("Replace the dependency set with these task IDs"),
					mcp.Items(map[string]any{"type": "string"}),
				),
				mcp.WithArray("add_dependencies",
					mcp.Description("Task IDs to add as dependencies"),
					mcp.Items(map[string]any{"type": "string"}),
				),
				mcp.WithArray("remove_dependencies",
					mcp.Description("Task IDs to remove from dependencies"),
					mcp.Items(map[string]any{"type": "string"}),
				),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				in := engine.UpdateTaskInput{
					Title:         optStrArg(req, "title"),
					Description:   optStrArg(req, "description"),
					Status:        optStrArg(req, "status"),
					Priority:      optStrArg(req, "priority"),
					Category:      optStrArg(req, "category"),
					FailureReason: optStrArg(req, "failure_reason"),
				}
				if deps, ok := strSliceArg(req, "dependencies"); ok {
					in.Dependencies = deps
					in.HasDependencies = true
				}
				if add, ok := strSliceArg(req, "add_dependencies"); ok {
					in.AddDependencies = add
				}
				if remove, ok := strSliceArg(req, "remove_dependencies"); ok {
					in.RemoveDependencies = remove
				}
				return respond(svc.Update(id, in))
			},
		},
		{
			Def: mcp.NewTool("task_delete",
				mcp.WithDescription("Delete a task and its attachments. Dependents lose the edge."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID to delete")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				return respond(svc.Delete(id))
			},
		},
		{
			Def: mcp.NewTool("task_complete",
				mcp.WithDescription("Mark a task done. Fails with a business rule violation while any "+
					"acceptance criterion is unmet; details.unmet_criteria lists them."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				return respond(svc.Complete(id))
			},
		},
		{
			Def: mcp.NewTool("task_complete_with_workflow",
				mcp.WithDescription("Complete a task with full workflow checks: rejects tasks already "+
					"done, tasks with unfinished dependencies, and tasks with unmet criteria, each with "+
					"a specific rule and suggestion."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				return respond(svc.CompleteWithWorkflow(id))
			},
		},
		{
			Def: mcp.NewTool("task_search",
				mcp.WithDescription("Case-insensitive substring search over task titles and descriptions. "+
					"Each match carries _match flags saying which field hit."),
				mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
				mcp.WithString("campaign_id", mcp.Description("Restrict to one campaign")),
				mcp.WithString("status", mcp.Description("Filter by status")),
				mcp.WithString("priority", mcp.Description("Filter by priority")),
				mcp.WithNumber("limit", mcp.Description("Maximum matches (default 50)")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return respond(svc.Search(
					req.GetString("query", ""),
					strArg(req, "campaign_id", "campaign"),
					req.GetString("status", ""),
					req.GetString("priority", ""),
					intArg(req, "limit", 0),
				))
			},
		},
		{
			Def: mcp.NewTool("task_stats",
				mcp.WithDescription("Aggregate task counts by status, priority, and type, plus acceptance "+
					"criteria coverage. Unscoped calls add a per-campaign breakdown."),
				mcp.WithString("campaign_id", mcp.Description("Restrict to one campaign")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return respond(svc.Stats(strArg(req, "campaign_id", "campaign")))
			},
		},
		{
			Def: mcp.NewTool("task_get_dependency_info",
				mcp.WithDescription("Report what blocks a task and what it blocks: upstream dependencies, "+
					"downstream dependents, and the currently blocking subset."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				return respond(svc.DependencyInfo(id))
			},
		},
		{
			Def: mcp.NewTool("task_bulk_update",
				mcp.WithDescription("Apply the same status and/or priority to several tasks. Best-effort: "+
					"per-task failures are collected, not fatal."),
				mcp.WithArray("task_ids", mcp.Required(),
					mcp.Description("Tasks to update"),
					mcp.Items(map[string]any{"type": "string"}),
				),
				mcp.WithString("status", mcp.Description("New status for all tasks")),
				mcp.WithString("priority", mcp.Description("New priority for all tasks")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				ids, _ := strSliceArg(req, "task_ids")
				return respond(svc.BulkUpdate(ids,
					req.GetString("status", ""), req.GetString("priority", "")))
			},
		},
		{
			Def: mcp.NewTool("task_create_from_template",
				mcp.WithDescription("Create a task from a predefined template with its canonical "+
					"acceptance criteria. Templates: bug-fix, feature, refactor, research, test, documentation."),
				mcp.WithString("template", mcp.Required(), mcp.Description("Template name")),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign the task belongs to")),
				mcp.WithString("title", mcp.Description("Override the template title")),
				mcp.WithString("description", mcp.Description("Override the template description")),
				mcp.WithString("priority", mcp.Description("Override the template priority")),
				mcp.WithString("type", mcp.Description("Override the template task type")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				template := req.GetString("template", "")
				if template == "" {
					return missingArg("template")
				}
				campaignID := strArg(req, "campaign_id", "campaign")
				if campaignID == "" {
					return missingArg("campaign_id")
				}
				return respond(svc.CreateFromTemplate(template, campaignID,
					req.GetString("title", ""), engine.TemplateOverrides{
						Description: optStrArg(req, "description"),
						Priority:    optStrArg(req, "priority"),
						Type:        optStrArg(req, "type"),
					}))
			},
		},
		{
			Def: mcp.NewTool("task_bulk_add_research",
				mcp.WithDescription("Add the same research items to several tasks at once."),
				mcp.WithArray("task_ids", mcp.Required(),
					mcp.Description("Tasks to attach the research to"),
					mcp.Items(map[string]any{"type": "string"}),
				),
				mcp.WithArray("research_items", mcp.Required(),
					mcp.Description("Research items: {content, research_type?}"),
					mcp.Items(map[string]any{"type": "object"}),
				),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				ids, _ := strSliceArg(req, "task_ids")
				return respond(svc.BulkAddResearch(ids, researchArg(req, "research_items")))
			},
		},
		{
			Def: mcp.NewTool("task_bulk_add_details",
				mcp.WithDescription("Attach research, notes, criteria, and testing steps to several tasks "+
					"in one call. Each entry is {task_id, research?, notes?, criteria?, testing_steps?}."),
				mcp.WithArray("tasks", mcp.Required(),
					mcp.Description("Per-task detail payloads"),
					mcp.Items(map[string]any{"type": "object"}),
				),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return respond(svc.BulkAddDetails(taskDetailsArg(req, "tasks")))
			},
		},
	}
}
