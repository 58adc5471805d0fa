package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/taskcrusade/crusader/internal/depgraph"
	"github.com/taskcrusade/crusader/internal/domain"
	"github.com/taskcrusade/crusader/internal/engine"
)

// campaignTools returns the campaign-facing tool set.
func campaignTools(svc *engine.CampaignService) []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("campaign_create",
				mcp.WithDescription("Create a new campaign to organize related tasks. "+
					"Campaigns are containers that group related tasks; every task belongs to one. "+
					"Extract the campaign ID from data.id for subsequent operations."),
				mcp.WithString("name", mcp.Required(), mcp.Description("Campaign name (unique)")),
				mcp.WithString("description", mcp.Description("Campaign description")),
				mcp.WithString("priority", mcp.Description("low, medium (default), or high")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				name := req.GetString("name", "")
				if name == "" {
					return missingArg("name")
				}
				return respond(svc.Create(engine.CreateCampaignInput{
					Name:        name,
					Description: req.GetString("description", ""),
					Priority:    req.GetString("priority", ""),
				}))
			},
		},
		{
			Def: mcp.NewTool("campaign_list",
				mcp.WithDescription("List all campaigns with optional status and priority filters. "+
					"Each campaign carries task statistics."),
				mcp.WithString("status", mcp.Description("Filter by planning, active, paused, completed, or cancelled")),
				mcp.WithString("priority", mcp.Description("Filter by low, medium, or high")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return respond(svc.List(req.GetString("status", ""), req.GetString("priority", "")))
			},
		},
		{
			Def: mcp.NewTool("campaign_show",
				mcp.WithDescription("Show a campaign with its task list. "+
					"verbosity=minimal reduces each task to id, title, status, and priority."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID or name")),
				mcp.WithString("verbosity", mcp.Description("minimal, standard (default), or detailed")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				return respond(svc.ShowWithTasks(id, req.GetString("verbosity", "standard") != "minimal"))
			},
		},
		{
			Def: mcp.NewTool("campaign_update",
				mcp.WithDescription("Update campaign properties. Only the supplied fields change."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
				mcp.WithString("name", mcp.Description("New name")),
				mcp.WithString("description", mcp.Description("New description")),
				mcp.WithString("status", mcp.Description("planning, active, paused, completed, or cancelled")),
				mcp.WithString("priority", mcp.Description("low, medium, or high")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				return respond(svc.Update(id, engine.UpdateCampaignInput{
					Name:        optStrArg(req, "name"),
					Description: optStrArg(req, "description"),
					Status:      optStrArg(req, "status"),
					Priority:    optStrArg(req, "priority"),
				}))
			},
		},
		{
			Def: mcp.NewTool("campaign_delete",
				mcp.WithDescription("Delete a campaign and all its tasks. Permanent and cannot be undone."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID to delete")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				return respond(svc.Delete(id))
			},
		},
		{
			Def: mcp.NewTool("campaign_get_progress_summary",
				mcp.WithDescription("Get a lightweight progress summary for a campaign: task counts by "+
					"status, completion rate, and the current and next tasks. Cheap enough for frequent polling."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				return respond(svc.ProgressSummary(id))
			},
		},
		{
			Def: mcp.NewTool("campaign_get_next_actionable_task",
				mcp.WithDescription("Get the next actionable task: the highest-priority pending or "+
					"in-progress task whose dependencies are all done. Use for sequential processing; "+
					"for parallel work use campaign_get_all_actionable_tasks. The response includes "+
					"acceptance_criteria_details with IDs for marking criteria met."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
				mcp.WithString("context_depth", mcp.Description("basic (default) includes acceptance criteria; full adds research and implementation notes")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				return respond(svc.NextActionableTask(id, req.GetString("context_depth", "")))
			},
		},
		{
			Def: mcp.NewTool("campaign_get_all_actionable_tasks",
				mcp.WithDescription("Get every actionable task for parallel execution, up to max_results. "+
					"Warns when tasks are already in progress."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
				mcp.WithNumber("max_results", mcp.Description("Maximum tasks to return (default 10, cap 50)")),
				mcp.WithString("context_depth", mcp.Description("basic (default) or full")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				max := intArg(req, "max_results", 10)
				if max > 50 {
					max = 50
				}
				return respond(svc.AllActionableTasks(id, max, req.GetString("context_depth", "")))
			},
		},
		{
			Def: mcp.NewTool("campaign_details",
				mcp.WithDescription("Get a campaign's fields without its task list."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID or name")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				return respond(svc.Get(id))
			},
		},
		{
			Def: mcp.NewTool("campaign_research_add",
				mcp.WithDescription("Record a research item against the campaign (not a specific task)."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
				mcp.WithString("content", mcp.Required(), mcp.Description("Research content")),
				mcp.WithString("research_type", mcp.Description("Research type (default analysis)")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				content := req.GetString("content", "")
				if content == "" {
					return missingArg("content")
				}
				return respond(svc.AddResearch(id, content, strArg(req, "research_type", "type")))
			},
		},
		{
			Def: mcp.NewTool("campaign_research_list",
				mcp.WithDescription("List the campaign's research items, optionally filtered by type."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
				mcp.WithString("research_type", mcp.Description("Filter by research type")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				return respond(svc.ListResearch(id, strArg(req, "research_type", "type")))
			},
		},
		{
			Def: mcp.NewTool("campaign_research_show",
				mcp.WithDescription("Get a single campaign research item."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
				mcp.WithString("research_id", mcp.Required(), mcp.Description("Research item ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				rid := req.GetString("research_id", "")
				if rid == "" {
					return missingArg("research_id")
				}
				return respond(svc.GetResearch(id, rid))
			},
		},
		{
			Def: mcp.NewTool("campaign_research_update",
				mcp.WithDescription("Rewrite a campaign research item's content and/or type."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
				mcp.WithString("research_id", mcp.Required(), mcp.Description("Research item ID")),
				mcp.WithString("content", mcp.Description("New content")),
				mcp.WithString("research_type", mcp.Description("New research type")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
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
			Def: mcp.NewTool("campaign_research_delete",
				mcp.WithDescription("Delete a campaign research item."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
				mcp.WithString("research_id", mcp.Required(), mcp.Description("Research item ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				rid := req.GetString("research_id", "")
				if rid == "" {
					return missingArg("research_id")
				}
				return respond(svc.DeleteResearch(id, rid))
			},
		},
		{
			Def: mcp.NewTool("campaign_research_reorder",
				mcp.WithDescription("Move a campaign research item to a new position in the list."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
				mcp.WithString("research_id", mcp.Required(), mcp.Description("Research item ID")),
				mcp.WithNumber("new_order", mcp.Required(), mcp.Description("New order index (1-based)")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				rid := req.GetString("research_id", "")
				if rid == "" {
					return missingArg("research_id")
				}
				return respond(svc.ReorderResearch(id, rid, intArg(req, "new_order", 0)))
			},
		},
		{
			Def: mcp.NewTool("campaign_workflow_guide",
				mcp.WithDescription("Get the recommended planning, execution, and monitoring workflow "+
					"with the tool calls for each phase."),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return respond(domain.OK(workflowGuide()))
			},
		},
		{
			Def: mcp.NewTool("campaign_create_with_tasks",
				mcp.WithDescription("Create a campaign and its full task graph in one atomic call. "+
					"Tasks reference each other by temp_id; dependencies are validated (unknown refs, "+
					"self-deps, cycles) before anything is written. Returns temp_id_to_uuid for "+
					"resolving the created IDs."),
				mcp.WithString("name", mcp.Required(), mcp.Description("Campaign name (unique)")),
				mcp.WithString("description", mcp.Description("Campaign description")),
				mcp.WithString("priority", mcp.Description("low, medium, or high")),
				mcp.WithArray("tasks", mcp.Required(),
					mcp.Description("Task specs: {temp_id, title, description?, priority?, type?, tags?, dependencies? (temp_ids), acceptance_criteria?, research?}"),
					mcp.Items(map[string]any{"type": "object"}),
				),
				mcp.WithArray("research",
					mcp.Description("Campaign-level research items: {content, research_type?}"),
					mcp.Items(map[string]any{"type": "object"}),
				),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				name := req.GetString("name", "")
				if name == "" {
					return missingArg("name")
				}
				tasks := taskSpecsArg(req, "tasks")
				if len(tasks) == 0 {
					return missingArg("tasks")
				}
				var research []depgraph.ResearchSpec
				if v, ok := req.GetArguments()["research"]; ok {
					research = toResearchSpecs(v)
				}
				return respond(svc.CreateWithTasks(depgraph.CampaignSpec{
					Name:        name,
					Description: req.GetString("description", ""),
					Priority:    req.GetString("priority", ""),
					Tasks:       tasks,
					Research:    research,
				}))
			},
		},
		{
			Def: mcp.NewTool("campaign_overview",
				mcp.WithDescription("Get campaign, progress, recent tasks, actionable tasks, and research "+
					"in one call. Use instead of separate show/progress/list calls."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				return respond(svc.Overview(id))
			},
		},
		{
			Def: mcp.NewTool("campaign_get_state_snapshot",
				mcp.WithDescription("Export the full campaign state: every task with all attachments, "+
					"campaign research, and progress. Intended for backups and session handoffs."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				return respond(svc.StateSnapshot(id))
			},
		},
		{
			Def: mcp.NewTool("campaign_validate_readiness",
				mcp.WithDescription("Check whether a campaign is ready for execution: tasks exist, "+
					"dependency references resolve, no cycles, something is actionable. "+
					"Returns is_ready with issues and warnings."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				return respond(svc.ValidateReadiness(id))
			},
		},
		{
			Def: mcp.NewTool("campaign_renumber_tasks",
				mcp.WithDescription("Assign sequential priority_order numbers to the campaign's tasks "+
					"following dependency order, ties broken by title."),
				mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
				mcp.WithNumber("start_from", mcp.Description("First number to assign (default 1)")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := strArg(req, "campaign_id", "campaign")
				if id == "" {
					return missingArg("campaign_id")
				}
				return respond(svc.RenumberTasks(id, intArg(req, "start_from", 1)))
			},
		},
	}
}

// workflowGuide is the static three-phase workflow reference returned by
// campaign_workflow_guide.
func workflowGuide() map[string]any {
	return map[string]any{
		"title": "Crusader Workflow Guide",
		"phases": []map[string]any{
			{
				"phase":       "1. Planning",
				"description": "Define campaign and tasks with dependencies",
				"tools":       []string{"campaign_create", "task_create", "task_acceptance_criteria_add"},
			},
			{
				"phase":       "2. Execution",
				"description": "Work through tasks sequentially",
				"pattern": []string{
					"campaign_get_next_actionable_task(campaign_id) -> get next task",
					"task_update(task_id, status='in-progress') -> claim task",
					"[Implement the task]",
					"task_acceptance_criteria_mark_met(criteria_id) -> mark criteria met",
					"task_complete(task_id) -> complete task",
					"Repeat until campaign complete",
				},
			},
			{
				"phase":       "3. Monitoring",
				"description": "Track progress",
				"tools":       []string{"campaign_get_progress_summary", "campaign_show"},
			},
		},
		"tips": []string{
			"Use campaign_get_next_actionable_task for sequential processing",
			"Use campaign_get_all_actionable_tasks for parallel execution",
			"Always mark criteria as met before completing a task",
		},
	}
}
