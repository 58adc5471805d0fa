// Package hints produces context-aware next-step guidance for AI agents.
//
// The generator is stateless: each method inspects the outcome of one
// operation plus whatever state the caller already has, and returns a small
// collection of hints with copy-pasteable tool calls.
package hints

import (
	"fmt"
	"math"
	"strings"

	"github.com/taskcrusade/crusader/internal/domain"
)

// Generator builds hint collections. When disabled every method returns an
// empty collection, so callers never need to branch on the setting.
type Generator struct {
	enabled bool
}

// New returns a hint generator.
func New(enabled bool) *Generator {
	return &Generator{enabled: enabled}
}

// Collection is an ordered set of hints for one response.
type Collection struct {
	Hints []domain.Hint
}

// IsEmpty reports whether the collection carries no hints.
func (c Collection) IsEmpty() bool {
	return len(c.Hints) == 0
}

// PrimaryToolCall picks the most urgent tool call: workflow beats quality
// beats coordination beats progress beats completion. Falls back to the
// first hint that has any tool call.
func (c Collection) PrimaryToolCall() string {
	for _, category := range []string{
		domain.HintWorkflow,
		domain.HintQuality,
		domain.HintCoordination,
		domain.HintProgress,
		domain.HintCompletion,
	} {
		for _, h := range c.Hints {
			if h.Category == category && h.ToolCall != "" {
				return h.ToolCall
			}
		}
	}
	for _, h := range c.Hints {
		if h.ToolCall != "" {
			return h.ToolCall
		}
	}
	return ""
}

// FormatForResponse renders the collection for merging into response data:
// an empty map when there is nothing to say, otherwise a hints list plus
// the primary tool call as next_action.
func (g *Generator) FormatForResponse(c Collection) map[string]any {
	if c.IsEmpty() {
		return map[string]any{}
	}
	list := make([]map[string]any, len(c.Hints))
	for i, h := range c.Hints {
		list[i] = h.AsMap()
	}
	out := map[string]any{"hints": list}
	if primary := c.PrimaryToolCall(); primary != "" {
		out["next_action"] = primary
	}
	return out
}

// ProgressInfo is the snapshot of a campaign's task counts used by the
// progress-aware recipes.
type ProgressInfo struct {
	Pending        int
	InProgress     int
	Done           int
	Blocked        int
	Total          int
	CompletionRate float64
}

// TaskCompleteness describes how fully defined a single task is.
type TaskCompleteness struct {
	TaskID                string
	TaskTitle             string
	TaskStatus            string
	HasAcceptanceCriteria bool
	CriteriaCount         int
	HasTestingStrategy    bool
	TestingStepsCount     int
	HasResearch           bool
}

// MissingItems lists the quality elements the task still lacks.
func (t TaskCompleteness) MissingItems() []string {
	var missing []string
	if !t.HasAcceptanceCriteria {
		missing = append(missing, "acceptance_criteria")
	}
	if !t.HasTestingStrategy {
		missing = append(missing, "testing_strategy")
	}
	if !t.HasResearch {
		missing = append(missing, "research")
	}
	return missing
}

// IsComplete reports whether the task has the elements required for
// execution readiness.
func (t TaskCompleteness) IsComplete() bool {
	return t.HasAcceptanceCriteria && t.HasTestingStrategy
}

// CampaignHealth describes the definition quality of a whole campaign.
type CampaignHealth struct {
	CampaignID                 string
	CampaignName               string
	TotalTasks                 int
	TasksWithoutCriteria       int
	TasksWithoutTesting        int
	FirstTaskWithoutCriteriaID string
	FirstTaskWithoutTestingID  string
	TasksComplete              int
	TasksInProgress            int
	TasksBlocked               int
	TasksPending               int
}

// ReadyForExecution reports whether every task has acceptance criteria.
func (c CampaignHealth) ReadyForExecution() bool {
	return c.TotalTasks > 0 && c.TasksWithoutCriteria == 0
}

// HealthScore weighs criteria coverage at 60% and testing coverage at 40%.
func (c CampaignHealth) HealthScore() float64 {
	if c.TotalTasks == 0 {
		return 0
	}
	withCriteria := float64(c.TotalTasks - c.TasksWithoutCriteria)
	withTesting := float64(c.TotalTasks - c.TasksWithoutTesting)
	total := float64(c.TotalTasks)
	return round1(withCriteria/total*60 + withTesting/total*40)
}

// CompletionRate is the percentage of tasks done.
func (c CampaignHealth) CompletionRate() float64 {
	if c.TotalTasks == 0 {
		return 0
	}
	return round1(float64(c.TasksComplete) / float64(c.TotalTasks) * 100)
}

// Campaign setup stages, from empty campaign through completion.
const (
	StageCreated         = "created"
	StageTasksAdded      = "tasks_added"
	StageCriteriaDefined = "criteria_defined"
	StageTestingPlanned  = "testing_planned"
	StageExecuting       = "executing"
	StageCompleted       = "completed"
)

// ─── Campaign operation hints ────────────────────────────────────────────────

// PostCampaignCreate guides the agent from a fresh campaign to its first task.
func (g *Generator) PostCampaignCreate(campaignID, campaignName string) Collection {
	if !g.enabled {
		return Collection{}
	}
	return Collection{Hints: []domain.Hint{{
		Category: domain.HintWorkflow,
		Message:  fmt.Sprintf("Campaign '%s' created. Add tasks to begin.", campaignName),
		ToolCall: fmt.Sprintf("task_create(campaign_id='%s', title='...')", campaignID),
		Context:  map[string]any{"campaign_id": campaignID},
	}}}
}

// PostCampaignProgress summarizes where the campaign stands.
func (g *Generator) PostCampaignProgress(campaignID string, p ProgressInfo) Collection {
	if !g.enabled {
		return Collection{}
	}

	switch {
	case p.Total == 0:
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintWorkflow,
			Message:  "Campaign has no tasks. Add tasks to begin.",
			ToolCall: fmt.Sprintf("task_create(campaign_id='%s', title='...')", campaignID),
			Context:  map[string]any{"campaign_id": campaignID},
		}}}
	case p.Pending == 0 && p.InProgress == 0 && p.Blocked == 0:
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintCompletion,
			Message:  fmt.Sprintf("Campaign complete! All %d tasks done.", p.Done),
			ToolCall: fmt.Sprintf("campaign_update(campaign_id='%s', status='completed')", campaignID),
			Context:  map[string]any{"campaign_id": campaignID, "done": p.Done},
		}}}
	case p.Pending > 0 || p.InProgress > 0:
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintProgress,
			Message: fmt.Sprintf("Progress: %d/%d done (%.0f%%). %d pending, %d in-progress, %d blocked.",
				p.Done, p.Total, p.CompletionRate, p.Pending, p.InProgress, p.Blocked),
			ToolCall: fmt.Sprintf("campaign_get_next_actionable_task(campaign_id='%s')", campaignID),
			Context: map[string]any{
				"campaign_id": campaignID,
				"done":        p.Done,
				"pending":     p.Pending,
				"in_progress": p.InProgress,
				"blocked":     p.Blocked,
			},
		}}}
	}
	return Collection{}
}

// ─── Task operation hints ────────────────────────────────────────────────────

// PostTaskCreate nudges toward acceptance criteria or straight to execution.
func (g *Generator) PostTaskCreate(taskID, taskTitle, campaignID string, criteriaCount int) Collection {
	if !g.enabled {
		return Collection{}
	}

	if criteriaCount == 0 {
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintWorkflow,
			Message:  fmt.Sprintf("Task '%s' created. Add acceptance criteria to define completion.", taskTitle),
			ToolCall: fmt.Sprintf("task_acceptance_criteria_add(task_id='%s', content='...')", taskID),
			Context:  map[string]any{"task_id": taskID, "campaign_id": campaignID},
		}}}
	}
	return Collection{Hints: []domain.Hint{{
		Category: domain.HintWorkflow,
		Message:  fmt.Sprintf("Task '%s' created with %d criteria. Ready for execution.", taskTitle, criteriaCount),
		ToolCall: fmt.Sprintf("task_update(task_id='%s', status='in-progress')", taskID),
		Context: map[string]any{
			"task_id":        taskID,
			"campaign_id":    campaignID,
			"criteria_count": criteriaCount,
		},
	}}}
}

// PostTaskStatusChange reacts to in-progress and blocked transitions.
func (g *Generator) PostTaskStatusChange(
	taskID, taskTitle string,
	newStatus string,
	criteriaCount, unmetCount int,
	blocking []domain.Task,
) Collection {
	if !g.enabled {
		return Collection{}
	}

	switch newStatus {
	case domain.TaskInProgress:
		if criteriaCount > 0 {
			return Collection{Hints: []domain.Hint{{
				Category: domain.HintWorkflow,
				Message:  fmt.Sprintf("Task '%s' started. %d criteria to satisfy.", taskTitle, criteriaCount),
				Context: map[string]any{
					"task_id":        taskID,
					"criteria_count": criteriaCount,
					"unmet_count":    unmetCount,
				},
			}}}
		}
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintWorkflow,
			Message:  fmt.Sprintf("Task '%s' started. Consider adding acceptance criteria.", taskTitle),
			ToolCall: fmt.Sprintf("task_acceptance_criteria_add(task_id='%s', content='...')", taskID),
			Context:  map[string]any{"task_id": taskID},
		}}}
	case domain.TaskBlocked:
		if len(blocking) > 0 {
			titles := make([]string, 0, 3)
			ids := make([]string, len(blocking))
			for i, b := range blocking {
				if i < 3 {
					titles = append(titles, b.Title)
				}
				ids[i] = b.ID
			}
			titlesStr := strings.Join(titles, ", ")
			if len(blocking) > 3 {
				titlesStr += fmt.Sprintf(" (+%d more)", len(blocking)-3)
			}
			return Collection{Hints: []domain.Hint{{
				Category: domain.HintCoordination,
				Message:  fmt.Sprintf("Task '%s' blocked by: %s. Complete those first.", taskTitle, titlesStr),
				ToolCall: fmt.Sprintf("task_show(task_id='%s')", blocking[0].ID),
				Context: map[string]any{
					"task_id":           taskID,
					"blocking_task_ids": ids,
				},
			}}}
		}
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintCoordination,
			Message:  fmt.Sprintf("Task '%s' is now blocked. Resolve dependencies to continue.", taskTitle),
			ToolCall: fmt.Sprintf("task_show(task_id='%s')", taskID),
			Context:  map[string]any{"task_id": taskID},
		}}}
	}
	return Collection{}
}

// PostTaskComplete points at the next task, or at campaign completion when
// this was the last one.
func (g *Generator) PostTaskComplete(taskID, taskTitle, campaignID string, progress *ProgressInfo) Collection {
	if !g.enabled {
		return Collection{}
	}

	if progress != nil {
		remaining := progress.Pending + progress.InProgress + progress.Blocked
		if remaining == 0 {
			return Collection{Hints: []domain.Hint{{
				Category: domain.HintCompletion,
				Message:  fmt.Sprintf("Task '%s' complete. Campaign finished! All %d tasks done.", taskTitle, progress.Done),
				ToolCall: fmt.Sprintf("campaign_update(campaign_id='%s', status='completed')", campaignID),
				Context:  map[string]any{"campaign_id": campaignID, "done": progress.Done},
			}}}
		}
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintWorkflow,
			Message: fmt.Sprintf("Task '%s' complete (%d/%d, %.0f%%). %d pending, %d blocked.",
				taskTitle, progress.Done, progress.Total, progress.CompletionRate,
				progress.Pending, progress.Blocked),
			ToolCall: fmt.Sprintf("campaign_get_next_actionable_task(campaign_id='%s')", campaignID),
			Context: map[string]any{
				"campaign_id": campaignID,
				"done":        progress.Done,
				"pending":     progress.Pending,
				"blocked":     progress.Blocked,
			},
		}}}
	}
	return Collection{Hints: []domain.Hint{{
		Category: domain.HintWorkflow,
		Message:  fmt.Sprintf("Task '%s' complete. Get next task.", taskTitle),
		ToolCall: fmt.Sprintf("campaign_get_next_actionable_task(campaign_id='%s')", campaignID),
		Context:  map[string]any{"campaign_id": campaignID, "task_id": taskID},
	}}}
}

// ─── Actionable task hints ───────────────────────────────────────────────────

// ActionableTask guides execution of the selected task, or explains why
// nothing is actionable.
func (g *Generator) ActionableTask(task *domain.Task, criteriaIDs []string, campaignID string, progress *ProgressInfo) Collection {
	if !g.enabled {
		return Collection{}
	}

	if task == nil {
		if progress != nil {
			switch {
			case progress.Pending == 0 && progress.Blocked == 0:
				return Collection{Hints: []domain.Hint{{
					Category: domain.HintCompletion,
					Message:  fmt.Sprintf("No actionable tasks. Campaign complete with %d tasks done.", progress.Done),
					ToolCall: fmt.Sprintf("campaign_update(campaign_id='%s', status='completed')", campaignID),
					Context:  map[string]any{"campaign_id": campaignID},
				}}}
			case progress.Blocked > 0:
				return Collection{Hints: []domain.Hint{{
					Category: domain.HintCoordination,
					Message:  fmt.Sprintf("No actionable tasks. %d tasks blocked by dependencies.", progress.Blocked),
					ToolCall: fmt.Sprintf("task_list(campaign_id='%s', status='blocked')", campaignID),
					Context:  map[string]any{"campaign_id": campaignID, "blocked": progress.Blocked},
				}}}
			}
		}
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintCoordination,
			Message:  "No actionable tasks available.",
			ToolCall: fmt.Sprintf("campaign_get_progress_summary(campaign_id='%s')", campaignID),
			Context:  map[string]any{"campaign_id": campaignID},
		}}}
	}

	if len(criteriaIDs) > 0 {
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintWorkflow,
			Message:  fmt.Sprintf("Next task: '%s' (%d criteria).", task.Title, len(criteriaIDs)),
			ToolCall: fmt.Sprintf("task_update(task_id='%s', status='in-progress')", task.ID),
			Context: map[string]any{
				"task_id":        task.ID,
				"criteria_count": len(criteriaIDs),
				"criteria_ids":   criteriaIDs,
			},
		}}}
	}
	return Collection{Hints: []domain.Hint{{
		Category: domain.HintWorkflow,
		Message:  fmt.Sprintf("Next task: '%s' (no acceptance criteria).", task.Title),
		ToolCall: fmt.Sprintf("task_update(task_id='%s', status='in-progress')", task.ID),
		Context:  map[string]any{"task_id": task.ID},
	}}}
}

// ActionableTasks covers the parallel variant: several claimable tasks.
func (g *Generator) ActionableTasks(tasks []domain.Task, campaignID string, progress *ProgressInfo) Collection {
	if !g.enabled {
		return Collection{}
	}
	if len(tasks) == 0 {
		return g.ActionableTask(nil, nil, campaignID, progress)
	}

	plural := ""
	if len(tasks) > 1 {
		plural = "s"
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return Collection{Hints: []domain.Hint{{
		Category: domain.HintWorkflow,
		Message: fmt.Sprintf("%d actionable task%s available. Claim by setting status to 'in-progress' before starting.",
			len(tasks), plural),
		ToolCall: fmt.Sprintf("task_update(task_id='%s', status='in-progress')", tasks[0].ID),
		Context: map[string]any{
			"campaign_id":      campaignID,
			"actionable_count": len(tasks),
			"task_ids":         ids,
		},
	}}}
}

// ─── Acceptance criteria hints ───────────────────────────────────────────────

// PostCriteriaMet celebrates full coverage or reports the remainder.
func (g *Generator) PostCriteriaMet(taskID, taskTitle string, metCount, totalCount int) Collection {
	if !g.enabled {
		return Collection{}
	}

	if metCount >= totalCount {
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintCompletion,
			Message:  fmt.Sprintf("All %d criteria met for '%s'!", totalCount, taskTitle),
			ToolCall: fmt.Sprintf("task_complete(task_id='%s')", taskID),
			Context: map[string]any{
				"task_id":     taskID,
				"met_count":   metCount,
				"total_count": totalCount,
			},
		}}}
	}
	remaining := totalCount - metCount
	return Collection{Hints: []domain.Hint{{
		Category: domain.HintProgress,
		Message:  fmt.Sprintf("Criteria %d/%d met for '%s'. %d remaining.", metCount, totalCount, taskTitle, remaining),
		Context: map[string]any{
			"task_id":     taskID,
			"met_count":   metCount,
			"total_count": totalCount,
			"remaining":   remaining,
		},
	}}}
}

// PostCriteriaUnmet reports the reduced coverage after unmarking.
func (g *Generator) PostCriteriaUnmet(taskID, taskTitle string, metCount, totalCount int) Collection {
	if !g.enabled {
		return Collection{}
	}
	remaining := totalCount - metCount
	return Collection{Hints: []domain.Hint{{
		Category: domain.HintProgress,
		Message:  fmt.Sprintf("Criteria unmarked. %d/%d met for '%s'. %d remaining.", metCount, totalCount, taskTitle, remaining),
		Context: map[string]any{
			"task_id":     taskID,
			"met_count":   metCount,
			"total_count": totalCount,
			"remaining":   remaining,
		},
	}}}
}

// PostAcceptanceCriteriaAdd confirms the addition and offers to start work.
func (g *Generator) PostAcceptanceCriteriaAdd(taskID, taskTitle string, criteriaCount int) Collection {
	if !g.enabled {
		return Collection{}
	}
	return Collection{Hints: []domain.Hint{{
		Category: domain.HintWorkflow,
		Message:  fmt.Sprintf("Criterion added (%d total for '%s'). Add more criteria or start working.", criteriaCount, taskTitle),
		ToolCall: fmt.Sprintf("task_update(task_id='%s', status='in-progress')", taskID),
		Context: map[string]any{
			"task_id":        taskID,
			"criteria_count": criteriaCount,
		},
	}}}
}

// ─── Task memory hints ───────────────────────────────────────────────────────

// PostResearchAdd acknowledges recorded research.
func (g *Generator) PostResearchAdd(taskID, taskTitle, researchType string) Collection {
	if !g.enabled {
		return Collection{}
	}
	return Collection{Hints: []domain.Hint{{
		Category: domain.HintProgress,
		Message:  fmt.Sprintf("Research recorded for '%s'. Continue implementing.", taskTitle),
		Context: map[string]any{
			"task_id":       taskID,
			"research_type": researchType,
		},
	}}}
}

// PostImplementationNoteAdd points at the next unmet criterion if any.
func (g *Generator) PostImplementationNoteAdd(taskID, taskTitle string, unmetCriteriaIDs []string) Collection {
	if !g.enabled {
		return Collection{}
	}

	if len(unmetCriteriaIDs) > 0 {
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintWorkflow,
			Message:  fmt.Sprintf("Implementation note added for '%s'. Mark criteria as you complete them.", taskTitle),
			ToolCall: fmt.Sprintf("task_acceptance_criteria_mark_met(criteria_id='%s')", unmetCriteriaIDs[0]),
			Context: map[string]any{
				"task_id":      taskID,
				"unmet_count":  len(unmetCriteriaIDs),
				"criteria_ids": unmetCriteriaIDs,
			},
		}}}
	}
	return Collection{Hints: []domain.Hint{{
		Category: domain.HintWorkflow,
		Message:  fmt.Sprintf("Implementation note added for '%s'. Continue implementing.", taskTitle),
		Context:  map[string]any{"task_id": taskID},
	}}}
}

// PostTestingStepAdd nudges toward running the tests.
func (g *Generator) PostTestingStepAdd(taskID, taskTitle, stepType string) Collection {
	if !g.enabled {
		return Collection{}
	}
	return Collection{Hints: []domain.Hint{{
		Category: domain.HintWorkflow,
		Message:  fmt.Sprintf("Testing step added for '%s'. Run tests to verify implementation.", taskTitle),
		Context: map[string]any{
			"task_id":   taskID,
			"step_type": stepType,
		},
	}}}
}

// ─── Campaign memory hints ───────────────────────────────────────────────────

// PostCampaignResearchAdd keeps planning moving.
func (g *Generator) PostCampaignResearchAdd(campaignID, researchType string, taskCount int) Collection {
	if !g.enabled {
		return Collection{}
	}

	if taskCount == 0 {
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintWorkflow,
			Message:  "Campaign research added. Continue planning or create tasks.",
			ToolCall: fmt.Sprintf("task_create(campaign_id='%s', title='...')", campaignID),
			Context: map[string]any{
				"campaign_id":   campaignID,
				"research_type": researchType,
			},
		}}}
	}
	return Collection{Hints: []domain.Hint{{
		Category: domain.HintProgress,
		Message:  "Campaign research added. Continue planning or working on tasks.",
		Context: map[string]any{
			"campaign_id":   campaignID,
			"research_type": researchType,
			"task_count":    taskCount,
		},
	}}}
}

// PostCampaignCreateWithTasks summarizes the atomic batch creation.
func (g *Generator) PostCampaignCreateWithTasks(campaignID, campaignName string, taskCount, tasksWithCriteria int) Collection {
	if !g.enabled {
		return Collection{}
	}

	switch {
	case taskCount == 0:
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintWorkflow,
			Message:  fmt.Sprintf("Campaign '%s' created with no tasks. Add tasks to begin.", campaignName),
			ToolCall: fmt.Sprintf("task_create(campaign_id='%s', title='...')", campaignID),
			Context:  map[string]any{"campaign_id": campaignID},
		}}}
	case tasksWithCriteria == taskCount:
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintWorkflow,
			Message: fmt.Sprintf("Campaign '%s' created with %d tasks. All tasks have acceptance criteria. Ready for execution.",
				campaignName, taskCount),
			ToolCall: fmt.Sprintf("campaign_get_next_actionable_task(campaign_id='%s')", campaignID),
			Context: map[string]any{
				"campaign_id":   campaignID,
				"task_count":    taskCount,
				"with_criteria": tasksWithCriteria,
			},
		}}}
	}
	missing := taskCount - tasksWithCriteria
	return Collection{Hints: []domain.Hint{{
		Category: domain.HintWorkflow,
		Message: fmt.Sprintf("Campaign '%s' created with %d tasks. %d tasks need acceptance criteria.",
			campaignName, taskCount, missing),
		ToolCall: fmt.Sprintf("campaign_get_next_actionable_task(campaign_id='%s')", campaignID),
		Context: map[string]any{
			"campaign_id":      campaignID,
			"task_count":       taskCount,
			"with_criteria":    tasksWithCriteria,
			"without_criteria": missing,
		},
	}}}
}

// ─── Quality and health hints ────────────────────────────────────────────────

// TaskQuality flags missing task elements. The context parameter controls
// filtering: "inspection" gives the full set, "update" only speaks for
// in-progress tasks, "actionable" only warns about missing criteria. At
// most two hints are returned to keep responses quiet.
func (g *Generator) TaskQuality(info TaskCompleteness, context string) Collection {
	if !g.enabled {
		return Collection{}
	}
	if info.TaskStatus == domain.TaskDone {
		return Collection{}
	}
	if context == "update" && info.TaskStatus != domain.TaskInProgress {
		return Collection{}
	}

	var hints []domain.Hint
	if !info.HasAcceptanceCriteria {
		hints = append(hints, domain.Hint{
			Category: domain.HintQuality,
			Message:  fmt.Sprintf("Task '%s' has no acceptance criteria. Define completion requirements.", info.TaskTitle),
			ToolCall: fmt.Sprintf("task_acceptance_criteria_add(task_id='%s', content='...')", info.TaskID),
			Context: map[string]any{
				"task_id": info.TaskID,
				"missing": "acceptance_criteria",
			},
		})
	}

	if context == "actionable" {
		return Collection{Hints: hints}
	}

	if info.HasAcceptanceCriteria && !info.HasTestingStrategy {
		hints = append(hints, domain.Hint{
			Category: domain.HintQuality,
			Message:  fmt.Sprintf("Task '%s' has criteria but no testing strategy. Plan verification steps.", info.TaskTitle),
			ToolCall: fmt.Sprintf("task_testing_strategy_add(task_id='%s', content='...')", info.TaskID),
			Context: map[string]any{
				"task_id": info.TaskID,
				"missing": "testing_strategy",
			},
		})
	}
	if context == "inspection" && !info.HasResearch && len(hints) < 2 {
		hints = append(hints, domain.Hint{
			Category: domain.HintQuality,
			Message:  fmt.Sprintf("Task '%s' has no research notes. Consider documenting findings.", info.TaskTitle),
			ToolCall: fmt.Sprintf("task_research_add(task_id='%s', content='...')", info.TaskID),
			Context: map[string]any{
				"task_id": info.TaskID,
				"missing": "research",
			},
		})
	}

	if len(hints) > 2 {
		hints = hints[:2]
	}
	return Collection{Hints: hints}
}

// CampaignHealthHints flags definition gaps across the campaign. The
// "overview" context adds the health score.
func (g *Generator) CampaignHealthHints(info CampaignHealth, context string) Collection {
	if !g.enabled {
		return Collection{}
	}

	if info.TotalTasks == 0 {
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintQuality,
			Message:  "Campaign has no tasks. Add tasks to define the work.",
			ToolCall: fmt.Sprintf("task_create(campaign_id='%s', title='...')", info.CampaignID),
			Context:  map[string]any{"campaign_id": info.CampaignID},
		}}}
	}

	var hints []domain.Hint
	if info.TasksWithoutCriteria > 0 {
		toolCall := ""
		if info.FirstTaskWithoutCriteriaID != "" {
			toolCall = fmt.Sprintf("task_show(task_id='%s')", info.FirstTaskWithoutCriteriaID)
		}
		hints = append(hints, domain.Hint{
			Category: domain.HintQuality,
			Message:  fmt.Sprintf("%d of %d tasks have no acceptance criteria.", info.TasksWithoutCriteria, info.TotalTasks),
			ToolCall: toolCall,
			Context: map[string]any{
				"campaign_id":            info.CampaignID,
				"tasks_without_criteria": info.TasksWithoutCriteria,
				"first_task_id":          info.FirstTaskWithoutCriteriaID,
			},
		})
	}
	if info.TasksWithoutCriteria == 0 && info.TasksWithoutTesting > 0 {
		toolCall := ""
		if info.FirstTaskWithoutTestingID != "" {
			toolCall = fmt.Sprintf("task_show(task_id='%s')", info.FirstTaskWithoutTestingID)
		}
		hints = append(hints, domain.Hint{
			Category: domain.HintQuality,
			Message:  fmt.Sprintf("%d of %d tasks have no testing strategy.", info.TasksWithoutTesting, info.TotalTasks),
			ToolCall: toolCall,
			Context: map[string]any{
				"campaign_id":           info.CampaignID,
				"tasks_without_testing": info.TasksWithoutTesting,
				"first_task_id":         info.FirstTaskWithoutTestingID,
			},
		})
	}
	if context == "overview" && info.HealthScore() < 100 {
		hints = append(hints, domain.Hint{
			Category: domain.HintProgress,
			Message:  fmt.Sprintf("Campaign health: %v%%. Improve task definitions for better quality.", info.HealthScore()),
			Context: map[string]any{
				"campaign_id":  info.CampaignID,
				"health_score": info.HealthScore(),
			},
		})
	}
	return Collection{Hints: hints}
}

// CampaignSetupProgress gives stage-specific guidance through the setup
// workflow: create, add tasks, define criteria, plan testing, execute.
func (g *Generator) CampaignSetupProgress(campaignID, campaignName, stage string, health *CampaignHealth) Collection {
	if !g.enabled {
		return Collection{}
	}

	nextActionable := fmt.Sprintf("campaign_get_next_actionable_task(campaign_id='%s')", campaignID)

	switch stage {
	case StageCreated:
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintWorkflow,
			Message:  fmt.Sprintf("Campaign '%s' created. Next: Add tasks.", campaignName),
			ToolCall: fmt.Sprintf("task_create(campaign_id='%s', title='...')", campaignID),
			Context:  map[string]any{"campaign_id": campaignID, "stage": stage},
		}}}
	case StageTasksAdded:
		toolCall := nextActionable
		firstTaskID := ""
		if health != nil && health.FirstTaskWithoutCriteriaID != "" {
			firstTaskID = health.FirstTaskWithoutCriteriaID
			toolCall = fmt.Sprintf("task_show(task_id='%s')", firstTaskID)
		}
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintWorkflow,
			Message:  "Tasks added. Next: Define acceptance criteria for each task.",
			ToolCall: toolCall,
			Context: map[string]any{
				"campaign_id":   campaignID,
				"stage":         stage,
				"first_task_id": firstTaskID,
			},
		}}}
	case StageCriteriaDefined:
		toolCall := nextActionable
		firstTaskID := ""
		if health != nil && health.FirstTaskWithoutTestingID != "" {
			firstTaskID = health.FirstTaskWithoutTestingID
			toolCall = fmt.Sprintf("task_show(task_id='%s')", firstTaskID)
		}
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintWorkflow,
			Message:  "Criteria defined. Next: Add testing strategy for each task.",
			ToolCall: toolCall,
			Context: map[string]any{
				"campaign_id":   campaignID,
				"stage":         stage,
				"first_task_id": firstTaskID,
			},
		}}}
	case StageTestingPlanned:
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintWorkflow,
			Message:  "Campaign ready for execution. Start the first task.",
			ToolCall: nextActionable,
			Context:  map[string]any{"campaign_id": campaignID, "stage": stage},
		}}}
	case StageExecuting:
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintProgress,
			Message:  "Campaign in progress. Continue with the next actionable task.",
			ToolCall: nextActionable,
			Context:  map[string]any{"campaign_id": campaignID, "stage": stage},
		}}}
	case StageCompleted:
		return Collection{Hints: []domain.Hint{{
			Category: domain.HintCompletion,
			Message:  fmt.Sprintf("Campaign '%s' complete! All tasks done.", campaignName),
			ToolCall: fmt.Sprintf("campaign_update(campaign_id='%s', status='completed')", campaignID),
			Context:  map[string]any{"campaign_id": campaignID, "stage": stage},
		}}}
	}
	return Collection{}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
