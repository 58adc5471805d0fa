package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taskcrusade/crusader/internal/depgraph"
	"github.com/taskcrusade/crusader/internal/domain"
	"github.com/taskcrusade/crusader/internal/hints"
	"github.com/taskcrusade/crusader/internal/store"
)

// CampaignService implements campaign-level operations: CRUD, progress and
// actionable-task queries, campaign research, atomic batch creation,
// overview and snapshot exports, readiness validation, and renumbering.
type CampaignService struct {
	store *store.Store
	hints *hints.Generator
	log   *zap.Logger
}

// NewCampaignService wires a campaign service.
func NewCampaignService(st *store.Store, g *hints.Generator, log *zap.Logger) *CampaignService {
	return &CampaignService{store: st, hints: g, log: log}
}

// ─── CRUD ────────────────────────────────────────────────────────────────────

// CreateCampaignInput holds campaign creation fields.
type CreateCampaignInput struct {
	Name        string
	Description string
	Priority    string
	Metadata    map[string]any
}

// Create makes a new campaign. Names are unique across the store.
func (s *CampaignService) Create(in CreateCampaignInput) domain.Result {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.ValidationError("Campaign name cannot be empty or whitespace", nil)
	}

	c, err := s.store.CreateCampaign(store.CreateCampaignParams{
		Name:        name,
		Description: in.Description,
		Priority:    in.Priority,
		Metadata:    in.Metadata,
	})
	if err != nil {
		if err == store.ErrDuplicate {
			return domain.AlreadyExists("Campaign", name)
		}
		return domain.OperationFailed("create_campaign", err.Error())
	}
	s.log.Info("campaign created", zap.String("campaign_id", c.ID), zap.String("name", name))

	data := c.AsMap()
	mergeHints(data, s.hints, s.hints.PostCampaignCreate(c.ID, c.Name))
	return domain.OK(data)
}

// Get resolves a campaign by ID or name.
func (s *CampaignService) Get(ref string) domain.Result {
	c, err := s.store.ResolveCampaign(ref)
	if err != nil {
		return storeFail(err, "get_campaign", "Campaign", ref)
	}
	return domain.OK(c.AsMap())
}

// ShowWithTasks returns the campaign with its task list attached. With
// includeDetails false, each task is reduced to id, title, status, and
// priority.
func (s *CampaignService) ShowWithTasks(ref string, includeDetails bool) domain.Result {
	c, err := s.store.ResolveCampaign(ref)
	if err != nil {
		return storeFail(err, "get_campaign_with_tasks", "Campaign", ref)
	}

	tasks, err := s.store.ListTasks(store.TaskFilter{CampaignID: c.ID})
	if err != nil {
		return domain.OperationFailed("get_campaign_with_tasks", err.Error())
	}

	m := c.AsMap()
	if includeDetails {
		m["tasks"] = taskMaps(tasks)
	} else {
		brief := make([]map[string]any, len(tasks))
		for i, t := range tasks {
			brief[i] = map[string]any{
				"id":       t.ID,
				"title":    t.Title,
				"status":   t.Status,
				"priority": t.Priority,
			}
		}
		m["tasks"] = brief
	}
	return domain.OK(m)
}

// List returns campaigns newest first, optionally filtered, each with its
// task statistics attached.
func (s *CampaignService) List(status, priority string) domain.Result {
	campaigns, err := s.store.ListCampaigns(status, priority)
	if err != nil {
		return domain.OperationFailed("list_campaigns", err.Error())
	}

	out := make([]map[string]any, len(campaigns))
	for i, c := range campaigns {
		m := c.AsMap()
		counts, err := s.store.CountTasksByStatus(c.ID)
		if err == nil {
			total := 0
			for _, n := range counts {
				total += n
			}
			m["task_statistics"] = map[string]any{
				"total":       total,
				"pending":     counts[domain.TaskPending],
				"in_progress": counts[domain.TaskInProgress],
				"done":        counts[domain.TaskDone],
				"blocked":     counts[domain.TaskBlocked],
			}
		}
		out[i] = m
	}
	return domain.OK(out)
}

// UpdateCampaignInput holds partial campaign updates.
type UpdateCampaignInput struct {
	Name        *string
	Description *string
	Status      *string
	Priority    *string
}

// Update applies partial changes to a campaign.
func (s *CampaignService) Update(campaignID string, in UpdateCampaignInput) domain.Result {
	c, err := s.store.UpdateCampaign(campaignID, store.UpdateCampaignParams{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
	})
	if err != nil {
		if err == store.ErrDuplicate {
			return domain.AlreadyExists("Campaign", *in.Name)
		}
		return storeFail(err, "update_campaign", "Campaign", campaignID)
	}
	return domain.OK(c.AsMap())
}

// Delete removes a campaign with all its tasks.
func (s *CampaignService) Delete(campaignID string) domain.Result {
	tasksDeleted, err := s.store.DeleteCampaign(campaignID)
	if err != nil {
		return storeFail(err, "delete_campaign", "Campaign", campaignID)
	}
	s.log.Info("campaign deleted",
		zap.String("campaign_id", campaignID), zap.Int("tasks_deleted", tasksDeleted))
	return domain.OK(map[string]any{
		"campaign_id":   campaignID,
		"tasks_deleted": tasksDeleted,
		"message":       fmt.Sprintf("Campaign '%s' deleted successfully", campaignID),
	})
}

// ─── Progress & actionable queries ───────────────────────────────────────────

// ProgressSummary returns the lightweight progress payload with hints.
func (s *CampaignService) ProgressSummary(campaignID string) domain.Result {
	c, err := s.store.GetCampaign(campaignID)
	if err != nil {
		return storeFail(err, "get_progress_summary", "Campaign", campaignID)
	}

	data, err := progressSummary(s.store, c)
	if err != nil {
		return domain.OperationFailed("get_progress_summary", err.Error())
	}

	progress, perr := progressInfo(s.store, campaignID)
	if perr == nil {
		mergeHints(data, s.hints, s.hints.PostCampaignProgress(campaignID, progress))
	}
	return domain.OK(data)
}

// NextActionableTask returns the single most urgent unblocked task, with
// criteria attached and, at full depth, research and notes too.
func (s *CampaignService) NextActionableTask(campaignID, contextDepth string) domain.Result {
	c, err := s.store.GetCampaign(campaignID)
	if err != nil {
		return storeFail(err, "get_next_actionable_task", "Campaign", campaignID)
	}
	if contextDepth == "" {
		contextDepth = "basic"
	}

	candidates, err := s.store.ActionableTasks(campaignID, 1)
	if err != nil {
		return domain.OperationFailed("get_next_actionable_task", err.Error())
	}

	progressData, err := progressSummary(s.store, c)
	if err != nil {
		return domain.OperationFailed("get_next_actionable_task", err.Error())
	}
	progress, perr := progressInfo(s.store, campaignID)

	if len(candidates) == 0 {
		data := map[string]any{
			"task":              nil,
			"campaign_progress": progressData,
			"message":           "No actionable tasks found. All tasks may be blocked or completed.",
		}
		if perr == nil {
			mergeHints(data, s.hints, s.hints.ActionableTask(nil, nil, campaignID, &progress))
		}
		return domain.OK(data)
	}

	task := candidates[0]
	taskData, criteriaIDs := s.enrichTask(task, contextDepth)

	data := map[string]any{
		"task":              taskData,
		"dependencies_met":  true,
		"campaign_progress": progressData,
		"context_depth":     contextDepth,
	}
	if perr == nil {
		mergeHints(data, s.hints, s.hints.ActionableTask(&task, criteriaIDs, campaignID, &progress))
	}
	return domain.OK(data)
}

// AllActionableTasks returns every unblocked task up to maxResults for
// parallel execution, warning when work is already claimed.
func (s *CampaignService) AllActionableTasks(campaignID string, maxResults int, contextDepth string) domain.Result {
	c, err := s.store.GetCampaign(campaignID)
	if err != nil {
		return storeFail(err, "get_all_actionable_tasks", "Campaign", campaignID)
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	if contextDepth == "" {
		contextDepth = "basic"
	}

	tasks, err := s.store.ActionableTasks(campaignID, maxResults)
	if err != nil {
		return domain.OperationFailed("get_all_actionable_tasks", err.Error())
	}

	enriched := make([]map[string]any, len(tasks))
	inProgress := 0
	for i, t := range tasks {
		enriched[i], _ = s.enrichTask(t, contextDepth)
		if t.Status == domain.TaskInProgress {
			inProgress++
		}
	}

	warnings := []string{}
	if inProgress > 0 {
		warnings = append(warnings, fmt.Sprintf("%d tasks currently in-progress", inProgress))
	}

	progressData, err := progressSummary(s.store, c)
	if err != nil {
		return domain.OperationFailed("get_all_actionable_tasks", err.Error())
	}

	data := map[string]any{
		"actionable_tasks":      enriched,
		"total_actionable":      len(tasks),
		"has_in_progress_tasks": inProgress > 0,
		"warnings":              warnings,
		"campaign_progress":     progressData,
		"context_depth":         contextDepth,
	}
	if progress, perr := progressInfo(s.store, campaignID); perr == nil {
		mergeHints(data, s.hints, s.hints.ActionableTasks(tasks, campaignID, &progress))
	}
	return domain.OK(data)
}

// ─── Campaign research ───────────────────────────────────────────────────────

// AddResearch records a research item against the campaign.
func (s *CampaignService) AddResearch(campaignID, content, researchType string) domain.Result {
	if _, err := s.store.GetCampaign(campaignID); err != nil {
		return storeFail(err, "add_campaign_research", "Campaign", campaignID)
	}
	if researchType == "" {
		researchType = "analysis"
	}

	a, err := s.store.AddAttachment(store.AddAttachmentParams{
		CampaignID: campaignID,
		Kind:       domain.KindResearch,
		Content:    content,
		Subtype:    researchType,
	})
	if err != nil {
		return domain.OperationFailed("add_campaign_research", err.Error())
	}

	data := map[string]any{
		"id":            a.ID,
		"campaign_id":   campaignID,
		"content":       content,
		"research_type": researchType,
	}
	counts, cerr := s.store.CountTasksByStatus(campaignID)
	taskCount := 0
	if cerr == nil {
		for _, n := range counts {
			taskCount += n
		}
	}
	mergeHints(data, s.hints, s.hints.PostCampaignResearchAdd(campaignID, researchType, taskCount))
	return domain.OK(data)
}

// ListResearch returns the campaign's research, optionally filtered by type.
func (s *CampaignService) ListResearch(campaignID, researchType string) domain.Result {
	if _, err := s.store.GetCampaign(campaignID); err != nil {
		return storeFail(err, "list_campaign_research", "Campaign", campaignID)
	}
	items, err := s.store.ListAttachments(store.AttachmentFilter{
		CampaignID: campaignID,
		Kind:       domain.KindResearch,
		Subtype:    researchType,
	})
	if err != nil {
		return domain.OperationFailed("list_campaign_research", err.Error())
	}
	return domain.OK(campaignResearchMaps(items))
}

// GetResearch returns one campaign research item.
func (s *CampaignService) GetResearch(campaignID, researchID string) domain.Result {
	a, res := s.campaignResearch(campaignID, researchID)
	if res != nil {
		return *res
	}
	return domain.OK(campaignResearchMap(*a))
}

// UpdateResearch rewrites a campaign research item's content and/or type.
func (s *CampaignService) UpdateResearch(campaignID, researchID string, content, researchType *string) domain.Result {
	if _, res := s.campaignResearch(campaignID, researchID); res != nil {
		return *res
	}
	if content == nil && researchType == nil {
		return s.GetResearch(campaignID, researchID)
	}
	if _, err := s.store.UpdateAttachment(researchID, store.UpdateAttachmentParams{
		Content: content,
		Subtype: researchType,
	}); err != nil {
		return storeFail(err, "update_campaign_research", "Research item", researchID)
	}
	return s.GetResearch(campaignID, researchID)
}

// DeleteResearch removes a campaign research item.
func (s *CampaignService) DeleteResearch(campaignID, researchID string) domain.Result {
	if _, res := s.campaignResearch(campaignID, researchID); res != nil {
		return *res
	}
	if err := s.store.DeleteAttachment(researchID); err != nil {
		return storeFail(err, "delete_campaign_research", "Research item", researchID)
	}
	return domain.OK(map[string]any{
		"deleted":     true,
		"research_id": researchID,
		"campaign_id": campaignID,
	})
}

// ReorderResearch moves a campaign research item to a new position.
func (s *CampaignService) ReorderResearch(campaignID, researchID string, newOrder int) domain.Result {
	if _, res := s.campaignResearch(campaignID, researchID); res != nil {
		return *res
	}
	if _, err := s.store.UpdateAttachment(researchID, store.UpdateAttachmentParams{OrderIndex: &newOrder}); err != nil {
		return storeFail(err, "reorder_campaign_research", "Research item", researchID)
	}
	return s.GetResearch(campaignID, researchID)
}

// ─── Batch creation ──────────────────────────────────────────────────────────

// CreateWithTasks creates a campaign and its whole task graph atomically.
// Task dependencies reference temp_ids; the validator checks the graph and
// yields the creation order before anything touches the store.
func (s *CampaignService) CreateWithTasks(spec depgraph.CampaignSpec) domain.Result {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return domain.ValidationError("Campaign name cannot be empty or whitespace", nil)
	}

	validation := depgraph.Validate(spec.Tasks)
	if validation.IsFailure() {
		return validation
	}
	order, _ := validation.DataMap()["order"].([]string)

	byTempID := make(map[string]depgraph.TaskSpec, len(spec.Tasks))
	for _, t := range spec.Tasks {
		byTempID[t.TempID] = t
	}

	batch := make([]store.BatchTask, 0, len(order))
	for _, tempID := range order {
		ts, ok := byTempID[tempID]
		if !ok {
			continue
		}
		bt := store.BatchTask{
			TempID:      tempID,
			Title:       ts.Title,
			Description: ts.Description,
			Priority:    ts.Priority,
			Type:        ts.TaskType,
			Tags:        ts.Tags,
			DependsOn:   ts.Dependencies,
		}
		bt.AcceptanceCriteria = ts.AcceptanceCriteria
		for _, r := range ts.Research {
			bt.Research = append(bt.Research, store.BatchResearch{
				Content: r.Content,
				Type:    researchTypeOrDefault(r.Type),
			})
		}
		batch = append(batch, bt)
	}

	var campaignResearch []store.BatchResearch
	for _, r := range spec.Research {
		t := r.Type
		if t == "" {
			t = "analysis"
		}
		campaignResearch = append(campaignResearch, store.BatchResearch{Content: r.Content, Type: t})
	}

	campaign, tasks, err := s.store.CreateCampaignWithTasks(store.CreateCampaignParams{
		Name:        name,
		Description: spec.Description,
		Priority:    spec.Priority,
	}, batch, campaignResearch)
	if err != nil {
		if err == store.ErrDuplicate {
			return domain.AlreadyExists("Campaign", name)
		}
		return domain.OperationFailed("create_campaign_with_tasks", err.Error())
	}
	s.log.Info("campaign created with tasks",
		zap.String("campaign_id", campaign.ID), zap.Int("tasks", len(tasks)))

	tempIDToUUID := map[string]any{}
	createdTasks := make([]map[string]any, len(tasks))
	withCriteria := 0
	withResearch := 0
	for i, t := range tasks {
		tempID := batch[i].TempID
		tempIDToUUID[tempID] = t.ID

		m := t.AsMap()
		m["temp_id"] = tempID
		if len(batch[i].AcceptanceCriteria) > 0 {
			withCriteria++
			m["acceptance_criteria_details"] = attachmentMaps(
				s.listTaskKind(t.ID, domain.KindAcceptanceCriteria))
		}
		if len(batch[i].Research) > 0 {
			withResearch++
			m["research"] = attachmentMaps(s.listTaskKind(t.ID, domain.KindResearch))
		}
		createdTasks[i] = m
	}

	data := map[string]any{
		"campaign":        campaign.AsMap(),
		"tasks":           createdTasks,
		"temp_id_to_uuid": tempIDToUUID,
		"summary": map[string]any{
			"total_tasks":   len(createdTasks),
			"with_criteria": withCriteria,
			"with_research": withResearch,
		},
	}
	mergeHints(data, s.hints,
		s.hints.PostCampaignCreateWithTasks(campaign.ID, name, len(createdTasks), withCriteria))
	return domain.OK(data)
}

// ─── Overview, snapshot, readiness ───────────────────────────────────────────

// Overview returns campaign, progress, recent and actionable tasks, and
// campaign research in one payload.
func (s *CampaignService) Overview(campaignID string) domain.Result {
	c, err := s.store.GetCampaign(campaignID)
	if err != nil {
		return storeFail(err, "get_campaign_overview", "Campaign", campaignID)
	}

	progressData, err := progressSummary(s.store, c)
	if err != nil {
		return domain.OperationFailed("get_campaign_overview", err.Error())
	}

	all, err := s.store.ListTasks(store.TaskFilter{CampaignID: campaignID})
	if err != nil {
		return domain.OperationFailed("get_campaign_overview", err.Error())
	}
	recent := all
	if len(recent) > 5 {
		recent = recent[:5]
	}

	actionable, err := s.store.ActionableTasks(campaignID, 5)
	if err != nil {
		return domain.OperationFailed("get_campaign_overview", err.Error())
	}

	research, err := s.store.ListAttachments(store.AttachmentFilter{
		CampaignID: campaignID,
		Kind:       domain.KindResearch,
	})
	if err != nil {
		return domain.OperationFailed("get_campaign_overview", err.Error())
	}

	counts, err := s.store.CountTasksByStatus(campaignID)
	if err != nil {
		return domain.OperationFailed("get_campaign_overview", err.Error())
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	completionRate := 0.0
	if total > 0 {
		completionRate = round2(float64(counts[domain.TaskDone]) / float64(total) * 100)
	}

	return domain.OK(map[string]any{
		"campaign":         c.AsMap(),
		"progress":         progressData,
		"recent_tasks":     taskMaps(recent),
		"actionable_tasks": taskMaps(actionable),
		"research_items":   campaignResearchMaps(research),
		"summary": map[string]any{
			"total_tasks":       total,
			"completed_tasks":   counts[domain.TaskDone],
			"in_progress_tasks": counts[domain.TaskInProgress],
			"blocked_tasks":     counts[domain.TaskBlocked],
			"completion_rate":   completionRate,
			"actionable_count":  len(actionable),
			"research_count":    len(research),
		},
	})
}

// StateSnapshot exports the full campaign state: every task with all of its
// attachments, campaign research, and progress.
func (s *CampaignService) StateSnapshot(campaignID string) domain.Result {
	c, err := s.store.GetCampaign(campaignID)
	if err != nil {
		return storeFail(err, "get_state_snapshot", "Campaign", campaignID)
	}

	tasks, err := s.store.ListTasks(store.TaskFilter{CampaignID: campaignID})
	if err != nil {
		return domain.OperationFailed("get_state_snapshot", err.Error())
	}

	totalCriteria := 0
	totalResearch := 0
	totalNotes := 0
	tasksData := make([]map[string]any, len(tasks))
	for i, t := range tasks {
		m := t.AsMap()
		criteria := s.listTaskKind(t.ID, domain.KindAcceptanceCriteria)
		research := s.listTaskKind(t.ID, domain.KindResearch)
		notes := s.listTaskKind(t.ID, domain.KindImplementationNote)
		m["acceptance_criteria_details"] = attachmentMaps(criteria)
		m["research"] = attachmentMaps(research)
		m["implementation_notes"] = attachmentMaps(notes)
		totalCriteria += len(criteria)
		totalResearch += len(research)
		totalNotes += len(notes)
		tasksData[i] = m
	}

	campaignResearch, err := s.store.ListAttachments(store.AttachmentFilter{
		CampaignID: campaignID,
		Kind:       domain.KindResearch,
	})
	if err != nil {
		return domain.OperationFailed("get_state_snapshot", err.Error())
	}

	progressData, err := progressSummary(s.store, c)
	if err != nil {
		return domain.OperationFailed("get_state_snapshot", err.Error())
	}

	return domain.OK(map[string]any{
		"campaign":          c.AsMap(),
		"tasks":             tasksData,
		"campaign_research": campaignResearchMaps(campaignResearch),
		"progress":          progressData,
		"metadata": map[string]any{
			"total_tasks":    len(tasksData),
			"total_criteria": totalCriteria,
			"total_research": totalResearch + len(campaignResearch),
			"total_notes":    totalNotes,
		},
	})
}

// ValidateReadiness checks whether the campaign can start executing: tasks
// exist, dependencies resolve, no cycles, and something is actionable.
func (s *CampaignService) ValidateReadiness(campaignID string) domain.Result {
	c, err := s.store.GetCampaign(campaignID)
	if err != nil {
		return storeFail(err, "validate_readiness", "Campaign", campaignID)
	}

	tasks, err := s.store.ListTasks(store.TaskFilter{CampaignID: campaignID})
	if err != nil {
		return domain.OperationFailed("validate_readiness", err.Error())
	}

	issues := []string{}
	warnings := []string{}

	if len(tasks) == 0 {
		issues = append(issues, "Campaign has no tasks")
	}

	taskIDs := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		taskIDs[t.ID] = true
	}
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if !taskIDs[dep] {
				issues = append(issues,
					fmt.Sprintf("Task '%s' has invalid dependency: %s", t.Title, dep))
			}
		}
	}

	if cycle := detectCycle(tasks); cycle != "" {
		issues = append(issues, "Circular dependency detected: "+cycle)
	}

	actionable, err := s.store.ActionableTasks(campaignID, 1)
	if err != nil {
		return domain.OperationFailed("validate_readiness", err.Error())
	}
	if len(actionable) == 0 && len(tasks) > 0 {
		warnings = append(warnings, "No actionable tasks - all tasks may be blocked")
	}

	withoutCriteria := 0
	for _, t := range tasks {
		if len(s.listTaskKind(t.ID, domain.KindAcceptanceCriteria)) == 0 {
			withoutCriteria++
		}
	}
	if withoutCriteria > 0 {
		warnings = append(warnings,
			fmt.Sprintf("%d tasks have no acceptance criteria", withoutCriteria))
	}

	return domain.OK(map[string]any{
		"campaign_id":   campaignID,
		"campaign_name": c.Name,
		"is_ready":      len(issues) == 0,
		"issues":        issues,
		"warnings":      warnings,
		"summary": map[string]any{
			"total_tasks":            len(tasks),
			"actionable_tasks":       len(actionable),
			"tasks_without_criteria": withoutCriteria,
		},
	})
}

// RenumberTasks assigns sequential priority_order numbers following the
// dependency order, ties broken by title.
func (s *CampaignService) RenumberTasks(campaignID string, startFrom int) domain.Result {
	if _, err := s.store.GetCampaign(campaignID); err != nil {
		return storeFail(err, "renumber_tasks", "Campaign", campaignID)
	}
	if startFrom <= 0 {
		startFrom = 1
	}

	tasks, err := s.store.ListTasks(store.TaskFilter{CampaignID: campaignID})
	if err != nil {
		return domain.OperationFailed("renumber_tasks", err.Error())
	}
	if len(tasks) == 0 {
		return domain.OK(map[string]any{
			"campaign_id":      campaignID,
			"tasks_renumbered": 0,
			"message":          "No tasks to renumber",
		})
	}

	ordered := topologicalOrder(tasks)
	if err := s.store.RenumberTasks(ordered, startFrom); err != nil {
		return domain.OperationFailed("renumber_tasks", err.Error())
	}

	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}
	renumbered := make([]map[string]any, len(ordered))
	for i, id := range ordered {
		renumbered[i] = map[string]any{
			"task_id": id,
			"title":   titles[id],
			"number":  startFrom + i,
		}
	}

	return domain.OK(map[string]any{
		"campaign_id":      campaignID,
		"tasks_renumbered": len(renumbered),
		"tasks":            renumbered,
	})
}

// ─── Internal helpers ────────────────────────────────────────────────────────

// enrichTask serializes a task with its criteria, plus research and notes
// at full depth. Returns the map and the IDs of the task's criteria.
func (s *CampaignService) enrichTask(t domain.Task, contextDepth string) (map[string]any, []string) {
	m := t.AsMap()
	criteria := s.listTaskKind(t.ID, domain.KindAcceptanceCriteria)
	m["acceptance_criteria_details"] = attachmentMaps(criteria)
	if contextDepth == "full" {
		m["research"] = attachmentMaps(s.listTaskKind(t.ID, domain.KindResearch))
		m["implementation_notes"] = attachmentMaps(s.listTaskKind(t.ID, domain.KindImplementationNote))
	}
	ids := make([]string, len(criteria))
	for i, c := range criteria {
		ids[i] = c.ID
	}
	return m, ids
}

func (s *CampaignService) listTaskKind(taskID, kind string) []domain.Attachment {
	items, err := s.store.ListAttachments(store.AttachmentFilter{TaskID: taskID, Kind: kind})
	if err != nil {
		s.log.Warn("attachment list failed",
			zap.String("task_id", taskID), zap.String("kind", kind), zap.Error(err))
		return nil
	}
	return items
}

// campaignResearch loads a research attachment and verifies campaign
// ownership. On any mismatch the second return value carries the not_found
// Result to hand back.
func (s *CampaignService) campaignResearch(campaignID, researchID string) (*domain.Attachment, *domain.Result) {
	if _, err := s.store.GetCampaign(campaignID); err != nil {
		r := storeFail(err, "get_campaign_research", "Campaign", campaignID)
		return nil, &r
	}
	a, err := s.store.GetAttachment(researchID)
	if err != nil || a.CampaignID != campaignID || a.Kind != domain.KindResearch {
		r := domain.NotFound("Research item", researchID)
		return nil, &r
	}
	return a, nil
}

func campaignResearchMap(a domain.Attachment) map[string]any {
	return map[string]any{
		"id":            a.ID,
		"campaign_id":   a.CampaignID,
		"content":       a.Content,
		"research_type": a.Subtype,
		"order_index":   a.OrderIndex,
		"created_at":    a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func campaignResearchMaps(items []domain.Attachment) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, a := range items {
		out[i] = campaignResearchMap(a)
	}
	return out
}

// detectCycle runs a three-color DFS over the campaign's dependency graph
// and renders the first cycle found as a title chain, or "" when acyclic.
func detectCycle(tasks []domain.Task) string {
	const (
		white = iota
		gray
		black
	)
	titles := make(map[string]string, len(tasks))
	deps := make(map[string][]string, len(tasks))
	color := make(map[string]int, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
		deps[t.ID] = t.Dependencies
		color[t.ID] = white
	}

	var path []string
	var visit func(id string) string
	visit = func(id string) string {
		color[id] = gray
		path = append(path, id)

		for _, dep := range deps[id] {
			if _, known := color[dep]; !known {
				continue
			}
			if color[dep] == gray {
				start := 0
				for i, p := range path {
					if p == dep {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, path[start:]...), dep)
				names := make([]string, len(cycle))
				for i, tid := range cycle {
					names[i] = titles[tid]
				}
				return strings.Join(names, " -> ")
			}
			if color[dep] == white {
				if found := visit(dep); found != "" {
					return found
				}
			}
		}

		path = path[:len(path)-1]
		color[id] = black
		return ""
	}

	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	for _, id := range ids {
		if color[id] == white {
			if found := visit(id); found != "" {
				return found
			}
		}
	}
	return ""
}

// topologicalOrder sorts task IDs dependency-first with Kahn's algorithm,
// breaking ties by title. Tasks caught in a cycle go at the end.
func topologicalOrder(tasks []domain.Task) []string {
	ids := make(map[string]bool, len(tasks))
	titles := make(map[string]string, len(tasks))
	inDegree := make(map[string]int, len(tasks))
	dependents := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
		titles[t.ID] = t.Title
		inDegree[t.ID] = 0
	}
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if ids[dep] {
				inDegree[t.ID]++
				dependents[dep] = append(dependents[dep], t.ID)
			}
		}
	}

	var queue []string
	for _, t := range tasks {
		if inDegree[t.ID] == 0 {
			queue = append(queue, t.ID)
		}
	}

	var result []string
	for len(queue) > 0 {
		sort.Slice(queue, func(i, j int) bool {
			return titles[queue[i]] < titles[queue[j]]
		})
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		for _, dep := range dependents[current] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	seen := make(map[string]bool, len(result))
	for _, id := range result {
		seen[id] = true
	}
	for _, t := range tasks {
		if !seen[t.ID] {
			result = append(result, t.ID)
		}
	}
	return result
}
