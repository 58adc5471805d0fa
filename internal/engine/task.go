package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taskcrusade/crusader/internal/domain"
	"github.com/taskcrusade/crusader/internal/hints"
	"github.com/taskcrusade/crusader/internal/store"
)

// TaskService implements every task-level operation: CRUD, the completion
// workflow, acceptance criteria, research, implementation notes, testing
// steps, search, stats, and bulk updates.
type TaskService struct {
	store *store.Store
	hints *hints.Generator
	log   *zap.Logger
}

// NewTaskService wires a task service.
func NewTaskService(st *store.Store, g *hints.Generator, log *zap.Logger) *TaskService {
	return &TaskService{store: st, hints: g, log: log}
}

// ─── CRUD ────────────────────────────────────────────────────────────────────

// CreateTaskInput holds everything task creation accepts, including optional
// acceptance criteria and research added right after the task exists.
type CreateTaskInput struct {
	Title              string
	CampaignID         string
	Description        string
	Priority           string
	Category           string
	Type               string
	Dependencies       []string
	Tags               []string
	AcceptanceCriteria []string
	Research           []ResearchInput
}

// Create makes a new task in an existing campaign. Dependencies must name
// existing tasks.
func (s *TaskService) Create(in CreateTaskInput) domain.Result {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.ValidationError("Task title cannot be empty or whitespace", nil)
	}

	if _, err := s.store.GetCampaign(in.CampaignID); err != nil {
		return domain.NotFound("Campaign", in.CampaignID)
	}

	if bad := s.invalidDependencies(in.CampaignID, in.Dependencies); len(bad) > 0 {
		return domain.ValidationError(
			fmt.Sprintf("Invalid dependency task IDs: %s", quoteIDs(bad)), nil)
	}

	task, err := s.store.CreateTask(store.CreateTaskParams{
		CampaignID:   in.CampaignID,
		Title:        title,
		Description:  in.Description,
		Priority:     in.Priority,
		Type:         in.Type,
		Category:     in.Category,
		Tags:         in.Tags,
		Dependencies: in.Dependencies,
	})
	if err != nil {
		return domain.OperationFailed("create_task", err.Error())
	}
	s.log.Info("task created", zap.String("task_id", task.ID), zap.String("campaign_id", in.CampaignID))

	data := task.AsMap()

	if len(in.AcceptanceCriteria) > 0 {
		var created []map[string]any
		for _, content := range in.AcceptanceCriteria {
			a, err := s.store.AddAttachment(store.AddAttachmentParams{
				TaskID:  task.ID,
				Kind:    domain.KindAcceptanceCriteria,
				Content: content,
			})
			if err != nil {
				continue
			}
			created = append(created, a.AsMap())
		}
		data["acceptance_criteria_details"] = created
	}

	if len(in.Research) > 0 {
		var created []map[string]any
		for _, item := range in.Research {
			a, err := s.store.AddAttachment(store.AddAttachmentParams{
				TaskID:  task.ID,
				Kind:    domain.KindResearch,
				Content: item.Content,
				Subtype: researchTypeOrDefault(item.Type),
			})
			if err != nil {
				continue
			}
			created = append(created, a.AsMap())
		}
		data["research"] = created
	}

	mergeHints(data, s.hints,
		s.hints.PostTaskCreate(task.ID, task.Title, in.CampaignID, len(in.AcceptanceCriteria)))
	return domain.OK(data)
}

// Get returns the task with criteria, research, notes, and testing steps
// attached, plus quality hints for inspection.
func (s *TaskService) Get(taskID string) domain.Result {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return storeFail(err, "get_task", "Task", taskID)
	}

	data := task.AsMap()
	criteria := s.listKind(taskID, domain.KindAcceptanceCriteria)
	research := s.listKind(taskID, domain.KindResearch)
	notes := s.listKind(taskID, domain.KindImplementationNote)
	steps := s.listKind(taskID, domain.KindTestingStep)
	data["acceptance_criteria_details"] = attachmentMaps(criteria)
	data["research"] = attachmentMaps(research)
	data["implementation_notes"] = attachmentMaps(notes)
	data["testing_steps"] = attachmentMaps(steps)

	mergeHints(data, s.hints, s.hints.TaskQuality(hints.TaskCompleteness{
		TaskID:                task.ID,
		TaskTitle:             task.Title,
		TaskStatus:            task.Status,
		HasAcceptanceCriteria: len(criteria) > 0,
		CriteriaCount:         len(criteria),
		HasTestingStrategy:    len(steps) > 0,
		TestingStepsCount:     len(steps),
		HasResearch:           len(research) > 0,
	}, "inspection"))
	return domain.OK(data)
}

// List returns tasks matching the filter.
func (s *TaskService) List(f store.TaskFilter) domain.Result {
	tasks, err := s.store.ListTasks(f)
	if err != nil {
		return domain.OperationFailed("list_tasks", err.Error())
	}
	return domain.OK(taskMaps(tasks))
}

// UpdateTaskInput holds partial task updates. Nil pointers and nil slices
// mean "not provided". An empty non-nil Dependencies slice clears every
// dependency.
type UpdateTaskInput struct {
	Title              *string
	Description        *string
	Status             *string
	Priority           *string
	Category           *string
	FailureReason      *string
	Dependencies       []string
	HasDependencies    bool
	AddDependencies    []string
	RemoveDependencies []string
}

// Update applies partial changes. Dependency edits come in three exclusive
// modes: replace the whole set, add IDs, or remove IDs.
func (s *TaskService) Update(taskID string, in UpdateTaskInput) domain.Result {
	old, err := s.store.GetTask(taskID)
	if err != nil {
		return domain.NotFound("Task", taskID)
	}
	oldStatus := old.Status

	modes := 0
	if in.HasDependencies {
		modes++
	}
	if in.AddDependencies != nil {
		modes++
	}
	if in.RemoveDependencies != nil {
		modes++
	}
	if modes > 1 {
		return domain.ValidationError(
			"Only one of 'dependencies', 'add_dependencies', or 'remove_dependencies' can be provided per call", nil)
	}

	var newDeps []string
	setDeps := false
	switch {
	case in.HasDependencies:
		newDeps, setDeps = in.Dependencies, true
	case in.AddDependencies != nil:
		newDeps = append(newDeps, old.Dependencies...)
		for _, dep := range in.AddDependencies {
			if !containsID(newDeps, dep) {
				newDeps = append(newDeps, dep)
			}
		}
		setDeps = true
	case in.RemoveDependencies != nil:
		for _, dep := range old.Dependencies {
			if !containsID(in.RemoveDependencies, dep) {
				newDeps = append(newDeps, dep)
			}
		}
		setDeps = true
	}

	if setDeps {
		for _, dep := range newDeps {
			if dep == taskID {
				return domain.ValidationError(
					fmt.Sprintf("Task cannot depend on itself: %s", taskID), nil)
			}
		}
		if bad := s.invalidDependencies(old.CampaignID, newDeps); len(bad) > 0 {
			return domain.ValidationError(
				fmt.Sprintf("Invalid dependency task IDs: %s", quoteIDs(bad)), nil)
		}
		if err := s.store.SetTaskDependencies(taskID, newDeps); err != nil {
			return domain.OperationFailed("update_task", err.Error())
		}
	}

	task, err := s.store.UpdateTask(taskID, store.UpdateTaskParams{
		Title:         in.Title,
		Description:   in.Description,
		Status:        in.Status,
		Priority:      in.Priority,
		Category:      in.Category,
		FailureReason: in.FailureReason,
	})
	if err != nil {
		return storeFail(err, "update_task", "Task", taskID)
	}

	data := task.AsMap()

	if in.Status != nil && oldStatus != task.Status {
		criteria := s.listKind(taskID, domain.KindAcceptanceCriteria)
		unmet := 0
		for _, c := range criteria {
			if !c.IsMet {
				unmet++
			}
		}

		var blocking []domain.Task
		if task.Status == domain.TaskBlocked {
			deps, err := s.store.DependencyTasks(taskID)
			if err == nil {
				for _, d := range deps {
					if d.Status != domain.TaskDone {
						blocking = append(blocking, d)
					}
				}
			}
		}
		mergeHints(data, s.hints,
			s.hints.PostTaskStatusChange(taskID, task.Title, task.Status, len(criteria), unmet, blocking))
	}
	return domain.OK(data)
}

// Delete removes a task and everything attached to it.
func (s *TaskService) Delete(taskID string) domain.Result {
	if err := s.store.DeleteTask(taskID); err != nil {
		return storeFail(err, "delete_task", "Task", taskID)
	}
	s.log.Info("task deleted", zap.String("task_id", taskID))
	return domain.OK(map[string]any{"deleted": true, "task_id": taskID})
}

// ─── Completion ──────────────────────────────────────────────────────────────

// Complete marks the task done. Every acceptance criterion must be met.
func (s *TaskService) Complete(taskID string) domain.Result {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return storeFail(err, "complete_task", "Task", taskID)
	}

	criteria := s.listKind(taskID, domain.KindAcceptanceCriteria)
	var unmet []map[string]any
	for _, c := range criteria {
		if !c.IsMet {
			unmet = append(unmet, c.AsMap())
		}
	}
	if len(unmet) > 0 {
		return domain.BusinessRuleViolation(
			"all_criteria_must_be_met",
			fmt.Sprintf("Cannot complete task: %d acceptance criteria not met", len(unmet)),
			map[string]any{"unmet_criteria": unmet},
			"Mark all acceptance criteria as met before completing the task",
		)
	}

	done := domain.TaskDone
	updated, err := s.store.UpdateTask(taskID, store.UpdateTaskParams{Status: &done})
	if err != nil {
		return storeFail(err, "complete_task", "Task", taskID)
	}
	s.log.Info("task completed", zap.String("task_id", taskID))

	data := updated.AsMap()
	progress, perr := progressInfo(s.store, task.CampaignID)
	if perr == nil {
		mergeHints(data, s.hints,
			s.hints.PostTaskComplete(taskID, task.Title, task.CampaignID, &progress))
	} else {
		mergeHints(data, s.hints,
			s.hints.PostTaskComplete(taskID, task.Title, task.CampaignID, nil))
	}
	return domain.OK(data)
}

// CompleteWithWorkflow completes the task only after checking it is not
// already done, has no unfinished dependencies, and has no unmet criteria.
func (s *TaskService) CompleteWithWorkflow(taskID string) domain.Result {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return storeFail(err, "complete_task_with_workflow", "Task", taskID)
	}

	if task.Status == domain.TaskDone {
		return domain.BusinessRuleViolation(
			"task_already_completed", "Task is already completed", nil)
	}

	deps, err := s.store.DependencyTasks(taskID)
	if err != nil {
		return domain.OperationFailed("complete_task_with_workflow", err.Error())
	}
	var blocking []map[string]any
	firstTitle := ""
	for _, d := range deps {
		if d.Status != domain.TaskDone {
			if firstTitle == "" {
				firstTitle = d.Title
			}
			blocking = append(blocking, taskRef(d))
		}
	}
	if len(blocking) > 0 {
		return domain.BusinessRuleViolation(
			"dependencies_not_met",
			fmt.Sprintf("Cannot complete: %d blocking dependencies", len(blocking)),
			map[string]any{"blocking_dependencies": blocking},
			fmt.Sprintf("Complete task '%s' first", firstTitle),
		)
	}

	criteria := s.listKind(taskID, domain.KindAcceptanceCriteria)
	var unmet []map[string]any
	firstContent := ""
	for _, c := range criteria {
		if !c.IsMet {
			if firstContent == "" {
				firstContent = c.Content
			}
			unmet = append(unmet, c.AsMap())
		}
	}
	if len(unmet) > 0 {
		return domain.BusinessRuleViolation(
			"criteria_not_met",
			fmt.Sprintf("Cannot complete: %d unmet criteria", len(unmet)),
			map[string]any{"unmet_criteria": unmet},
			fmt.Sprintf("Mark criterion as met: %s", truncate(firstContent, 50)),
		)
	}

	return s.Complete(taskID)
}

// ─── Acceptance criteria ─────────────────────────────────────────────────────

// AddAcceptanceCriteria appends a criterion to the task.
func (s *TaskService) AddAcceptanceCriteria(taskID, content string) domain.Result {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return storeFail(err, "add_acceptance_criteria", "Task", taskID)
	}

	a, err := s.store.AddAttachment(store.AddAttachmentParams{
		TaskID:  taskID,
		Kind:    domain.KindAcceptanceCriteria,
		Content: content,
	})
	if err != nil {
		return domain.OperationFailed("add_acceptance_criteria", err.Error())
	}

	data := a.AsMap()
	count := len(s.listKind(taskID, domain.KindAcceptanceCriteria))
	mergeHints(data, s.hints, s.hints.PostAcceptanceCriteriaAdd(taskID, task.Title, count))
	return domain.OK(data)
}

// MarkCriteriaMet flips a criterion to met and reports coverage.
func (s *TaskService) MarkCriteriaMet(criteriaID string) domain.Result {
	return s.setCriteriaMet(criteriaID, true)
}

// MarkCriteriaUnmet flips a criterion back to unmet.
func (s *TaskService) MarkCriteriaUnmet(criteriaID string) domain.Result {
	return s.setCriteriaMet(criteriaID, false)
}

func (s *TaskService) setCriteriaMet(criteriaID string, met bool) domain.Result {
	a, err := s.store.UpdateAttachment(criteriaID, store.UpdateAttachmentParams{IsMet: &met})
	if err != nil {
		return storeFail(err, "mark_criteria", "Acceptance criterion", criteriaID)
	}

	data := map[string]any{
		"id":      a.ID,
		"content": a.Content,
		"is_met":  met,
		"task_id": a.TaskID,
	}

	task, err := s.store.GetTask(a.TaskID)
	if err == nil {
		criteria := s.listKind(a.TaskID, domain.KindAcceptanceCriteria)
		metCount := 0
		for _, c := range criteria {
			if c.IsMet {
				metCount++
			}
		}
		if met {
			mergeHints(data, s.hints,
				s.hints.PostCriteriaMet(a.TaskID, task.Title, metCount, len(criteria)))
		} else {
			mergeHints(data, s.hints,
				s.hints.PostCriteriaUnmet(a.TaskID, task.Title, metCount, len(criteria)))
		}
	}
	return domain.OK(data)
}

// ListAcceptanceCriteria returns the task's criteria in list order.
func (s *TaskService) ListAcceptanceCriteria(taskID string) domain.Result {
	if _, err := s.store.GetTask(taskID); err != nil {
		return storeFail(err, "list_acceptance_criteria", "Task", taskID)
	}
	criteria := s.listKind(taskID, domain.KindAcceptanceCriteria)
	return domain.OK(map[string]any{
		"task_id":  taskID,
		"criteria": attachmentMaps(criteria),
	})
}

// GetAcceptanceCriterion returns one criterion.
func (s *TaskService) GetAcceptanceCriterion(taskID, criterionID string) domain.Result {
	a, res := s.taskAttachment(taskID, criterionID, domain.KindAcceptanceCriteria, "Acceptance criterion")
	if res != nil {
		return *res
	}
	return domain.OK(map[string]any{
		"id":      a.ID,
		"task_id": taskID,
		"content": a.Content,
		"is_met":  a.IsMet,
	})
}

// UpdateAcceptanceCriterion rewrites a criterion's content.
func (s *TaskService) UpdateAcceptanceCriterion(taskID, criterionID, content string) domain.Result {
	if _, res := s.taskAttachment(taskID, criterionID, domain.KindAcceptanceCriteria, "Acceptance criterion"); res != nil {
		return *res
	}
	if _, err := s.store.UpdateAttachment(criterionID, store.UpdateAttachmentParams{Content: &content}); err != nil {
		return storeFail(err, "update_acceptance_criterion", "Acceptance criterion", criterionID)
	}
	return s.GetAcceptanceCriterion(taskID, criterionID)
}

// DeleteAcceptanceCriterion removes a criterion.
func (s *TaskService) DeleteAcceptanceCriterion(taskID, criterionID string) domain.Result {
	if _, res := s.taskAttachment(taskID, criterionID, domain.KindAcceptanceCriteria, "Acceptance criterion"); res != nil {
		return *res
	}
	if err := s.store.DeleteAttachment(criterionID); err != nil {
		return storeFail(err, "delete_acceptance_criterion", "Acceptance criterion", criterionID)
	}
	return domain.OK(map[string]any{
		"deleted":      true,
		"criterion_id": criterionID,
		"task_id":      taskID,
	})
}

// ReorderAcceptanceCriteria moves a criterion to a new position.
func (s *TaskService) ReorderAcceptanceCriteria(taskID, criterionID string, newOrder int) domain.Result {
	if _, res := s.taskAttachment(taskID, criterionID, domain.KindAcceptanceCriteria, "Acceptance criterion"); res != nil {
		return *res
	}
	if _, err := s.store.UpdateAttachment(criterionID, store.UpdateAttachmentParams{OrderIndex: &newOrder}); err != nil {
		return storeFail(err, "reorder_acceptance_criteria", "Acceptance criterion", criterionID)
	}
	return s.GetAcceptanceCriterion(taskID, criterionID)
}

// ─── Research ────────────────────────────────────────────────────────────────

// AddResearch records a research item against the task.
func (s *TaskService) AddResearch(taskID, content, researchType string) domain.Result {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return storeFail(err, "add_research", "Task", taskID)
	}

	researchType = researchTypeOrDefault(researchType)
	a, err := s.store.AddAttachment(store.AddAttachmentParams{
		TaskID:  taskID,
		Kind:    domain.KindResearch,
		Content: content,
		Subtype: researchType,
	})
	if err != nil {
		return domain.OperationFailed("add_research", err.Error())
	}

	data := a.AsMap()
	mergeHints(data, s.hints, s.hints.PostResearchAdd(taskID, task.Title, researchType))
	return domain.OK(data)
}

// ListResearch returns the task's research items in list order.
func (s *TaskService) ListResearch(taskID string) domain.Result {
	if _, err := s.store.GetTask(taskID); err != nil {
		return storeFail(err, "list_task_research", "Task", taskID)
	}
	items := s.listKind(taskID, domain.KindResearch)
	return domain.OK(map[string]any{
		"task_id":  taskID,
		"research": attachmentMaps(items),
	})
}

// GetResearch returns one research item.
func (s *TaskService) GetResearch(taskID, researchID string) domain.Result {
	a, res := s.taskAttachment(taskID, researchID, domain.KindResearch, "Research item")
	if res != nil {
		return *res
	}
	return domain.OK(map[string]any{
		"id":      a.ID,
		"task_id": taskID,
		"content": a.Content,
		"type":    a.Subtype,
	})
}

// UpdateResearch rewrites a research item's content and/or type.
func (s *TaskService) UpdateResearch(taskID, researchID string, content, researchType *string) domain.Result {
	if _, res := s.taskAttachment(taskID, researchID, domain.KindResearch, "Research item"); res != nil {
		return *res
	}
	if content == nil && researchType == nil {
		return s.GetResearch(taskID, researchID)
	}
	if _, err := s.store.UpdateAttachment(researchID, store.UpdateAttachmentParams{
		Content: content,
		Subtype: researchType,
	}); err != nil {
		return storeFail(err, "update_task_research", "Research item", researchID)
	}
	return s.GetResearch(taskID, researchID)
}

// DeleteResearch removes a research item.
func (s *TaskService) DeleteResearch(taskID, researchID string) domain.Result {
	if _, res := s.taskAttachment(taskID, researchID, domain.KindResearch, "Research item"); res != nil {
		return *res
	}
	if err := s.store.DeleteAttachment(researchID); err != nil {
		return storeFail(err, "delete_task_research", "Research item", researchID)
	}
	return domain.OK(map[string]any{
		"deleted":     true,
		"research_id": researchID,
		"task_id":     taskID,
	})
}

// ReorderResearch moves a research item to a new position.
func (s *TaskService) ReorderResearch(taskID, researchID string, newOrder int) domain.Result {
	if _, res := s.taskAttachment(taskID, researchID, domain.KindResearch, "Research item"); res != nil {
		return *res
	}
	if _, err := s.store.UpdateAttachment(researchID, store.UpdateAttachmentParams{OrderIndex: &newOrder}); err != nil {
		return storeFail(err, "reorder_task_research", "Research item", researchID)
	}
	return s.GetResearch(taskID, researchID)
}

// ─── Implementation notes ────────────────────────────────────────────────────

// AddImplementationNote records progress notes against the task.
func (s *TaskService) AddImplementationNote(taskID, content string) domain.Result {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return storeFail(err, "add_implementation_note", "Task", taskID)
	}

	a, err := s.store.AddAttachment(store.AddAttachmentParams{
		TaskID:  taskID,
		Kind:    domain.KindImplementationNote,
		Content: content,
	})
	if err != nil {
		return domain.OperationFailed("add_implementation_note", err.Error())
	}

	data := a.AsMap()
	var unmetIDs []string
	for _, c := range s.listKind(taskID, domain.KindAcceptanceCriteria) {
		if !c.IsMet {
			unmetIDs = append(unmetIDs, c.ID)
		}
	}
	mergeHints(data, s.hints, s.hints.PostImplementationNoteAdd(taskID, task.Title, unmetIDs))
	return domain.OK(data)
}

// ListImplementationNotes returns the task's notes in list order.
func (s *TaskService) ListImplementationNotes(taskID string) domain.Result {
	if _, err := s.store.GetTask(taskID); err != nil {
		return storeFail(err, "list_implementation_notes", "Task", taskID)
	}
	notes := s.listKind(taskID, domain.KindImplementationNote)
	return domain.OK(map[string]any{
		"task_id": taskID,
		"notes":   attachmentMaps(notes),
	})
}

// GetImplementationNote returns one note.
func (s *TaskService) GetImplementationNote(taskID, noteID string) domain.Result {
	a, res := s.taskAttachment(taskID, noteID, domain.KindImplementationNote, "Implementation note")
	if res != nil {
		return *res
	}
	return domain.OK(map[string]any{
		"id":      a.ID,
		"task_id": taskID,
		"content": a.Content,
	})
}

// UpdateImplementationNote rewrites a note's content.
func (s *TaskService) UpdateImplementationNote(taskID, noteID, content string) domain.Result {
	if _, res := s.taskAttachment(taskID, noteID, domain.KindImplementationNote, "Implementation note"); res != nil {
		return *res
	}
	if _, err := s.store.UpdateAttachment(noteID, store.UpdateAttachmentParams{Content: &content}); err != nil {
		return storeFail(err, "update_implementation_note", "Implementation note", noteID)
	}
	return s.GetImplementationNote(taskID, noteID)
}

// DeleteImplementationNote removes a note.
func (s *TaskService) DeleteImplementationNote(taskID, noteID string) domain.Result {
	if _, res := s.taskAttachment(taskID, noteID, domain.KindImplementationNote, "Implementation note"); res != nil {
		return *res
	}
	if err := s.store.DeleteAttachment(noteID); err != nil {
		return storeFail(err, "delete_implementation_note", "Implementation note", noteID)
	}
	return domain.OK(map[string]any{
		"deleted": true,
		"note_id": noteID,
		"task_id": taskID,
	})
}

// ReorderImplementationNotes moves a note to a new position.
func (s *TaskService) ReorderImplementationNotes(taskID, noteID string, newOrder int) domain.Result {
	if _, res := s.taskAttachment(taskID, noteID, domain.KindImplementationNote, "Implementation note"); res != nil {
		return *res
	}
	if _, err := s.store.UpdateAttachment(noteID, store.UpdateAttachmentParams{OrderIndex: &newOrder}); err != nil {
		return storeFail(err, "reorder_implementation_notes", "Implementation note", noteID)
	}
	return s.GetImplementationNote(taskID, noteID)
}

// ─── Testing steps ───────────────────────────────────────────────────────────

// AddTestingStep records a verification step against the task.
func (s *TaskService) AddTestingStep(taskID, content, stepType string) domain.Result {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return storeFail(err, "add_testing_step", "Task", taskID)
	}

	if stepType == "" {
		stepType = "verify"
	}
	a, err := s.store.AddAttachment(store.AddAttachmentParams{
		TaskID:     taskID,
		Kind:       domain.KindTestingStep,
		Content:    content,
		Subtype:    stepType,
		TestStatus: domain.TestPending,
	})
	if err != nil {
		return domain.OperationFailed("add_testing_step", err.Error())
	}

	data := a.AsMap()
	mergeHints(data, s.hints, s.hints.PostTestingStepAdd(taskID, task.Title, stepType))
	return domain.OK(data)
}

// ListTestingSteps returns the task's testing steps in list order.
func (s *TaskService) ListTestingSteps(taskID string) domain.Result {
	if _, err := s.store.GetTask(taskID); err != nil {
		return storeFail(err, "list_testing_steps", "Task", taskID)
	}
	steps := s.listKind(taskID, domain.KindTestingStep)
	return domain.OK(map[string]any{
		"task_id": taskID,
		"steps":   attachmentMaps(steps),
	})
}

// GetTestingStep returns one testing step.
func (s *TaskService) GetTestingStep(taskID, stepID string) domain.Result {
	a, res := s.taskAttachment(taskID, stepID, domain.KindTestingStep, "Testing step")
	if res != nil {
		return *res
	}
	return domain.OK(map[string]any{
		"id":          a.ID,
		"task_id":     taskID,
		"content":     a.Content,
		"step_type":   a.Subtype,
		"test_status": a.TestStatus,
	})
}

// UpdateTestingStep rewrites a step's content and/or type.
func (s *TaskService) UpdateTestingStep(taskID, stepID string, content, stepType *string) domain.Result {
	if _, res := s.taskAttachment(taskID, stepID, domain.KindTestingStep, "Testing step"); res != nil {
		return *res
	}
	if content == nil && stepType == nil {
		return s.GetTestingStep(taskID, stepID)
	}
	if _, err := s.store.UpdateAttachment(stepID, store.UpdateAttachmentParams{
		Content: content,
		Subtype: stepType,
	}); err != nil {
		return storeFail(err, "update_testing_step", "Testing step", stepID)
	}
	return s.GetTestingStep(taskID, stepID)
}

// DeleteTestingStep removes a step.
func (s *TaskService) DeleteTestingStep(taskID, stepID string) domain.Result {
	if _, res := s.taskAttachment(taskID, stepID, domain.KindTestingStep, "Testing step"); res != nil {
		return *res
	}
	if err := s.store.DeleteAttachment(stepID); err != nil {
		return storeFail(err, "delete_testing_step", "Testing step", stepID)
	}
	return domain.OK(map[string]any{
		"deleted": true,
		"step_id": stepID,
		"task_id": taskID,
	})
}

// MarkTestingStepPassed records a pass.
func (s *TaskService) MarkTestingStepPassed(taskID, stepID string) domain.Result {
	return s.setTestStatus(taskID, stepID, domain.TestPassed)
}

// MarkTestingStepFailed records a failure.
func (s *TaskService) MarkTestingStepFailed(taskID, stepID string) domain.Result {
	return s.setTestStatus(taskID, stepID, domain.TestFailed)
}

// MarkTestingStepSkipped records a skip.
func (s *TaskService) MarkTestingStepSkipped(taskID, stepID string) domain.Result {
	return s.setTestStatus(taskID, stepID, domain.TestSkipped)
}

func (s *TaskService) setTestStatus(taskID, stepID, status string) domain.Result {
	if _, res := s.taskAttachment(taskID, stepID, domain.KindTestingStep, "Testing step"); res != nil {
		return *res
	}
	if _, err := s.store.UpdateAttachment(stepID, store.UpdateAttachmentParams{TestStatus: &status}); err != nil {
		return storeFail(err, "update_testing_step_status", "Testing step", stepID)
	}
	return s.GetTestingStep(taskID, stepID)
}

// ReorderTestingSteps moves a step to a new position.
func (s *TaskService) ReorderTestingSteps(taskID, stepID string, newOrder int) domain.Result {
	if _, res := s.taskAttachment(taskID, stepID, domain.KindTestingStep, "Testing step"); res != nil {
		return *res
	}
	if _, err := s.store.UpdateAttachment(stepID, store.UpdateAttachmentParams{OrderIndex: &newOrder}); err != nil {
		return storeFail(err, "reorder_testing_steps", "Testing step", stepID)
	}
	return s.GetTestingStep(taskID, stepID)
}

// ─── Search & analytics ──────────────────────────────────────────────────────

// Search runs a case-insensitive substring search over task titles and
// descriptions, with optional campaign, status, and priority filters.
func (s *TaskService) Search(query, campaignID, status, priority string, limit int) domain.Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return domain.ValidationError("Search query cannot be empty", nil)
	}
	if limit <= 0 {
		limit = 50
	}

	tasks, err := s.store.ListTasks(store.TaskFilter{
		CampaignID: campaignID,
		Status:     status,
		Priority:   priority,
	})
	if err != nil {
		return domain.OperationFailed("search_tasks", err.Error())
	}

	matches := []map[string]any{}
	for _, t := range tasks {
		titleMatch := strings.Contains(strings.ToLower(t.Title), query)
		descMatch := strings.Contains(strings.ToLower(t.Description), query)
		if !titleMatch && !descMatch {
			continue
		}
		m := t.AsMap()
		m["_match"] = map[string]any{
			"title":       titleMatch,
			"description": descMatch,
		}
		matches = append(matches, m)
		if len(matches) >= limit {
			break
		}
	}

	return domain.OK(map[string]any{
		"query":         query,
		"total_matches": len(matches),
		"tasks":         matches,
		"filters_applied": map[string]any{
			"campaign_id": nullableFilter(campaignID),
			"status":      nullableFilter(status),
			"priority":    nullableFilter(priority),
		},
	})
}

// Stats aggregates task counts by status, priority, type, and campaign,
// plus acceptance criteria coverage.
func (s *TaskService) Stats(campaignID string) domain.Result {
	tasks, err := s.store.ListTasks(store.TaskFilter{CampaignID: campaignID})
	if err != nil {
		return domain.OperationFailed("get_task_stats", err.Error())
	}

	byStatus := map[string]int{}
	byPriority := map[string]int{}
	byType := map[string]int{}
	byCampaign := map[string]int{}
	for _, t := range tasks {
		byStatus[t.Status]++
		byPriority[t.Priority]++
		byType[t.Type]++
		byCampaign[t.CampaignID]++
	}

	tasksWithCriteria, totalCriteria, criteriaMet, err := s.store.CriteriaStats(campaignID)
	if err != nil {
		return domain.OperationFailed("get_task_stats", err.Error())
	}

	total := len(tasks)
	completionRate := 0.0
	if total > 0 {
		completionRate = round2(float64(byStatus[domain.TaskDone]) / float64(total) * 100)
	}
	criteriaRate := 0.0
	if totalCriteria > 0 {
		criteriaRate = round2(float64(criteriaMet) / float64(totalCriteria) * 100)
	}

	data := map[string]any{
		"total_tasks":     total,
		"completion_rate": completionRate,
		"by_status":       byStatus,
		"by_priority":     byPriority,
		"by_type":         byType,
		"criteria": map[string]any{
			"tasks_with_criteria":      tasksWithCriteria,
			"total_criteria":           totalCriteria,
			"criteria_met":             criteriaMet,
			"criteria_completion_rate": criteriaRate,
		},
	}
	if campaignID == "" {
		data["by_campaign"] = byCampaign
	}
	return domain.OK(data)
}

// DependencyInfo reports what blocks this task and what this task blocks.
func (s *TaskService) DependencyInfo(taskID string) domain.Result {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return storeFail(err, "get_dependency_info", "Task", taskID)
	}

	deps, err := s.store.DependencyTasks(taskID)
	if err != nil {
		return domain.OperationFailed("get_dependency_info", err.Error())
	}
	upstream := []map[string]any{}
	blocking := []map[string]any{}
	for _, d := range deps {
		ref := taskRef(d)
		upstream = append(upstream, ref)
		if d.Status != domain.TaskDone {
			blocking = append(blocking, ref)
		}
	}

	dependents, err := s.store.DependentTasks(taskID)
	if err != nil {
		return domain.OperationFailed("get_dependency_info", err.Error())
	}
	downstream := []map[string]any{}
	for _, d := range dependents {
		downstream = append(downstream, taskRef(d))
	}

	return domain.OK(map[string]any{
		"task":                  taskRef(*task),
		"upstream_dependencies": upstream,
		"downstream_dependents": downstream,
		"blocking_tasks":        blocking,
		"summary": map[string]any{
			"total_upstream":     len(upstream),
			"total_downstream":   len(downstream),
			"is_blocked":         len(blocking) > 0,
			"is_blocking_others": task.Status != domain.TaskDone && len(downstream) > 0,
			"blocking_count":     len(blocking),
		},
	})
}

// ─── Bulk operations ─────────────────────────────────────────────────────────

// BulkUpdate applies the same status and/or priority to several tasks,
// collecting per-task failures rather than stopping at the first one.
func (s *TaskService) BulkUpdate(taskIDs []string, status, priority string) domain.Result {
	if len(taskIDs) == 0 {
		return domain.ValidationError("No task IDs provided", nil)
	}
	if status == "" && priority == "" {
		return domain.ValidationError("No updates provided", nil)
	}

	params := store.UpdateTaskParams{}
	applied := map[string]any{}
	if status != "" {
		params.Status = &status
		applied["status"] = status
	}
	if priority != "" {
		params.Priority = &priority
		applied["priority"] = priority
	}

	updated := []map[string]any{}
	failed := []map[string]any{}
	for _, id := range taskIDs {
		t, err := s.store.UpdateTask(id, params)
		if err != nil {
			failed = append(failed, map[string]any{
				"id":    id,
				"error": err.Error(),
			})
			continue
		}
		updated = append(updated, map[string]any{
			"id":       id,
			"title":    t.Title,
			"status":   t.Status,
			"priority": t.Priority,
		})
	}

	return domain.OK(map[string]any{
		"updated_count":   len(updated),
		"failed_count":    len(failed),
		"updated_tasks":   updated,
		"failed_tasks":    failed,
		"updates_applied": applied,
	})
}

// BulkAddResearch adds the same research items to several tasks.
func (s *TaskService) BulkAddResearch(taskIDs []string, items []ResearchInput) domain.Result {
	if len(taskIDs) == 0 {
		return domain.ValidationError("task_ids must be non-empty", nil)
	}
	if len(items) == 0 {
		return domain.ValidationError("research_items must be non-empty", nil)
	}

	for _, id := range taskIDs {
		if _, err := s.store.GetTask(id); err != nil {
			return domain.NotFound("task", id)
		}
	}

	totalAdded := 0
	for _, id := range taskIDs {
		for _, item := range items {
			if item.Content == "" {
				continue
			}
			res := s.AddResearch(id, item.Content, item.Type)
			if res.IsFailure() {
				return res
			}
			totalAdded++
		}
	}

	return domain.OK(map[string]any{
		"tasks_updated":           len(taskIDs),
		"research_added_per_task": len(items),
		"total_research_added":    totalAdded,
		"task_ids":                taskIDs,
	})
}

// TaskDetailsInput carries the per-task payload of BulkAddDetails.
type TaskDetailsInput struct {
	TaskID          string
	Research        []ResearchInput
	Notes           []string
	Criteria        []string
	TestingStrategy []TestingStepInput
}

// TestingStepInput is a testing step supplied in a bulk payload.
type TestingStepInput struct {
	Content  string
	StepType string
}

// BulkAddDetails attaches per-task research, notes, criteria, and testing
// steps in one call.
func (s *TaskService) BulkAddDetails(tasks []TaskDetailsInput) domain.Result {
	if len(tasks) == 0 {
		return domain.ValidationError("tasks must be non-empty", nil)
	}

	details := []map[string]any{}
	successCount := 0
	failedCount := 0

	for _, entry := range tasks {
		if entry.TaskID == "" {
			failedCount++
			continue
		}
		if _, err := s.store.GetTask(entry.TaskID); err != nil {
			failedCount++
			continue
		}

		detail := map[string]any{
			"task_id":       entry.TaskID,
			"research":      0,
			"notes":         0,
			"criteria":      0,
			"testing_steps": 0,
		}

		for _, item := range entry.Research {
			if item.Content == "" {
				continue
			}
			if s.AddResearch(entry.TaskID, item.Content, item.Type).IsSuccess() {
				detail["research"] = detail["research"].(int) + 1
			}
		}
		for _, note := range entry.Notes {
			if note == "" {
				continue
			}
			if s.AddImplementationNote(entry.TaskID, note).IsSuccess() {
				detail["notes"] = detail["notes"].(int) + 1
			}
		}
		for _, criterion := range entry.Criteria {
			if criterion == "" {
				continue
			}
			if s.AddAcceptanceCriteria(entry.TaskID, criterion).IsSuccess() {
				detail["criteria"] = detail["criteria"].(int) + 1
			}
		}
		for _, step := range entry.TestingStrategy {
			if step.Content == "" {
				continue
			}
			if s.AddTestingStep(entry.TaskID, step.Content, step.StepType).IsSuccess() {
				detail["testing_steps"] = detail["testing_steps"].(int) + 1
			}
		}

		details = append(details, detail)
		successCount++
	}

	return domain.OK(map[string]any{
		"success_count": successCount,
		"failed_count":  failedCount,
		"details":       details,
	})
}

// ─── Internal helpers ────────────────────────────────────────────────────────

// listKind returns the task's attachments of one kind in list order.
// Failures degrade to an empty list; the read paths that call this prefer
// partial data over a hard error.
func (s *TaskService) listKind(taskID, kind string) []domain.Attachment {
	items, err := s.store.ListAttachments(store.AttachmentFilter{TaskID: taskID, Kind: kind})
	if err != nil {
		s.log.Warn("attachment list failed",
			zap.String("task_id", taskID), zap.String("kind", kind), zap.Error(err))
		return nil
	}
	return items
}

// taskAttachment loads an attachment and verifies it belongs to the task
// with the expected kind. On any mismatch the second return value carries
// the not_found Result to hand back.
func (s *TaskService) taskAttachment(taskID, id, kind, resource string) (*domain.Attachment, *domain.Result) {
	if _, err := s.store.GetTask(taskID); err != nil {
		r := storeFail(err, "get_attachment", "Task", taskID)
		return nil, &r
	}
	a, err := s.store.GetAttachment(id)
	if err != nil || a.TaskID != taskID || a.Kind != kind {
		r := domain.NotFound(resource, id)
		return nil, &r
	}
	return a, nil
}

// invalidDependencies returns the ids that do not name an existing task
// in the given campaign. Dependencies may not cross campaigns.
func (s *TaskService) invalidDependencies(campaignID string, ids []string) []string {
	var bad []string
	for _, id := range ids {
		dep, err := s.store.GetTask(id)
		if err != nil || dep.CampaignID != campaignID {
			bad = append(bad, id)
		}
	}
	return bad
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func researchTypeOrDefault(t string) string {
	if t == "" {
		return "findings"
	}
	return t
}

func nullableFilter(s string) any {
	if s == "" {
		return nil
	}
	return s
}
