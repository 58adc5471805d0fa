package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskcrusade/crusader/internal/domain"
	"github.com/taskcrusade/crusader/internal/hints"
	"github.com/taskcrusade/crusader/internal/store"
)

func newTestServices(t *testing.T) (*TaskService, *CampaignService, *store.Store) {
	t.Helper()
	st, err := store.New(store.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	log := zap.NewNop()
	gen := hints.New(true)
	return NewTaskService(st, gen, log), NewCampaignService(st, gen, log), st
}

func seedCampaign(t *testing.T, st *store.Store, name string) *domain.Campaign {
	t.Helper()
	c, err := st.CreateCampaign(store.CreateCampaignParams{Name: name})
	require.NoError(t, err)
	return c
}

func seedTask(t *testing.T, st *store.Store, campaignID, title string) *domain.Task {
	t.Helper()
	task, err := st.CreateTask(store.CreateTaskParams{CampaignID: campaignID, Title: title})
	require.NoError(t, err)
	return task
}

func TestCreateTaskRejectsBlankTitle(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")

	res := ts.Create(CreateTaskInput{Title: "   ", CampaignID: c.ID})
	require.True(t, res.IsFailure())
	assert.Equal(t, domain.KindValidationError, res.Kind)
	assert.Equal(t, "Task title cannot be empty or whitespace", res.Message)
}

func TestCreateTaskUnknownCampaign(t *testing.T) {
	ts, _, _ := newTestServices(t)

	res := ts.Create(CreateTaskInput{Title: "orphan", CampaignID: "nope"})
	require.True(t, res.IsFailure())
	assert.Equal(t, domain.KindNotFound, res.Kind)
	assert.Equal(t, "Campaign 'nope' not found", res.Message)
}

func TestCreateTaskInvalidDependencies(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")

	res := ts.Create(CreateTaskInput{
		Title:        "task",
		CampaignID:   c.ID,
		Dependencies: []string{"ghost"},
	})
	require.True(t, res.IsFailure())
	assert.Equal(t, "Invalid dependency task IDs: ['ghost']", res.Message)
}

func TestCreateTaskRejectsCrossCampaignDependency(t *testing.T) {
	ts, _, st := newTestServices(t)
	home := seedCampaign(t, st, "alpha")
	other := seedCampaign(t, st, "beta")
	foreign := seedTask(t, st, other.ID, "elsewhere")

	res := ts.Create(CreateTaskInput{
		Title:        "task",
		CampaignID:   home.ID,
		Dependencies: []string{foreign.ID},
	})
	require.True(t, res.IsFailure())
	assert.Equal(t, domain.KindValidationError, res.Kind)
	assert.Equal(t, "Invalid dependency task IDs: ['"+foreign.ID+"']", res.Message)
}

func TestUpdateTaskRejectsCrossCampaignDependency(t *testing.T) {
	ts, _, st := newTestServices(t)
	home := seedCampaign(t, st, "alpha")
	other := seedCampaign(t, st, "beta")
	task := seedTask(t, st, home.ID, "task")
	foreign := seedTask(t, st, other.ID, "elsewhere")

	res := ts.Update(task.ID, UpdateTaskInput{AddDependencies: []string{foreign.ID}})
	require.True(t, res.IsFailure())
	assert.Equal(t, "Invalid dependency task IDs: ['"+foreign.ID+"']", res.Message)
}

func TestCreateTaskWithCriteriaAndResearch(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")

	res := ts.Create(CreateTaskInput{
		Title:              "build parser",
		CampaignID:         c.ID,
		AcceptanceCriteria: []string{"parses input", "reports errors"},
		Research:           []ResearchInput{{Content: "grammar notes", Type: "docs"}},
	})
	require.True(t, res.IsSuccess())

	data := res.DataMap()
	criteria := data["acceptance_criteria_details"].([]map[string]any)
	assert.Len(t, criteria, 2)
	research := data["research"].([]map[string]any)
	require.Len(t, research, 1)
	assert.Equal(t, "docs", research[0]["type"])

	// Criteria present means the ready-for-execution hint fires.
	hintList := data["hints"].([]map[string]any)
	require.NotEmpty(t, hintList)
	assert.Contains(t, hintList[0]["message"], "created with 2 criteria")
}

func TestGetTaskIncludesDetailsAndQualityHints(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	task := seedTask(t, st, c.ID, "bare task")

	res := ts.Get(task.ID)
	require.True(t, res.IsSuccess())
	data := res.DataMap()

	assert.Equal(t, task.ID, data["id"])
	assert.Empty(t, data["acceptance_criteria_details"])
	assert.Empty(t, data["testing_steps"])

	hintList := data["hints"].([]map[string]any)
	require.NotEmpty(t, hintList)
	assert.Contains(t, hintList[0]["message"], "has no acceptance criteria")
}

func TestUpdateTaskDependencyModeExclusivity(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "a")
	b := seedTask(t, st, c.ID, "b")

	res := ts.Update(a.ID, UpdateTaskInput{
		Dependencies:    []string{b.ID},
		HasDependencies: true,
		AddDependencies: []string{b.ID},
	})
	require.True(t, res.IsFailure())
	assert.Equal(t,
		"Only one of 'dependencies', 'add_dependencies', or 'remove_dependencies' can be provided per call",
		res.Message)
}

func TestUpdateTaskSelfDependency(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "a")

	res := ts.Update(a.ID, UpdateTaskInput{
		Dependencies:    []string{a.ID},
		HasDependencies: true,
	})
	require.True(t, res.IsFailure())
	assert.Equal(t, "Task cannot depend on itself: "+a.ID, res.Message)
}

func TestUpdateTaskAddAndRemoveDependencies(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "a")
	b := seedTask(t, st, c.ID, "b")
	d := seedTask(t, st, c.ID, "d")

	res := ts.Update(a.ID, UpdateTaskInput{AddDependencies: []string{b.ID, d.ID}})
	require.True(t, res.IsSuccess())
	deps := res.DataMap()["dependencies"].([]string)
	assert.ElementsMatch(t, []string{b.ID, d.ID}, deps)

	res = ts.Update(a.ID, UpdateTaskInput{RemoveDependencies: []string{b.ID}})
	require.True(t, res.IsSuccess())
	deps = res.DataMap()["dependencies"].([]string)
	assert.Equal(t, []string{d.ID}, deps)
}

func TestUpdateTaskStatusChangeEmitsHints(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "worker")

	status := domain.TaskInProgress
	res := ts.Update(a.ID, UpdateTaskInput{Status: &status})
	require.True(t, res.IsSuccess())

	data := res.DataMap()
	hintList := data["hints"].([]map[string]any)
	require.NotEmpty(t, hintList)
	assert.Contains(t, hintList[0]["message"], "started")
}

func TestDeleteTaskShape(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "gone")

	res := ts.Delete(a.ID)
	require.True(t, res.IsSuccess())
	assert.Equal(t, map[string]any{"deleted": true, "task_id": a.ID}, res.Data)

	res = ts.Delete(a.ID)
	assert.Equal(t, domain.KindNotFound, res.Kind)
}

func TestCompleteTaskBlockedByUnmetCriteria(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "guarded")

	addRes := ts.AddAcceptanceCriteria(a.ID, "works end to end")
	require.True(t, addRes.IsSuccess())

	res := ts.Complete(a.ID)
	require.True(t, res.IsFailure())
	assert.Equal(t, domain.KindBusinessRuleViolation, res.Kind)
	assert.Equal(t, "Cannot complete task: 1 acceptance criteria not met", res.Message)
	assert.Equal(t, "all_criteria_must_be_met", res.Details["rule"])
	assert.Equal(t,
		[]string{"Mark all acceptance criteria as met before completing the task"},
		res.Suggestions)
}

func TestCompleteTaskSucceedsWhenCriteriaMet(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "guarded")

	addRes := ts.AddAcceptanceCriteria(a.ID, "works")
	require.True(t, addRes.IsSuccess())
	criterionID := addRes.DataMap()["id"].(string)

	require.True(t, ts.MarkCriteriaMet(criterionID).IsSuccess())

	res := ts.Complete(a.ID)
	require.True(t, res.IsSuccess())
	assert.Equal(t, domain.TaskDone, res.DataMap()["status"])
	assert.NotNil(t, res.DataMap()["completed_at"])
}

func TestCompleteWithWorkflowRules(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	dep := seedTask(t, st, c.ID, "foundation")
	a, err := st.CreateTask(store.CreateTaskParams{
		CampaignID:   c.ID,
		Title:        "tower",
		Dependencies: []string{dep.ID},
	})
	require.NoError(t, err)

	// Blocking dependency first.
	res := ts.CompleteWithWorkflow(a.ID)
	require.True(t, res.IsFailure())
	assert.Equal(t, "Cannot complete: 1 blocking dependencies", res.Message)
	assert.Equal(t, "dependencies_not_met", res.Details["rule"])
	assert.Equal(t, []string{"Complete task 'foundation' first"}, res.Suggestions)

	done := domain.TaskDone
	_, err = st.UpdateTask(dep.ID, store.UpdateTaskParams{Status: &done})
	require.NoError(t, err)

	// Then unmet criteria.
	addRes := ts.AddAcceptanceCriteria(a.ID, "tall enough for the kingdom to see")
	require.True(t, addRes.IsSuccess())

	res = ts.CompleteWithWorkflow(a.ID)
	require.True(t, res.IsFailure())
	assert.Equal(t, "Cannot complete: 1 unmet criteria", res.Message)
	assert.Equal(t, "criteria_not_met", res.Details["rule"])
	assert.Contains(t, res.Suggestions[0], "Mark criterion as met: ")

	criterionID := addRes.DataMap()["id"].(string)
	require.True(t, ts.MarkCriteriaMet(criterionID).IsSuccess())

	res = ts.CompleteWithWorkflow(a.ID)
	require.True(t, res.IsSuccess())

	// Already completed on the second attempt.
	res = ts.CompleteWithWorkflow(a.ID)
	require.True(t, res.IsFailure())
	assert.Equal(t, "Task is already completed", res.Message)
	assert.Equal(t, "task_already_completed", res.Details["rule"])
}

func TestCriteriaCRUD(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "task")

	addRes := ts.AddAcceptanceCriteria(a.ID, "first")
	require.True(t, addRes.IsSuccess())
	id := addRes.DataMap()["id"].(string)

	listRes := ts.ListAcceptanceCriteria(a.ID)
	require.True(t, listRes.IsSuccess())
	criteria := listRes.DataMap()["criteria"].([]map[string]any)
	require.Len(t, criteria, 1)

	getRes := ts.GetAcceptanceCriterion(a.ID, id)
	require.True(t, getRes.IsSuccess())
	assert.Equal(t, "first", getRes.DataMap()["content"])
	assert.Equal(t, false, getRes.DataMap()["is_met"])

	updRes := ts.UpdateAcceptanceCriterion(a.ID, id, "first, revised")
	require.True(t, updRes.IsSuccess())
	assert.Equal(t, "first, revised", updRes.DataMap()["content"])

	delRes := ts.DeleteAcceptanceCriterion(a.ID, id)
	require.True(t, delRes.IsSuccess())
	assert.Equal(t, true, delRes.DataMap()["deleted"])
	assert.Equal(t, id, delRes.DataMap()["criterion_id"])

	assert.Equal(t, domain.KindNotFound, ts.GetAcceptanceCriterion(a.ID, id).Kind)
}

func TestCriterionFromWrongTaskNotFound(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "a")
	b := seedTask(t, st, c.ID, "b")

	addRes := ts.AddAcceptanceCriteria(a.ID, "belongs to a")
	require.True(t, addRes.IsSuccess())
	id := addRes.DataMap()["id"].(string)

	res := ts.GetAcceptanceCriterion(b.ID, id)
	require.True(t, res.IsFailure())
	assert.Equal(t, domain.KindNotFound, res.Kind)
}

func TestResearchCRUD(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "task")

	addRes := ts.AddResearch(a.ID, "findings text", "")
	require.True(t, addRes.IsSuccess())
	id := addRes.DataMap()["id"].(string)
	assert.Equal(t, "findings", addRes.DataMap()["type"])

	listRes := ts.ListResearch(a.ID)
	require.True(t, listRes.IsSuccess())
	items := listRes.DataMap()["research"].([]map[string]any)
	require.Len(t, items, 1)

	newType := "approaches"
	updRes := ts.UpdateResearch(a.ID, id, nil, &newType)
	require.True(t, updRes.IsSuccess())
	assert.Equal(t, "approaches", updRes.DataMap()["type"])

	delRes := ts.DeleteResearch(a.ID, id)
	require.True(t, delRes.IsSuccess())
	assert.Equal(t, id, delRes.DataMap()["research_id"])
}

func TestImplementationNotesAndUnmetCriteriaHint(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "task")

	addRes := ts.AddAcceptanceCriteria(a.ID, "unmet one")
	require.True(t, addRes.IsSuccess())
	criterionID := addRes.DataMap()["id"].(string)

	noteRes := ts.AddImplementationNote(a.ID, "wired the config layer")
	require.True(t, noteRes.IsSuccess())
	assert.Equal(t,
		"task_acceptance_criteria_mark_met(criteria_id='"+criterionID+"')",
		noteRes.DataMap()["next_action"])

	listRes := ts.ListImplementationNotes(a.ID)
	require.True(t, listRes.IsSuccess())
	notes := listRes.DataMap()["notes"].([]map[string]any)
	assert.Len(t, notes, 1)
}

func TestTestingStepLifecycle(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "task")

	addRes := ts.AddTestingStep(a.ID, "run the suite", "")
	require.True(t, addRes.IsSuccess())
	id := addRes.DataMap()["id"].(string)
	assert.Equal(t, "verify", addRes.DataMap()["step_type"])

	getRes := ts.GetTestingStep(a.ID, id)
	require.True(t, getRes.IsSuccess())
	assert.Equal(t, domain.TestPending, getRes.DataMap()["test_status"])

	passRes := ts.MarkTestingStepPassed(a.ID, id)
	require.True(t, passRes.IsSuccess())
	assert.Equal(t, domain.TestPassed, passRes.DataMap()["test_status"])

	failRes := ts.MarkTestingStepFailed(a.ID, id)
	assert.Equal(t, domain.TestFailed, failRes.DataMap()["test_status"])

	skipRes := ts.MarkTestingStepSkipped(a.ID, id)
	assert.Equal(t, domain.TestSkipped, skipRes.DataMap()["test_status"])

	delRes := ts.DeleteTestingStep(a.ID, id)
	require.True(t, delRes.IsSuccess())
	assert.Equal(t, id, delRes.DataMap()["step_id"])
}

func TestSearchTasks(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	_, err := st.CreateTask(store.CreateTaskParams{
		CampaignID: c.ID, Title: "Build parser", Description: "tokenizer work",
	})
	require.NoError(t, err)
	_, err = st.CreateTask(store.CreateTaskParams{
		CampaignID: c.ID, Title: "Write docs", Description: "covers the parser too",
	})
	require.NoError(t, err)

	res := ts.Search("  PARSER ", "", "", "", 0)
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Equal(t, "parser", data["query"])
	assert.Equal(t, 2, data["total_matches"])

	matches := data["tasks"].([]map[string]any)
	first := matches[0]["_match"].(map[string]any)
	assert.Equal(t, true, first["title"])
	assert.Equal(t, false, first["description"])
	second := matches[1]["_match"].(map[string]any)
	assert.Equal(t, false, second["title"])
	assert.Equal(t, true, second["description"])
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	ts, _, _ := newTestServices(t)
	res := ts.Search("   ", "", "", "", 0)
	require.True(t, res.IsFailure())
	assert.Equal(t, "Search query cannot be empty", res.Message)
}

func TestStats(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "one")
	seedTask(t, st, c.ID, "two")

	done := domain.TaskDone
	_, err := st.UpdateTask(a.ID, store.UpdateTaskParams{Status: &done})
	require.NoError(t, err)

	res := ts.Stats(c.ID)
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Equal(t, 2, data["total_tasks"])
	assert.Equal(t, 50.0, data["completion_rate"])
	byStatus := data["by_status"].(map[string]int)
	assert.Equal(t, 1, byStatus[domain.TaskDone])
	_, hasByCampaign := data["by_campaign"]
	assert.False(t, hasByCampaign)

	// Without a campaign filter the per-campaign breakdown appears.
	res = ts.Stats("")
	require.True(t, res.IsSuccess())
	_, hasByCampaign = res.DataMap()["by_campaign"]
	assert.True(t, hasByCampaign)
}

func TestStatsRatesRoundedToTwoDecimals(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "one")
	seedTask(t, st, c.ID, "two")
	seedTask(t, st, c.ID, "three")

	done := domain.TaskDone
	_, err := st.UpdateTask(a.ID, store.UpdateTaskParams{Status: &done})
	require.NoError(t, err)

	res := ts.Stats(c.ID)
	require.True(t, res.IsSuccess())
	assert.Equal(t, 33.33, res.DataMap()["completion_rate"])
}

func TestDependencyInfo(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	base := seedTask(t, st, c.ID, "base")
	mid, err := st.CreateTask(store.CreateTaskParams{
		CampaignID: c.ID, Title: "mid", Dependencies: []string{base.ID},
	})
	require.NoError(t, err)
	_, err = st.CreateTask(store.CreateTaskParams{
		CampaignID: c.ID, Title: "top", Dependencies: []string{mid.ID},
	})
	require.NoError(t, err)

	res := ts.DependencyInfo(mid.ID)
	require.True(t, res.IsSuccess())
	data := res.DataMap()

	upstream := data["upstream_dependencies"].([]map[string]any)
	require.Len(t, upstream, 1)
	assert.Equal(t, "base", upstream[0]["title"])

	downstream := data["downstream_dependents"].([]map[string]any)
	require.Len(t, downstream, 1)
	assert.Equal(t, "top", downstream[0]["title"])

	summary := data["summary"].(map[string]any)
	assert.Equal(t, true, summary["is_blocked"])
	assert.Equal(t, true, summary["is_blocking_others"])
	assert.Equal(t, 1, summary["blocking_count"])
}

func TestBulkUpdate(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "one")
	b := seedTask(t, st, c.ID, "two")

	res := ts.BulkUpdate([]string{a.ID, b.ID, "ghost"}, domain.TaskInProgress, "")
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Equal(t, 2, data["updated_count"])
	assert.Equal(t, 1, data["failed_count"])
	applied := data["updates_applied"].(map[string]any)
	assert.Equal(t, domain.TaskInProgress, applied["status"])
}

func TestBulkUpdateValidation(t *testing.T) {
	ts, _, _ := newTestServices(t)
	assert.Equal(t, "No task IDs provided", ts.BulkUpdate(nil, "done", "").Message)
	assert.Equal(t, "No updates provided", ts.BulkUpdate([]string{"x"}, "", "").Message)
}

func TestBulkAddResearch(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "one")
	b := seedTask(t, st, c.ID, "two")

	res := ts.BulkAddResearch(
		[]string{a.ID, b.ID},
		[]ResearchInput{{Content: "shared findings"}, {Content: "api study", Type: "docs"}},
	)
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Equal(t, 2, data["tasks_updated"])
	assert.Equal(t, 4, data["total_research_added"])

	res = ts.BulkAddResearch([]string{"ghost"}, []ResearchInput{{Content: "x"}})
	require.True(t, res.IsFailure())
	assert.Equal(t, domain.KindNotFound, res.Kind)
}

func TestBulkAddDetails(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")
	a := seedTask(t, st, c.ID, "one")

	res := ts.BulkAddDetails([]TaskDetailsInput{
		{
			TaskID:          a.ID,
			Research:        []ResearchInput{{Content: "notes"}},
			Notes:           []string{"progress"},
			Criteria:        []string{"done when green"},
			TestingStrategy: []TestingStepInput{{Content: "run tests"}},
		},
		{TaskID: "ghost"},
	})
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Equal(t, 1, data["success_count"])
	assert.Equal(t, 1, data["failed_count"])

	details := data["details"].([]map[string]any)
	require.Len(t, details, 1)
	assert.Equal(t, 1, details[0]["research"])
	assert.Equal(t, 1, details[0]["notes"])
	assert.Equal(t, 1, details[0]["criteria"])
	assert.Equal(t, 1, details[0]["testing_steps"])
}

func TestCreateFromTemplate(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")

	res := ts.CreateFromTemplate("bug-fix", c.ID, "", TemplateOverrides{})
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Equal(t, "Bug Fix", data["title"])
	assert.Equal(t, domain.PriorityHigh, data["priority"])
	criteria := data["acceptance_criteria_details"].([]map[string]any)
	assert.Len(t, criteria, 4)

	pr := domain.PriorityCritical
	res = ts.CreateFromTemplate("feature", c.ID, "Dark mode", TemplateOverrides{Priority: &pr})
	require.True(t, res.IsSuccess())
	assert.Equal(t, "Dark mode", res.DataMap()["title"])
	assert.Equal(t, domain.PriorityCritical, res.DataMap()["priority"])
}

func TestCreateFromTemplateUnknown(t *testing.T) {
	ts, _, st := newTestServices(t)
	c := seedCampaign(t, st, "alpha")

	res := ts.CreateFromTemplate("mystery", c.ID, "", TemplateOverrides{})
	require.True(t, res.IsFailure())
	assert.Equal(t, domain.KindNotFound, res.Kind)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t,
		"Available templates: bug-fix, documentation, feature, refactor, research, test",
		res.Suggestions[0])
}
