package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskcrusade/crusader/internal/depgraph"
	"github.com/taskcrusade/crusader/internal/domain"
	"github.com/taskcrusade/crusader/internal/store"
)

func TestCreateCampaignRejectsBlankName(t *testing.T) {
	_, cs, _ := newTestServices(t)

	res := cs.Create(CreateCampaignInput{Name: "   "})
	require.True(t, res.IsFailure())
	assert.Equal(t, domain.KindValidationError, res.Kind)
	assert.Equal(t, "Campaign name cannot be empty or whitespace", res.Message)
}

func TestCreateCampaignDuplicateName(t *testing.T) {
	_, cs, _ := newTestServices(t)

	require.True(t, cs.Create(CreateCampaignInput{Name: "release"}).IsSuccess())

	res := cs.Create(CreateCampaignInput{Name: "release"})
	require.True(t, res.IsFailure())
	assert.Equal(t, domain.KindAlreadyExists, res.Kind)
}

func TestCreateCampaignEmitsSetupHint(t *testing.T) {
	_, cs, _ := newTestServices(t)

	res := cs.Create(CreateCampaignInput{Name: "release", Priority: domain.PriorityHigh})
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Equal(t, "release", data["name"])

	hintList := data["hints"].([]map[string]any)
	require.NotEmpty(t, hintList)
	assert.Contains(t, hintList[0]["message"], "Campaign 'release' created")
}

func TestGetCampaignByIDOrName(t *testing.T) {
	_, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "release")

	byID := cs.Get(c.ID)
	require.True(t, byID.IsSuccess())
	byName := cs.Get("release")
	require.True(t, byName.IsSuccess())
	assert.Equal(t, byID.DataMap()["id"], byName.DataMap()["id"])

	missing := cs.Get("nope")
	assert.Equal(t, domain.KindNotFound, missing.Kind)
}

func TestShowWithTasks(t *testing.T) {
	_, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "release")
	seedTask(t, st, c.ID, "one")

	res := cs.ShowWithTasks(c.ID, true)
	require.True(t, res.IsSuccess())
	tasks := res.DataMap()["tasks"].([]map[string]any)
	require.Len(t, tasks, 1)
	assert.Contains(t, tasks[0], "description")

	res = cs.ShowWithTasks("release", false)
	require.True(t, res.IsSuccess())
	tasks = res.DataMap()["tasks"].([]map[string]any)
	require.Len(t, tasks, 1)
	assert.NotContains(t, tasks[0], "description")
	assert.Equal(t, "one", tasks[0]["title"])
}

func TestListCampaignsWithTaskStatistics(t *testing.T) {
	_, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "release")
	a := seedTask(t, st, c.ID, "one")
	seedTask(t, st, c.ID, "two")

	done := domain.TaskDone
	_, err := st.UpdateTask(a.ID, store.UpdateTaskParams{Status: &done})
	require.NoError(t, err)

	res := cs.List("", "")
	require.True(t, res.IsSuccess())
	campaigns := res.Data.([]map[string]any)
	require.Len(t, campaigns, 1)

	stats := campaigns[0]["task_statistics"].(map[string]any)
	assert.Equal(t, 2, stats["total"])
	assert.Equal(t, 1, stats["done"])
	assert.Equal(t, 1, stats["pending"])
}

func TestDeleteCampaignReportsDeletedTasks(t *testing.T) {
	_, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "release")
	seedTask(t, st, c.ID, "one")
	seedTask(t, st, c.ID, "two")

	res := cs.Delete(c.ID)
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Equal(t, 2, data["tasks_deleted"])
	assert.Equal(t, "Campaign '"+c.ID+"' deleted successfully", data["message"])

	assert.Equal(t, domain.KindNotFound, cs.Get(c.ID).Kind)
}

func TestProgressSummaryShape(t *testing.T) {
	ts, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "release")
	a := seedTask(t, st, c.ID, "one")
	seedTask(t, st, c.ID, "two")
	require.True(t, ts.Complete(a.ID).IsSuccess())

	res := cs.ProgressSummary(c.ID)
	require.True(t, res.IsSuccess())
	data := res.DataMap()

	assert.Equal(t, c.ID, data["campaign_id"])
	assert.Equal(t, "release", data["campaign_name"])
	assert.Equal(t, 2, data["total_tasks"])
	assert.Equal(t, 50.0, data["completion_rate"])

	byStatus := data["tasks_by_status"].(map[string]any)
	assert.Equal(t, 1, byStatus["done"])
	assert.Equal(t, 1, byStatus["pending"])

	assert.Nil(t, data["current_in_progress_task"])
	next := data["next_actionable_task"].(map[string]any)
	assert.Equal(t, "two", next["title"])
}

func TestNextActionableTask(t *testing.T) {
	_, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "release")
	base := seedTask(t, st, c.ID, "base")
	_, err := st.CreateTask(store.CreateTaskParams{
		CampaignID: c.ID, Title: "gated", Dependencies: []string{base.ID},
	})
	require.NoError(t, err)

	res := cs.NextActionableTask(c.ID, "")
	require.True(t, res.IsSuccess())
	data := res.DataMap()

	task := data["task"].(map[string]any)
	assert.Equal(t, "base", task["title"])
	assert.Equal(t, true, data["dependencies_met"])
	assert.Equal(t, "basic", data["context_depth"])
	assert.NotNil(t, data["campaign_progress"])
}

func TestNextActionableTaskNoneAvailable(t *testing.T) {
	ts, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "release")
	a := seedTask(t, st, c.ID, "only")
	require.True(t, ts.Complete(a.ID).IsSuccess())

	res := cs.NextActionableTask(c.ID, "")
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Nil(t, data["task"])
	assert.Equal(t,
		"No actionable tasks found. All tasks may be blocked or completed.",
		data["message"])
}

func TestAllActionableTasksWarnsOnInProgress(t *testing.T) {
	_, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "release")
	a := seedTask(t, st, c.ID, "one")
	seedTask(t, st, c.ID, "two")

	inProgress := domain.TaskInProgress
	_, err := st.UpdateTask(a.ID, store.UpdateTaskParams{Status: &inProgress})
	require.NoError(t, err)

	res := cs.AllActionableTasks(c.ID, 0, "")
	require.True(t, res.IsSuccess())
	data := res.DataMap()

	assert.Equal(t, true, data["has_in_progress_tasks"])
	warnings := data["warnings"].([]string)
	require.Len(t, warnings, 1)
	assert.Equal(t, "1 tasks currently in-progress", warnings[0])
	assert.Equal(t, "basic", data["context_depth"])
}

func TestCampaignResearchCRUD(t *testing.T) {
	_, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "release")

	addRes := cs.AddResearch(c.ID, "market overview", "")
	require.True(t, addRes.IsSuccess())
	id := addRes.DataMap()["id"].(string)
	assert.Equal(t, "analysis", addRes.DataMap()["research_type"])

	listRes := cs.ListResearch(c.ID, "")
	require.True(t, listRes.IsSuccess())

	newContent := "revised overview"
	updRes := cs.UpdateResearch(c.ID, id, &newContent, nil)
	require.True(t, updRes.IsSuccess())
	assert.Equal(t, "revised overview", updRes.DataMap()["content"])

	delRes := cs.DeleteResearch(c.ID, id)
	require.True(t, delRes.IsSuccess())
	assert.Equal(t, id, delRes.DataMap()["research_id"])

	assert.Equal(t, domain.KindNotFound, cs.GetResearch(c.ID, id).Kind)
}

func TestCreateWithTasks(t *testing.T) {
	_, cs, _ := newTestServices(t)

	res := cs.CreateWithTasks(depgraph.CampaignSpec{
		Name: "launch",
		Tasks: []depgraph.TaskSpec{
			{
				TempID:             "deploy",
				Title:              "Deploy",
				Dependencies:       []string{"build"},
				AcceptanceCriteria: []string{"live in production"},
			},
			{
				TempID:   "build",
				Title:    "Build",
				Research: []depgraph.ResearchSpec{{Content: "build notes"}},
			},
		},
		Research: []depgraph.ResearchSpec{{Content: "launch plan"}},
	})
	require.True(t, res.IsSuccess())
	data := res.DataMap()

	mapping := data["temp_id_to_uuid"].(map[string]any)
	require.Len(t, mapping, 2)

	tasks := data["tasks"].([]map[string]any)
	require.Len(t, tasks, 2)
	// Dependencies come first in creation order.
	assert.Equal(t, "build", tasks[0]["temp_id"])
	assert.Equal(t, "deploy", tasks[1]["temp_id"])
	assert.Equal(t, mapping["build"], tasks[1]["dependencies"].([]string)[0])

	summary := data["summary"].(map[string]any)
	assert.Equal(t, 2, summary["total_tasks"])
	assert.Equal(t, 1, summary["with_criteria"])
	assert.Equal(t, 1, summary["with_research"])
}

func TestCreateWithTasksRejectsCycle(t *testing.T) {
	_, cs, _ := newTestServices(t)

	res := cs.CreateWithTasks(depgraph.CampaignSpec{
		Name: "loop",
		Tasks: []depgraph.TaskSpec{
			{TempID: "a", Title: "A", Dependencies: []string{"b"}},
			{TempID: "b", Title: "B", Dependencies: []string{"a"}},
		},
	})
	require.True(t, res.IsFailure())
	assert.Equal(t, domain.KindValidationError, res.Kind)
}

func TestOverview(t *testing.T) {
	ts, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "release")
	a := seedTask(t, st, c.ID, "one")
	seedTask(t, st, c.ID, "two")
	require.True(t, ts.Complete(a.ID).IsSuccess())
	require.True(t, cs.AddResearch(c.ID, "notes", "").IsSuccess())

	res := cs.Overview(c.ID)
	require.True(t, res.IsSuccess())
	data := res.DataMap()

	assert.Len(t, data["recent_tasks"], 2)
	assert.Len(t, data["research_items"], 1)

	summary := data["summary"].(map[string]any)
	assert.Equal(t, 2, summary["total_tasks"])
	assert.Equal(t, 1, summary["completed_tasks"])
	assert.Equal(t, 0, summary["in_progress_tasks"])
	assert.Equal(t, 50.0, summary["completion_rate"])
	assert.Equal(t, 1, summary["actionable_count"])
	assert.Equal(t, 1, summary["research_count"])
}

func TestStateSnapshot(t *testing.T) {
	ts, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "release")
	a := seedTask(t, st, c.ID, "one")
	require.True(t, ts.AddAcceptanceCriteria(a.ID, "crit").IsSuccess())
	require.True(t, ts.AddResearch(a.ID, "task research", "").IsSuccess())
	require.True(t, ts.AddImplementationNote(a.ID, "note").IsSuccess())
	require.True(t, cs.AddResearch(c.ID, "campaign research", "").IsSuccess())

	res := cs.StateSnapshot(c.ID)
	require.True(t, res.IsSuccess())
	data := res.DataMap()

	tasks := data["tasks"].([]map[string]any)
	require.Len(t, tasks, 1)
	assert.Len(t, tasks[0]["acceptance_criteria_details"], 1)
	assert.Len(t, tasks[0]["implementation_notes"], 1)

	meta := data["metadata"].(map[string]any)
	assert.Equal(t, 1, meta["total_tasks"])
	assert.Equal(t, 1, meta["total_criteria"])
	assert.Equal(t, 2, meta["total_research"])
	assert.Equal(t, 1, meta["total_notes"])
}

func TestValidateReadinessEmptyCampaign(t *testing.T) {
	_, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "empty")

	res := cs.ValidateReadiness(c.ID)
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Equal(t, false, data["is_ready"])
	assert.Equal(t, []string{"Campaign has no tasks"}, data["issues"])
}

func TestValidateReadinessHealthyCampaign(t *testing.T) {
	ts, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "ready")
	a := seedTask(t, st, c.ID, "one")
	require.True(t, ts.AddAcceptanceCriteria(a.ID, "done when green").IsSuccess())

	res := cs.ValidateReadiness(c.ID)
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Equal(t, true, data["is_ready"])
	assert.Empty(t, data["issues"])
	assert.Empty(t, data["warnings"])

	summary := data["summary"].(map[string]any)
	assert.Equal(t, 1, summary["total_tasks"])
	assert.Equal(t, 1, summary["actionable_tasks"])
	assert.Equal(t, 0, summary["tasks_without_criteria"])
}

func TestValidateReadinessWarnsOnMissingCriteria(t *testing.T) {
	_, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "gaps")
	seedTask(t, st, c.ID, "bare")

	res := cs.ValidateReadiness(c.ID)
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Equal(t, true, data["is_ready"])
	warnings := data["warnings"].([]string)
	assert.Contains(t, warnings, "1 tasks have no acceptance criteria")
}

func TestRenumberTasksFollowsDependencyOrder(t *testing.T) {
	_, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "ordered")
	base := seedTask(t, st, c.ID, "zeta base")
	_, err := st.CreateTask(store.CreateTaskParams{
		CampaignID: c.ID, Title: "alpha follow-up", Dependencies: []string{base.ID},
	})
	require.NoError(t, err)

	res := cs.RenumberTasks(c.ID, 0)
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Equal(t, 2, data["tasks_renumbered"])

	tasks := data["tasks"].([]map[string]any)
	require.Len(t, tasks, 2)
	// The dependency precedes its dependent regardless of title order.
	assert.Equal(t, "zeta base", tasks[0]["title"])
	assert.Equal(t, 1, tasks[0]["number"])
	assert.Equal(t, "alpha follow-up", tasks[1]["title"])
	assert.Equal(t, 2, tasks[1]["number"])
}

func TestRenumberTasksEmptyCampaign(t *testing.T) {
	_, cs, st := newTestServices(t)
	c := seedCampaign(t, st, "empty")

	res := cs.RenumberTasks(c.ID, 1)
	require.True(t, res.IsSuccess())
	data := res.DataMap()
	assert.Equal(t, 0, data["tasks_renumbered"])
	assert.Equal(t, "No tasks to renumber", data["message"])
}
