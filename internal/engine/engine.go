// Package engine implements the task and campaign operations behind the
// tool surface. Services load and mutate state through the store, decorate
// responses with hints, and report every outcome as a domain.Result.
package engine

import (
	"errors"

	"github.com/taskcrusade/crusader/internal/domain"
	"github.com/taskcrusade/crusader/internal/hints"
	"github.com/taskcrusade/crusader/internal/store"
)

// ResearchInput is a research item supplied alongside a task or campaign.
type ResearchInput struct {
	Content string
	Type    string
}

// storeFail maps a store error to the matching Result: ErrNotFound becomes
// not_found for the named resource, anything else an operation failure.
func storeFail(err error, operation, resource, id string) domain.Result {
	if errors.Is(err, store.ErrNotFound) {
		return domain.NotFound(resource, id)
	}
	return domain.OperationFailed(operation, err.Error())
}

// attachmentMaps serializes attachments for a response list.
func attachmentMaps(items []domain.Attachment) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, a := range items {
		out[i] = a.AsMap()
	}
	return out
}

// taskMaps serializes tasks for a response list.
func taskMaps(tasks []domain.Task) []map[string]any {
	out := make([]map[string]any, len(tasks))
	for i, t := range tasks {
		out[i] = t.AsMap()
	}
	return out
}

// taskRef is the id/title/status triple used by dependency listings.
func taskRef(t domain.Task) map[string]any {
	return map[string]any{
		"id":     t.ID,
		"title":  t.Title,
		"status": t.Status,
	}
}

// mergeHints folds a hint collection into response data in place.
func mergeHints(data map[string]any, g *hints.Generator, c hints.Collection) {
	for k, v := range g.FormatForResponse(c) {
		data[k] = v
	}
}

// progressInfo builds the hint-generator progress snapshot for a campaign.
func progressInfo(st *store.Store, campaignID string) (hints.ProgressInfo, error) {
	counts, err := st.CountTasksByStatus(campaignID)
	if err != nil {
		return hints.ProgressInfo{}, err
	}
	p := hints.ProgressInfo{
		Pending:    counts[domain.TaskPending],
		InProgress: counts[domain.TaskInProgress],
		Done:       counts[domain.TaskDone],
		Blocked:    counts[domain.TaskBlocked],
	}
	for _, n := range counts {
		p.Total += n
	}
	if p.Total > 0 {
		p.CompletionRate = float64(p.Done) / float64(p.Total) * 100
	}
	return p, nil
}

// progressSummary builds the progress payload shared by campaign responses:
// task counts by status, completion rate, the running task, and the next
// pending task.
func progressSummary(st *store.Store, c *domain.Campaign) (map[string]any, error) {
	counts, err := st.CountTasksByStatus(c.ID)
	if err != nil {
		return nil, err
	}

	byStatus := map[string]any{
		domain.TaskPending:    counts[domain.TaskPending],
		domain.TaskInProgress: counts[domain.TaskInProgress],
		domain.TaskDone:       counts[domain.TaskDone],
		domain.TaskCancelled:  counts[domain.TaskCancelled],
		domain.TaskBlocked:    counts[domain.TaskBlocked],
	}
	total := 0
	for _, n := range counts {
		total += n
	}

	rate := 0.0
	if total > 0 {
		rate = round2(float64(counts[domain.TaskDone]) / float64(total) * 100)
	}

	var current map[string]any
	running, err := st.CurrentInProgressTask(c.ID)
	if err != nil {
		return nil, err
	}
	if running != nil {
		current = map[string]any{
			"id":       running.ID,
			"title":    running.Title,
			"priority": running.Priority,
		}
	}

	var next map[string]any
	pending, err := st.ActionableTasks(c.ID, 1)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		next = map[string]any{
			"id":       pending[0].ID,
			"title":    pending[0].Title,
			"priority": pending[0].Priority,
		}
	}

	return map[string]any{
		"campaign_id":              c.ID,
		"campaign_name":            c.Name,
		"total_tasks":              total,
		"tasks_by_status":          byStatus,
		"completion_rate":          rate,
		"current_in_progress_task": anyOrNil(current),
		"next_actionable_task":     anyOrNil(next),
	}, nil
}

func anyOrNil(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func quoteIDs(ids []string) string {
	s := "["
	for i, id := range ids {
		if i > 0 {
			s += ", "
		}
		s += "'" + id + "'"
	}
	return s + "]"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
