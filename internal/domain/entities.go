package domain

import "time"

// ─── Enumerations ────────────────────────────────────────────────────────────

// Campaign statuses.
const (
	CampaignPlanning  = "planning"
	CampaignActive    = "active"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
	CampaignCancelled = "cancelled"
)

// Task statuses.
const (
	TaskPending    = "pending"
	TaskInProgress = "in-progress"
	TaskBlocked    = "blocked"
	TaskDone       = "done"
	TaskCancelled  = "cancelled"
)

// Priorities, shared by campaigns and tasks.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Attachment kinds.
const (
	KindAcceptanceCriteria = "acceptance_criteria"
	KindResearch           = "research"
	KindImplementationNote = "implementation_note"
	KindTestingStep        = "testing_step"
)

// Testing-step statuses.
const (
	TestPending = "pending"
	TestPassed  = "passed"
	TestFailed  = "failed"
	TestSkipped = "skipped"
)

// ValidCampaignStatus reports whether s is a campaign status.
func ValidCampaignStatus(s string) bool {
	switch s {
	case CampaignPlanning, CampaignActive, CampaignPaused, CampaignCompleted, CampaignCancelled:
		return true
	}
	return false
}

// ValidTaskStatus reports whether s is a task status.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskPending, TaskInProgress, TaskBlocked, TaskDone, TaskCancelled:
		return true
	}
	return false
}

// ValidPriority reports whether p is a priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// ValidTaskType reports whether t is a task type.
func ValidTaskType(t string) bool {
	switch t {
	case "code", "research", "test", "documentation", "refactor", "deployment", "review":
		return true
	}
	return false
}

// TerminalTaskStatus reports whether s ends a task's lifecycle.
func TerminalTaskStatus(s string) bool {
	return s == TaskDone || s == TaskCancelled
}

// PriorityRank returns the canonical five-level ranking used by the
// actionable queue: critical=1, high=2, medium=3, low=4, other=5.
func PriorityRank(p string) int {
	switch p {
	case PriorityCritical:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 4
	}
	return 5
}

// ─── Entities ────────────────────────────────────────────────────────────────

// Campaign is a top-level container grouping related tasks.
type Campaign struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Priority    string         `json:"priority"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// AsMap serializes the campaign for the tool-surface boundary.
func (c Campaign) AsMap() map[string]any {
	return map[string]any{
		"id":           c.ID,
		"name":         c.Name,
		"description":  c.Description,
		"status":       c.Status,
		"priority":     c.Priority,
		"metadata":     c.Metadata,
		"created_at":   formatTime(c.CreatedAt),
		"updated_at":   formatTime(c.UpdatedAt),
		"completed_at": formatTimePtr(c.CompletedAt),
	}
}

// Task is a unit of work belonging to exactly one campaign.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	Category      *string    `json:"category,omitempty"`
	Type          string     `json:"type"`
	Tags          []string   `json:"tags"`
	Dependencies  []string   `json:"dependencies"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	PriorityOrder *int       `json:"priority_order,omitempty"`
	CampaignID    string     `json:"campaign_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// AsMap serializes the task for the tool-surface boundary.
func (t Task) AsMap() map[string]any {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	deps := t.Dependencies
	if deps == nil {
		deps = []string{}
	}
	return map[string]any{
		"id":             t.ID,
		"title":          t.Title,
		"description":    t.Description,
		"priority":       t.Priority,
		"status":         t.Status,
		"category":       ptrOrNil(t.Category),
		"type":           t.Type,
		"created_at":     formatTime(t.CreatedAt),
		"updated_at":     formatTime(t.UpdatedAt),
		"completed_at":   formatTimePtr(t.CompletedAt),
		"tags":           tags,
		"dependencies":   deps,
		"failure_reason": ptrOrNil(t.FailureReason),
		"campaign_id":    t.CampaignID,
		"priority_order": intPtrOrNil(t.PriorityOrder),
	}
}

// Summary returns the compact id/title/status/priority view.
func (t Task) Summary() map[string]any {
	return map[string]any{
		"id":       t.ID,
		"title":    t.Title,
		"status":   t.Status,
		"priority": t.Priority,
	}
}

// Attachment is a note-like record bound to a task or a campaign. Exactly
// one of TaskID, CampaignID is non-empty. Kind-specific state lives in
// dedicated fields: IsMet for acceptance criteria, Subtype for research and
// testing steps, TestStatus for testing steps.
type Attachment struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id,omitempty"`
	CampaignID string    `json:"campaign_id,omitempty"`
	Kind       string    `json:"kind"`
	Content    string    `json:"content"`
	Subtype    string    `json:"subtype,omitempty"`
	IsMet      bool      `json:"is_met"`
	TestStatus string    `json:"test_status,omitempty"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// AsMap serializes the attachment using the field names each kind's callers
// expect: criteria expose is_met, research exposes type, testing steps
// expose step_type and test_status.
func (a Attachment) AsMap() map[string]any {
	m := map[string]any{
		"id":          a.ID,
		"content":     a.Content,
		"order_index": a.OrderIndex,
	}
	if a.TaskID != "" {
		m["task_id"] = a.TaskID
	}
	if a.CampaignID != "" {
		m["campaign_id"] = a.CampaignID
	}
	switch a.Kind {
	case KindAcceptanceCriteria:
		m["is_met"] = a.IsMet
	case KindResearch:
		m["type"] = a.Subtype
	case KindTestingStep:
		m["step_type"] = a.Subtype
		m["test_status"] = a.TestStatus
	}
	return m
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func ptrOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intPtrOrNil(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}
