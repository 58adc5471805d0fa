// Package store implements the persistent campaign and task storage for
// Crusader.
//
// It uses SQLite with a schema-in-code migration: campaigns, tasks, the
// task dependency edges, and a single attachments table that carries
// acceptance criteria, research items, implementation notes, and testing
// steps with kind-specific columns.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/taskcrusade/crusader/internal/domain"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Sentinel errors mapped to result kinds at the engine boundary.
var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate")
)

var uuidPattern = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	// Path is the SQLite database file. The parent directory is created
	// on open if it does not exist.
	Path string
}

// DefaultConfig returns the default configuration, placing the database
// under the user's home directory.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Path: filepath.Join(home, ".crusader", "database.db"),
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the campaign tracker's persistence layer backed by SQLite.
type Store struct {
	db  *sql.DB
	cfg Config
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, letting the batch
// creation path reuse the single-row helpers inside a transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// New creates a new Store with the given configuration.
// It creates the database directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	db, err := openDB("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("store: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS campaigns (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL UNIQUE,
			description  TEXT NOT NULL DEFAULT '',
			status       TEXT NOT NULL DEFAULT 'planning',
			priority     TEXT NOT NULL DEFAULT 'medium',
			metadata     TEXT NOT NULL DEFAULT '{}',
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL,
			completed_at TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_campaigns_status  ON campaigns(status);
		CREATE INDEX IF NOT EXISTS idx_campaigns_created ON campaigns(created_at DESC);

		CREATE TABLE IF NOT EXISTS tasks (
			id             TEXT PRIMARY KEY,
			campaign_id    TEXT NOT NULL,
			title          TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			priority       TEXT NOT NULL DEFAULT 'medium',
			status         TEXT NOT NULL DEFAULT 'pending',
			category       TEXT,
			type           TEXT NOT NULL DEFAULT 'code',
			tags           TEXT NOT NULL DEFAULT '[]',
			failure_reason TEXT,
			priority_order INTEGER,
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL,
			completed_at   TEXT,
			FOREIGN KEY (campaign_id) REFERENCES campaigns(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_campaign ON tasks(campaign_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_status   ON tasks(status);
		CREATE INDEX IF NOT EXISTS idx_tasks_order    ON tasks(campaign_id, priority_order, created_at);

		CREATE TABLE IF NOT EXISTS task_dependencies (
			task_id    TEXT NOT NULL,
			depends_on TEXT NOT NULL,
			PRIMARY KEY (task_id, depends_on),
			FOREIGN KEY (task_id)    REFERENCES tasks(id) ON DELETE CASCADE,
			FOREIGN KEY (depends_on) REFERENCES tasks(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_deps_on ON task_dependencies(depends_on);

		CREATE TABLE IF NOT EXISTS attachments (
			id          TEXT PRIMARY KEY,
			task_id     TEXT,
			campaign_id TEXT,
			kind        TEXT NOT NULL,
			content     TEXT NOT NULL,
			subtype     TEXT NOT NULL DEFAULT '',
			is_met      INTEGER NOT NULL DEFAULT 0,
			test_status TEXT NOT NULL DEFAULT '',
			order_index INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			FOREIGN KEY (task_id)     REFERENCES tasks(id)     ON DELETE CASCADE,
			FOREIGN KEY (campaign_id) REFERENCES campaigns(id) ON DELETE CASCADE,
			CHECK ((task_id IS NULL) != (campaign_id IS NULL))
		);

		CREATE INDEX IF NOT EXISTS idx_att_task     ON attachments(task_id, kind, order_index);
		CREATE INDEX IF NOT EXISTS idx_att_campaign ON attachments(campaign_id, kind, order_index);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// ─── Campaigns ───────────────────────────────────────────────────────────────

// CreateCampaignParams holds input for creating a campaign.
type CreateCampaignParams struct {
	Name        string
	Description string
	Priority    string
	Metadata    map[string]any
}

// UpdateCampaignParams holds partial update fields for a campaign. Nil
// pointers leave the column untouched.
type UpdateCampaignParams struct {
	Name        *string
	Description *string
	Status      *string
	Priority    *string
}

// CreateCampaign inserts a campaign with a fresh UUID. A name collision
// returns ErrDuplicate.
func (s *Store) CreateCampaign(p CreateCampaignParams) (*domain.Campaign, error) {
	return createCampaign(s.db, p)
}

func createCampaign(q dbtx, p CreateCampaignParams) (*domain.Campaign, error) {
	var exists int
	err := q.QueryRow(`SELECT COUNT(*) FROM campaigns WHERE name = ?`, p.Name).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("store: check campaign name: %w", err)
	}
	if exists > 0 {
		return nil, ErrDuplicate
	}

	if p.Priority == "" {
		p.Priority = domain.PriorityMedium
	}
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}

	c := domain.Campaign{
		ID:          uuid.NewString(),
		Name:        p.Name,
		Description: p.Description,
		Status:      domain.CampaignPlanning,
		Priority:    p.Priority,
		Metadata:    p.Metadata,
		CreatedAt:   time.Now().UTC(),
	}
	c.UpdatedAt = c.CreatedAt

	meta, err := json.Marshal(c.Metadata)
	if err != nil {
		return nil, fmt.Errorf("store: encode metadata: %w", err)
	}

	_, err = q.Exec(
		`INSERT INTO campaigns (id, name, description, status, priority, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.Status, c.Priority, string(meta),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert campaign: %w", err)
	}
	return &c, nil
}

// GetCampaign retrieves a campaign by ID.
func (s *Store) GetCampaign(id string) (*domain.Campaign, error) {
	return getCampaign(s.db, id)
}

func getCampaign(q dbtx, id string) (*domain.Campaign, error) {
	row := q.QueryRow(
		`SELECT id, name, description, status, priority, metadata, created_at, updated_at, completed_at
		 FROM campaigns WHERE id = ?`, id,
	)
	return scanCampaign(row)
}

// GetCampaignByName retrieves a campaign by its unique name.
func (s *Store) GetCampaignByName(name string) (*domain.Campaign, error) {
	row := s.db.QueryRow(
		`SELECT id, name, description, status, priority, metadata, created_at, updated_at, completed_at
		 FROM campaigns WHERE name = ?`, name,
	)
	return scanCampaign(row)
}

// ResolveCampaign accepts either a campaign UUID or a campaign name and
// returns the matching campaign.
func (s *Store) ResolveCampaign(ref string) (*domain.Campaign, error) {
	if uuidPattern.MatchString(ref) {
		return s.GetCampaign(ref)
	}
	return s.GetCampaignByName(ref)
}

// ListCampaigns returns campaigns newest first, optionally filtered by
// status and priority.
func (s *Store) ListCampaigns(status, priority string) ([]domain.Campaign, error) {
	query := `SELECT id, name, description, status, priority, metadata, created_at, updated_at, completed_at
	          FROM campaigns WHERE 1=1`
	args := []any{}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	if priority != "" {
		query += " AND priority = ?"
		args = append(args, priority)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Campaign
	for rows.Next() {
		c, err := scanCampaignRows(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *c)
	}
	return results, rows.Err()
}

// UpdateCampaign applies the non-nil fields and returns the refreshed
// campaign. Setting status to completed stamps completed_at; moving out of
// completed clears it.
func (s *Store) UpdateCampaign(id string, p UpdateCampaignParams) (*domain.Campaign, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now().UTC())}

	if p.Name != nil {
		var clash int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM campaigns WHERE name = ? AND id != ?`, *p.Name, id).Scan(&clash); err != nil {
			return nil, err
		}
		if clash > 0 {
			return nil, ErrDuplicate
		}
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *p.Status)
		if *p.Status == domain.CampaignCompleted {
			sets = append(sets, "completed_at = ?")
			args = append(args, formatTime(time.Now().UTC()))
		} else {
			sets = append(sets, "completed_at = NULL")
		}
	}
	if p.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *p.Priority)
	}

	args = append(args, id)
	res, err := s.db.Exec(`UPDATE campaigns SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: update campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetCampaign(id)
}

// DeleteCampaign removes a campaign and all of its tasks, returning the
// number of tasks that went with it.
func (s *Store) DeleteCampaign(id string) (int, error) {
	var tasks int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE campaign_id = ?`, id).Scan(&tasks); err != nil {
		return 0, err
	}
	res, err := s.db.Exec(`DELETE FROM campaigns WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("store: delete campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrNotFound
	}
	return tasks, nil
}

// ─── Tasks ───────────────────────────────────────────────────────────────────

// CreateTaskParams holds input for creating a task. Dependencies are IDs
// of existing tasks.
type CreateTaskParams struct {
	CampaignID   string
	Title        string
	Description  string
	Priority     string
	Type         string
	Category     string
	Tags         []string
	Dependencies []string
}

// UpdateTaskParams holds partial update fields for a task. Nil pointers
// leave the column untouched.
type UpdateTaskParams struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	Category      *string
	FailureReason *string
	PriorityOrder *int
}

// TaskFilter narrows ListTasks. Empty fields match everything; a zero
// Limit means no pagination.
type TaskFilter struct {
	CampaignID string
	Status     string
	Priority   string
	Category   string
	Type       string
	Limit      int
	Offset     int
}

// CreateTask inserts a task with a fresh UUID and records its dependency
// edges. The campaign and every dependency must already exist.
func (s *Store) CreateTask(p CreateTaskParams) (*domain.Task, error) {
	return createTask(s.db, p)
}

func createTask(q dbtx, p CreateTaskParams) (*domain.Task, error) {
	if p.Priority == "" {
		p.Priority = domain.PriorityMedium
	}
	if p.Type == "" {
		p.Type = "code"
	}

	t := domain.Task{
		ID:           uuid.NewString(),
		CampaignID:   p.CampaignID,
		Title:        p.Title,
		Description:  p.Description,
		Priority:     p.Priority,
		Status:       domain.TaskPending,
		Type:         p.Type,
		Tags:         p.Tags,
		Dependencies: p.Dependencies,
		CreatedAt:    time.Now().UTC(),
	}
	t.UpdatedAt = t.CreatedAt
	if p.Category != "" {
		t.Category = &p.Category
	}

	tags, err := json.Marshal(tagsOrEmpty(p.Tags))
	if err != nil {
		return nil, fmt.Errorf("store: encode tags: %w", err)
	}

	_, err = q.Exec(
		`INSERT INTO tasks (id, campaign_id, title, description, priority, status, category, type, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.CampaignID, t.Title, t.Description, t.Priority, t.Status,
		nullableString(p.Category), t.Type, string(tags),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert task: %w", err)
	}

	for _, dep := range p.Dependencies {
		if _, err := q.Exec(
			`INSERT OR IGNORE INTO task_dependencies (task_id, depends_on) VALUES (?, ?)`,
			t.ID, dep,
		); err != nil {
			return nil, fmt.Errorf("store: insert dependency: %w", err)
		}
	}
	return &t, nil
}

// GetTask retrieves a task by ID, dependencies included.
func (s *Store) GetTask(id string) (*domain.Task, error) {
	row := s.db.QueryRow(taskSelect+` WHERE t.id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, err
	}
	deps, err := s.taskDependencyIDs(t.ID)
	if err != nil {
		return nil, err
	}
	t.Dependencies = deps
	return t, nil
}

// ListTasks returns tasks ordered by priority_order (unset last) then
// creation time, oldest first.
func (s *Store) ListTasks(f TaskFilter) ([]domain.Task, error) {
	query := taskSelect + ` WHERE 1=1`
	args := []any{}
	if f.CampaignID != "" {
		query += " AND t.campaign_id = ?"
		args = append(args, f.CampaignID)
	}
	if f.Status != "" {
		query += " AND t.status = ?"
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		query += " AND t.priority = ?"
		args = append(args, f.Priority)
	}
	if f.Category != "" {
		query += " AND t.category = ?"
		args = append(args, f.Category)
	}
	if f.Type != "" {
		query += " AND t.type = ?"
		args = append(args, f.Type)
	}
	query += " ORDER BY t.priority_order IS NULL, t.priority_order, t.created_at"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	} else if f.Offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, f.Offset)
	}
	return s.queryTasks(query, args...)
}

// UpdateTask applies the non-nil fields and returns the refreshed task.
// Entering a terminal status (done or cancelled) stamps completed_at the
// first time; the timestamp is never cleared afterward.
func (s *Store) UpdateTask(id string, p UpdateTaskParams) (*domain.Task, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now().UTC())}

	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *p.Status)
		if domain.TerminalTaskStatus(*p.Status) {
			sets = append(sets, "completed_at = COALESCE(completed_at, ?)")
			args = append(args, formatTime(time.Now().UTC()))
		}
	}
	if p.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *p.Priority)
	}
	if p.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, nullableString(*p.Category))
	}
	if p.FailureReason != nil {
		sets = append(sets, "failure_reason = ?")
		args = append(args, nullableString(*p.FailureReason))
	}
	if p.PriorityOrder != nil {
		sets = append(sets, "priority_order = ?")
		args = append(args, *p.PriorityOrder)
	}

	args = append(args, id)
	res, err := s.db.Exec(`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetTask(id)
}

// DeleteTask removes a task and its dependency edges.
func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DependencyTasks returns the tasks this task depends on.
func (s *Store) DependencyTasks(id string) ([]domain.Task, error) {
	return s.queryTasks(taskSelect+`
		JOIN task_dependencies d ON d.depends_on = t.id
		WHERE d.task_id = ?
		ORDER BY t.created_at`, id)
}

// DependentTasks returns the tasks that depend on this task.
func (s *Store) DependentTasks(id string) ([]domain.Task, error) {
	return s.queryTasks(taskSelect+`
		JOIN task_dependencies d ON d.task_id = t.id
		WHERE d.depends_on = ?
		ORDER BY t.created_at`, id)
}

// SetTaskDependencies replaces the task's dependency edges with deps.
func (s *Store) SetTaskDependencies(taskID string, deps []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM task_dependencies WHERE task_id = ?`, taskID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: clear dependencies: %w", err)
	}
	for _, dep := range deps {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO task_dependencies (task_id, depends_on) VALUES (?, ?)`,
			taskID, dep,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store: insert dependency: %w", err)
		}
	}
	return tx.Commit()
}

// actionableOrder ranks in-progress before pending, then by the five
// level priority ranking, then explicit priority_order (unset last),
// then creation time.
const actionableOrder = `
	ORDER BY CASE t.status WHEN 'in-progress' THEN 0 ELSE 1 END,
	         CASE t.priority
	              WHEN 'critical' THEN 1
	              WHEN 'high'     THEN 2
	              WHEN 'medium'   THEN 3
	              WHEN 'low'      THEN 4
	              ELSE 5
	         END,
	         t.priority_order IS NULL, t.priority_order,
	         t.created_at`

// ActionableTasks returns pending or in-progress tasks whose dependencies
// are all done, most urgent first. A limit of 0 means no limit.
func (s *Store) ActionableTasks(campaignID string, limit int) ([]domain.Task, error) {
	query := taskSelect + `
		WHERE t.campaign_id = ?
		  AND t.status IN ('pending', 'in-progress')
		  AND NOT EXISTS (
		      SELECT 1 FROM task_dependencies d
		      JOIN tasks dt ON dt.id = d.depends_on
		      WHERE d.task_id = t.id AND dt.status != 'done'
		  )` + actionableOrder
	args := []any{campaignID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryTasks(query, args...)
}

// CurrentInProgressTask returns the most recently touched in-progress task
// of the campaign, or nil when none is running.
func (s *Store) CurrentInProgressTask(campaignID string) (*domain.Task, error) {
	row := s.db.QueryRow(taskSelect+`
		WHERE t.campaign_id = ? AND t.status = 'in-progress'
		ORDER BY t.updated_at DESC LIMIT 1`, campaignID)
	t, err := scanTask(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CountTasksByStatus returns task counts per status for a campaign, or
// across all campaigns when campaignID is empty.
func (s *Store) CountTasksByStatus(campaignID string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM tasks`
	args := []any{}
	if campaignID != "" {
		query += ` WHERE campaign_id = ?`
		args = append(args, campaignID)
	}
	query += ` GROUP BY status`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CriteriaStats aggregates acceptance criteria over a campaign's tasks,
// or over all tasks when campaignID is empty.
func (s *Store) CriteriaStats(campaignID string) (tasksWithCriteria, total, met int, err error) {
	query := `
		SELECT COUNT(DISTINCT a.task_id),
		       COUNT(*),
		       COALESCE(SUM(a.is_met), 0)
		FROM attachments a
		JOIN tasks t ON t.id = a.task_id
		WHERE a.kind = 'acceptance_criteria'`
	args := []any{}
	if campaignID != "" {
		query += ` AND t.campaign_id = ?`
		args = append(args, campaignID)
	}
	err = s.db.QueryRow(query, args...).Scan(&tasksWithCriteria, &total, &met)
	return
}

// RenumberTasks assigns priority_order sequentially over orderedIDs,
// starting at startFrom, in one transaction.
func (s *Store) RenumberTasks(orderedIDs []string, startFrom int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	now := formatTime(time.Now().UTC())
	for i, id := range orderedIDs {
		if _, err := tx.Exec(
			`UPDATE tasks SET priority_order = ?, updated_at = ? WHERE id = ?`,
			startFrom+i, now, id,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store: renumber tasks: %w", err)
		}
	}
	return tx.Commit()
}

// ─── Attachments ─────────────────────────────────────────────────────────────

// AddAttachmentParams holds input for creating an attachment. Exactly one
// of TaskID, CampaignID must be set.
type AddAttachmentParams struct {
	TaskID     string
	CampaignID string
	Kind       string
	Content    string
	Subtype    string
	TestStatus string
}

// UpdateAttachmentParams holds partial update fields for an attachment.
type UpdateAttachmentParams struct {
	Content    *string
	IsMet      *bool
	Subtype    *string
	TestStatus *string
	OrderIndex *int
}

// AttachmentFilter narrows ListAttachments. Empty fields match everything.
type AttachmentFilter struct {
	TaskID     string
	CampaignID string
	Kind       string
	Subtype    string
}

// AddAttachment inserts an attachment at the end of its target's list for
// that kind.
func (s *Store) AddAttachment(p AddAttachmentParams) (*domain.Attachment, error) {
	return addAttachment(s.db, p)
}

func addAttachment(q dbtx, p AddAttachmentParams) (*domain.Attachment, error) {
	var next int
	err := q.QueryRow(
		`SELECT COALESCE(MAX(order_index), 0) + 1 FROM attachments
		 WHERE kind = ? AND ifnull(task_id, '') = ? AND ifnull(campaign_id, '') = ?`,
		p.Kind, p.TaskID, p.CampaignID,
	).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("store: next order index: %w", err)
	}

	a := domain.Attachment{
		ID:         uuid.NewString(),
		TaskID:     p.TaskID,
		CampaignID: p.CampaignID,
		Kind:       p.Kind,
		Content:    p.Content,
		Subtype:    p.Subtype,
		TestStatus: p.TestStatus,
		OrderIndex: next,
		CreatedAt:  time.Now().UTC(),
	}

	_, err = q.Exec(
		`INSERT INTO attachments (id, task_id, campaign_id, kind, content, subtype, test_status, order_index, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, nullableString(a.TaskID), nullableString(a.CampaignID), a.Kind,
		a.Content, a.Subtype, a.TestStatus, a.OrderIndex,
		formatTime(a.CreatedAt), formatTime(a.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert attachment: %w", err)
	}
	return &a, nil
}

// GetAttachment retrieves an attachment by ID.
func (s *Store) GetAttachment(id string) (*domain.Attachment, error) {
	row := s.db.QueryRow(attachmentSelect+` WHERE id = ?`, id)
	return scanAttachment(row)
}

// ListAttachments returns attachments in list order.
func (s *Store) ListAttachments(f AttachmentFilter) ([]domain.Attachment, error) {
	query := attachmentSelect + ` WHERE 1=1`
	args := []any{}
	if f.TaskID != "" {
		query += " AND task_id = ?"
		args = append(args, f.TaskID)
	}
	if f.CampaignID != "" {
		query += " AND campaign_id = ?"
		args = append(args, f.CampaignID)
	}
	if f.Kind != "" {
		query += " AND kind = ?"
		args = append(args, f.Kind)
	}
	if f.Subtype != "" {
		query += " AND subtype = ?"
		args = append(args, f.Subtype)
	}
	query += " ORDER BY order_index, created_at"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Attachment
	for rows.Next() {
		a, err := scanAttachmentRows(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *a)
	}
	return results, rows.Err()
}

// UpdateAttachment applies the non-nil fields and returns the refreshed
// attachment.
func (s *Store) UpdateAttachment(id string, p UpdateAttachmentParams) (*domain.Attachment, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now().UTC())}

	if p.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *p.Content)
	}
	if p.IsMet != nil {
		sets = append(sets, "is_met = ?")
		args = append(args, boolToInt(*p.IsMet))
	}
	if p.Subtype != nil {
		sets = append(sets, "subtype = ?")
		args = append(args, *p.Subtype)
	}
	if p.TestStatus != nil {
		sets = append(sets, "test_status = ?")
		args = append(args, *p.TestStatus)
	}
	if p.OrderIndex != nil {
		sets = append(sets, "order_index = ?")
		args = append(args, *p.OrderIndex)
	}

	args = append(args, id)
	res, err := s.db.Exec(`UPDATE attachments SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: update attachment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetAttachment(id)
}

// DeleteAttachment removes an attachment.
func (s *Store) DeleteAttachment(id string) error {
	res, err := s.db.Exec(`DELETE FROM attachments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete attachment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReorderAttachments assigns order_index by position for the given IDs,
// which must all belong to the same target and kind. An ID that matches
// nothing fails the whole reorder.
func (s *Store) ReorderAttachments(f AttachmentFilter, ids []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	now := formatTime(time.Now().UTC())
	for i, id := range ids {
		res, err := tx.Exec(
			`UPDATE attachments SET order_index = ?, updated_at = ?
			 WHERE id = ? AND kind = ? AND ifnull(task_id, '') = ? AND ifnull(campaign_id, '') = ?`,
			i+1, now, id, f.Kind, f.TaskID, f.CampaignID,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store: reorder attachments: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			_ = tx.Rollback()
			return ErrNotFound
		}
	}
	return tx.Commit()
}

// ─── Batch creation ──────────────────────────────────────────────────────────

// BatchResearch is a research item created alongside a campaign or task.
type BatchResearch struct {
	Content string
	Type    string
}

// BatchTask is one task in an atomic campaign-with-tasks creation. DependsOn
// holds temp_ids of other tasks in the same batch.
type BatchTask struct {
	TempID             string
	Title              string
	Description        string
	Priority           string
	Type               string
	Tags               []string
	DependsOn          []string
	AcceptanceCriteria []string
	Research           []BatchResearch
}

// CreateCampaignWithTasks creates a campaign, its tasks in the given
// creation order, their dependency edges, and any attachments, all in one
// transaction. Nothing persists if any step fails.
func (s *Store) CreateCampaignWithTasks(
	cp CreateCampaignParams,
	tasks []BatchTask,
	research []BatchResearch,
) (*domain.Campaign, []domain.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	campaign, err := createCampaign(tx, cp)
	if err != nil {
		return nil, nil, err
	}

	for _, r := range research {
		if _, err := addAttachment(tx, AddAttachmentParams{
			CampaignID: campaign.ID,
			Kind:       domain.KindResearch,
			Content:    r.Content,
			Subtype:    r.Type,
		}); err != nil {
			return nil, nil, err
		}
	}

	idByTemp := make(map[string]string, len(tasks))
	created := make([]domain.Task, 0, len(tasks))
	for _, bt := range tasks {
		deps := make([]string, 0, len(bt.DependsOn))
		for _, tempID := range bt.DependsOn {
			id, ok := idByTemp[tempID]
			if !ok {
				return nil, nil, fmt.Errorf("store: unresolved temp_id %q", tempID)
			}
			deps = append(deps, id)
		}

		task, err := createTask(tx, CreateTaskParams{
			CampaignID:   campaign.ID,
			Title:        bt.Title,
			Description:  bt.Description,
			Priority:     bt.Priority,
			Type:         bt.Type,
			Tags:         bt.Tags,
			Dependencies: deps,
		})
		if err != nil {
			return nil, nil, err
		}
		idByTemp[bt.TempID] = task.ID

		for _, content := range bt.AcceptanceCriteria {
			if _, err := addAttachment(tx, AddAttachmentParams{
				TaskID:  task.ID,
				Kind:    domain.KindAcceptanceCriteria,
				Content: content,
			}); err != nil {
				return nil, nil, err
			}
		}
		for _, r := range bt.Research {
			if _, err := addAttachment(tx, AddAttachmentParams{
				TaskID:  task.ID,
				Kind:    domain.KindResearch,
				Content: r.Content,
				Subtype: r.Type,
			}); err != nil {
				return nil, nil, err
			}
		}
		created = append(created, *task)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return campaign, created, nil
}

// ─── Scanning helpers ────────────────────────────────────────────────────────

const taskSelect = `
	SELECT t.id, t.campaign_id, t.title, t.description, t.priority, t.status,
	       t.category, t.type, t.tags, t.failure_reason, t.priority_order,
	       t.created_at, t.updated_at, t.completed_at
	FROM tasks t`

const attachmentSelect = `
	SELECT id, task_id, campaign_id, kind, content, subtype, is_met,
	       test_status, order_index, created_at
	FROM attachments`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row *sql.Row) (*domain.Campaign, error) {
	c, err := scanCampaignFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func scanCampaignRows(rows *sql.Rows) (*domain.Campaign, error) {
	return scanCampaignFrom(rows)
}

func scanCampaignFrom(row rowScanner) (*domain.Campaign, error) {
	var c domain.Campaign
	var meta, createdAt, updatedAt string
	var completedAt sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Status, &c.Priority,
		&meta, &createdAt, &updatedAt, &completedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(meta), &c.Metadata); err != nil {
		c.Metadata = map[string]any{}
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	c.CompletedAt = parseTimePtr(completedAt)
	return &c, nil
}

func scanTask(row *sql.Row) (*domain.Task, error) {
	t, err := scanTaskFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func scanTaskFrom(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var tags, createdAt, updatedAt string
	var category, failureReason, completedAt sql.NullString
	var priorityOrder sql.NullInt64
	if err := row.Scan(&t.ID, &t.CampaignID, &t.Title, &t.Description, &t.Priority,
		&t.Status, &category, &t.Type, &tags, &failureReason, &priorityOrder,
		&createdAt, &updatedAt, &completedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		t.Tags = []string{}
	}
	if category.Valid {
		t.Category = &category.String
	}
	if failureReason.Valid {
		t.FailureReason = &failureReason.String
	}
	if priorityOrder.Valid {
		order := int(priorityOrder.Int64)
		t.PriorityOrder = &order
	}
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	t.CompletedAt = parseTimePtr(completedAt)
	return &t, nil
}

func scanAttachment(row *sql.Row) (*domain.Attachment, error) {
	a, err := scanAttachmentFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func scanAttachmentRows(rows *sql.Rows) (*domain.Attachment, error) {
	return scanAttachmentFrom(rows)
}

func scanAttachmentFrom(row rowScanner) (*domain.Attachment, error) {
	var a domain.Attachment
	var taskID, campaignID sql.NullString
	var isMet int
	var createdAt string
	if err := row.Scan(&a.ID, &taskID, &campaignID, &a.Kind, &a.Content,
		&a.Subtype, &isMet, &a.TestStatus, &a.OrderIndex, &createdAt); err != nil {
		return nil, err
	}
	a.TaskID = taskID.String
	a.CampaignID = campaignID.String
	a.IsMet = isMet != 0
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

// queryTasks runs a task query and loads dependency IDs for each result.
func (s *Store) queryTasks(query string, args ...any) ([]domain.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Task
	for rows.Next() {
		t, err := scanTaskFrom(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		deps, err := s.taskDependencyIDs(results[i].ID)
		if err != nil {
			return nil, err
		}
		results[i].Dependencies = deps
	}
	return results, nil
}

func (s *Store) taskDependencyIDs(taskID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT depends_on FROM task_dependencies WHERE task_id = ? ORDER BY depends_on`, taskID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	deps := []string{}
	for rows.Next() {
		var dep string
		if err := rows.Scan(&dep); err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, rows.Err()
}

// ─── Small helpers ───────────────────────────────────────────────────────────

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
