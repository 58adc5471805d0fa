// Package server wires the store, engines, and tool surface into an MCP
// server instance. This is the composition root: concrete implementations
// are created here and injected downward, and no business logic lives here.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/taskcrusade/crusader/internal/config"
	"github.com/taskcrusade/crusader/internal/engine"
	"github.com/taskcrusade/crusader/internal/hints"
	"github.com/taskcrusade/crusader/internal/store"
	"github.com/taskcrusade/crusader/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with every tool registered. The returned
// cleanup function closes the store and flushes the logger; it is always
// non-nil and must be called on shutdown.
func New(cfg config.Settings, log *zap.Logger) (*server.MCPServer, func(), error) {
	st, err := store.New(store.Config{Path: cfg.DBPath})
	if err != nil {
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			log.Warn("store close failed", zap.Error(err))
		}
		_ = log.Sync()
	}

	gen := hints.New(cfg.Hints)
	deps := tools.Deps{
		Tasks:     engine.NewTaskService(st, gen, log),
		Campaigns: engine.NewCampaignService(st, gen, log),
	}

	s := server.NewMCPServer(
		"crusader",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	registered := tools.All(deps)
	for _, t := range registered {
		s.AddTool(t.Def, server.ToolHandlerFunc(t.Handle))
	}
	log.Info("server ready",
		zap.Int("tools", len(registered)),
		zap.String("db_path", cfg.DBPath),
		zap.Bool("hints", cfg.Hints))

	return s, cleanup, nil
}

func noop() {}

// serverInstructions is the usage guide sent to connecting agents.
func serverInstructions() string {
	return `Crusader is a campaign/task tracker for AI-driven development work.

Campaigns group related tasks. Tasks carry priorities, statuses, dependency
edges, and four kinds of attachments: acceptance criteria, research items,
implementation notes, and testing steps. A task is actionable when it is
pending or in-progress and every dependency is done.

## Core workflow

1. Planning
   - campaign_create to open a campaign, or campaign_create_with_tasks to
     create the campaign and its whole task graph atomically (tasks
     reference each other by temp_id; cycles are rejected up front).
   - task_create for individual tasks; attach acceptance criteria in the
     same call or with task_acceptance_criteria_add.

2. Execution (repeat until done)
   - campaign_get_next_actionable_task(campaign_id) to pick work.
   - task_update(task_id, status="in-progress") to claim it.
   - Implement, recording task_implementation_notes_add as you go.
   - task_acceptance_criteria_mark_met(criteria_id) for each criterion.
   - task_complete(task_id). Completion is refused while criteria are
     unmet; task_complete_with_workflow also checks dependencies first.

3. Monitoring
   - campaign_get_progress_summary for cheap polling.
   - campaign_overview for the full picture in one call.
   - campaign_validate_readiness before starting execution.

## Conventions

- Every response is YAML: {success: true, data} or
  {success: false, error, suggestions}.
- Responses may include hints and a next_action tool call; following them
  keeps the workflow moving.
- IDs are UUID strings. Extract them from data.id after create calls.
- Use campaign_get_all_actionable_tasks for parallel execution across
  multiple workers; it warns when tasks are already claimed.`
}
