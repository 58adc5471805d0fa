package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/taskcrusade/crusader/internal/engine"
)

// noteTools returns the implementation-note tool set. Notes record progress
// while working a task; adding one nudges toward the next unmet criterion.
func noteTools(svc *engine.TaskService) []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("task_implementation_notes_add",
				mcp.WithDescription("Record an implementation note on a task: what was done, decisions "+
					"taken, problems hit."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("content", mcp.Required(), mcp.Description("Note content")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				content := strArg(req, "content", "note")
				if content == "" {
					return missingArg("content")
				}
				return respond(svc.AddImplementationNote(id, content))
			},
		},
		{
			Def: mcp.NewTool("task_implementation_notes_list",
				mcp.WithDescription("List a task's implementation notes in order."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				return respond(svc.ListImplementationNotes(id))
			},
		},
		{
			Def: mcp.NewTool("task_implementation_notes_show",
				mcp.WithDescription("Get a single implementation note."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("note_id", mcp.Required(), mcp.Description("Note ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				nid := req.GetString("note_id", "")
				if nid == "" {
					return missingArg("note_id")
				}
				return respond(svc.GetImplementationNote(id, nid))
			},
		},
		{
			Def: mcp.NewTool("task_implementation_notes_update",
				mcp.WithDescription("Rewrite an implementation note's content."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("note_id", mcp.Required(), mcp.Description("Note ID")),
				mcp.WithString("content", mcp.Required(), mcp.Description("New content")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				nid := req.GetString("note_id", "")
				if nid == "" {
					return missingArg("note_id")
				}
				content := strArg(req, "content", "note")
				if content == "" {
					return missingArg("content")
				}
				return respond(svc.UpdateImplementationNote(id, nid, content))
			},
		},
		{
			Def: mcp.NewTool("task_implementation_notes_delete",
				mcp.WithDescription("Delete an implementation note from a task."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("note_id", mcp.Required(), mcp.Description("Note ID")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				nid := req.GetString("note_id", "")
				if nid == "" {
					return missingArg("note_id")
				}
				return respond(svc.DeleteImplementationNote(id, nid))
			},
		},
		{
			Def: mcp.NewTool("task_implementation_notes_reorder",
				mcp.WithDescription("Move an implementation note to a new position in the list."),
				mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
				mcp.WithString("note_id", mcp.Required(), mcp.Description("Note ID")),
				mcp.WithNumber("new_order", mcp.Required(), mcp.Description("New order index (1-based)")),
			),
			Handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id := req.GetString("task_id", "")
				if id == "" {
					return missingArg("task_id")
				}
				nid := req.GetString("note_id", "")
				if nid == "" {
					return missingArg("note_id")
				}
				return respond(svc.ReorderImplementationNotes(id, nid, intArg(req, "new_order", 0)))
			},
		},
	}
}
