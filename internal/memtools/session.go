package memtools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/inkwell-mcp/inkwell/internal/memory"
)

// SessionLogTool handles the session_log MCP tool.
type SessionLogTool struct {
	store *memory.Store
	state *memory.ProjectState
}

// NewSessionLogTool creates a SessionLogTool.
func NewSessionLogTool(store *memory.Store, state *memory.ProjectState) *SessionLogTool {
	return &SessionLogTool{store: store, state: state}
}

// Definition returns the MCP tool definition for session_log.
func (t *SessionLogTool) Definition() mcp.Tool {
	return mcp.NewTool("session_log",
		mcp.WithDescription(
			"Log a writing session for the active project. Sessions feed the analytics overview.",
		),
		mcp.WithNumber("words",
			mcp.Required(),
			mcp.Description("Words written this session"),
		),
		mcp.WithNumber("minutes",
			mcp.Description("Session length in minutes"),
		),
		mcp.WithString("date",
			mcp.Description("Session date as YYYY-MM-DD (default: today)"),
		),
		mcp.WithNumber("project_id",
			mcp.Description("Project ID (defaults to the active project)"),
		),
	)
}

// Handle processes the session_log tool call.
func (t *SessionLogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	words := intArg(req, "words", -1)
	if words < 0 {
		return mcp.NewToolResultError("'words' is required"), nil
	}

	projectID := targetProject(req, t.state)
	if projectID == 0 {
		return noActiveProject(), nil
	}

	minutes := intArg(req, "minutes", 0)
	date := req.GetString("date", "")

	id, err := t.store.RecordWritingSession(projectID, words, minutes, date)
	if err != nil {
		return toolError("log writing session", err), nil
	}

	msg := fmt.Sprintf("Logged writing session (ID: %d): %d words", id, words)
	if minutes > 0 {
		msg += fmt.Sprintf(" in %d minutes", minutes)
	}
	return mcp.NewToolResultText(msg + "."), nil
}
