package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/inkwell-mcp/inkwell/internal/engine"
	"github.com/inkwell-mcp/inkwell/internal/memory"
)

// ContextRefreshTool handles the context_refresh MCP tool.
type ContextRefreshTool struct {
	store   *memory.Store
	state   *memory.ProjectState
	session *engine.Session
}

// NewContextRefreshTool creates a ContextRefreshTool.
func NewContextRefreshTool(store *memory.Store, state *memory.ProjectState, session *engine.Session) *ContextRefreshTool {
	return &ContextRefreshTool{store: store, state: state, session: session}
}

// Definition returns the MCP tool definition for context_refresh.
func (t *ContextRefreshTool) Definition() mcp.Tool {
	return mcp.NewTool("context_refresh",
		mcp.WithDescription(
			"Recompute the writing context from an excerpt of the text you are working on. "+
				"The most relevant characters, plots, and world elements are selected into the token budget. "+
				"Pass an empty excerpt to clear the context.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Excerpt of the manuscript you are currently writing"),
		),
	)
}

// Handle processes the context_refresh tool call.
func (t *ContextRefreshTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := t.state.Current()
	if projectID == 0 {
		return noActiveProject(), nil
	}

	if !t.session.AutoRefresh() {
		return mcp.NewToolResultText("Automatic context is disabled. Enable it with context_auto first."), nil
	}

	if err := t.session.Refresh(t.store, projectID, req.GetString("text", "")); err != nil {
		return toolError("refresh context", err), nil
	}

	info := t.session.Describe()
	if info.Items == 0 {
		return mcp.NewToolResultText("Context refreshed: no relevant items found for this excerpt."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Context refreshed: %d items, ~%d of %d working tokens used.",
		info.Items, info.EstimatedTokens, info.WorkingTokens)), nil
}

// ─── ContextShowTool ─────────────────────────────────────────────────────────

// ContextShowTool handles the context_show MCP tool.
type ContextShowTool struct {
	state   *memory.ProjectState
	session *engine.Session
}

// NewContextShowTool creates a ContextShowTool.
func NewContextShowTool(state *memory.ProjectState, session *engine.Session) *ContextShowTool {
	return &ContextShowTool{state: state, session: session}
}

// Definition returns the MCP tool definition for context_show.
func (t *ContextShowTool) Definition() mcp.Tool {
	return mcp.NewTool("context_show",
		mcp.WithDescription(
			"Display the current writing context and its token usage.",
		),
	)
}

// Handle processes the context_show tool call.
func (t *ContextShowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.state.Current() == 0 {
		return noActiveProject(), nil
	}

	info := t.session.Describe()

	var b strings.Builder
	b.WriteString(t.session.Format())
	b.WriteString("\n")
	fmt.Fprintf(&b, "Budget: ~%d/%d working tokens used, ~%d remaining (max %d). Auto-refresh: %v.",
		info.EstimatedTokens, info.WorkingTokens, info.RemainingTokens, info.MaxTokens, info.AutoRefresh)

	return mcp.NewToolResultText(b.String()), nil
}

// ─── ContextAutoTool ─────────────────────────────────────────────────────────

// ContextAutoTool handles the context_auto MCP tool.
type ContextAutoTool struct {
	session *engine.Session
}

// NewContextAutoTool creates a ContextAutoTool.
func NewContextAutoTool(session *engine.Session) *ContextAutoTool {
	return &ContextAutoTool{session: session}
}

// Definition returns the MCP tool definition for context_auto.
func (t *ContextAutoTool) Definition() mcp.Tool {
	return mcp.NewTool("context_auto",
		mcp.WithDescription(
			"Enable or disable automatic context refreshing.",
		),
		mcp.WithBoolean("enabled",
			mcp.Required(),
			mcp.Description("true to enable, false to disable"),
		),
	)
}

// Handle processes the context_auto tool call.
func (t *ContextAutoTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	enabled := boolArg(req, "enabled", true)
	t.session.SetAutoRefresh(enabled)

	status := "enabled"
	if !enabled {
		status = "disabled"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Automatic context refresh %s.", status)), nil
}
