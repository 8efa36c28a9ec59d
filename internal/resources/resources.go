// Package resources implements MCP resource handlers for the writing
// memory server.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (memory://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inkwell-mcp/inkwell/internal/engine"
	"github.com/inkwell-mcp/inkwell/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handler manages the memory:// resource endpoints.
type Handler struct {
	store   *memory.Store
	state   *memory.ProjectState
	session *engine.Session
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store *memory.Store, state *memory.ProjectState, session *engine.Session) *Handler {
	return &Handler{store: store, state: state, session: session}
}

// ProjectsResource returns the MCP resource definition for the project list.
func (h *Handler) ProjectsResource() mcp.Resource {
	return mcp.NewResource(
		"memory://projects",
		"Writing Projects",
		mcp.WithResourceDescription("All writing projects, most recently updated first"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleProjects returns every project as JSON.
func (h *Handler) HandleProjects(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projects, err := h.store.ListProjects()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	if projects == nil {
		projects = []memory.Project{}
	}

	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling projects: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// ActiveProjectResource returns the MCP resource definition for the active
// project overview.
func (h *Handler) ActiveProjectResource() mcp.Resource {
	return mcp.NewResource(
		"memory://project/active",
		"Active Project",
		mcp.WithResourceDescription("Stats overview of the active writing project"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleActiveProject returns the active project's stats report as JSON.
func (h *Handler) HandleActiveProject(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projectID := h.state.Current()
	if projectID == 0 {
		return errorResource(req.Params.URI, "no active project; create one with project_new or select one with project_switch"), nil
	}

	stats, err := h.store.ProjectStats(projectID)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling project stats: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// CurrentContextResource returns the MCP resource definition for the
// engine's current context selection.
func (h *Handler) CurrentContextResource() mcp.Resource {
	return mcp.NewResource(
		"memory://context/current",
		"Current Writing Context",
		mcp.WithResourceDescription("The characters, plots, and world elements selected for the current writing context"),
		mcp.WithMIMEType("text/markdown"),
	)
}

// HandleCurrentContext returns the formatted context plus its token budget.
func (h *Handler) HandleCurrentContext(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.state.Current() == 0 {
		return errorResource(req.Params.URI, "no active project; create one with project_new or select one with project_switch"), nil
	}

	info := h.session.Describe()

	var b strings.Builder
	b.WriteString(h.session.Format())
	b.WriteString("\n")
	fmt.Fprintf(&b, "Budget: ~%d/%d working tokens used, ~%d remaining (max %d). Auto-refresh: %v.",
		info.EstimatedTokens, info.WorkingTokens, info.RemainingTokens, info.MaxTokens, info.AutoRefresh)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     b.String(),
		},
	}, nil
}
