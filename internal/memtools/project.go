package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/inkwell-mcp/inkwell/internal/memory"
)

// ProjectNewTool handles the project_new MCP tool.
type ProjectNewTool struct {
	store *memory.Store
	state *memory.ProjectState
}

// NewProjectNewTool creates a ProjectNewTool.
func NewProjectNewTool(store *memory.Store, state *memory.ProjectState) *ProjectNewTool {
	return &ProjectNewTool{store: store, state: state}
}

// Definition returns the MCP tool definition for project_new.
func (t *ProjectNewTool) Definition() mcp.Tool {
	return mcp.NewTool("project_new",
		mcp.WithDescription(
			"Create a new writing project and make it the active one. "+
				"Every character, plot line, and world element you add afterwards belongs to the active project.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name (must be unique)"),
		),
		mcp.WithString("description",
			mcp.Description("What the project is about"),
		),
		mcp.WithString("genre",
			mcp.Description("Genre, e.g. fantasy, mystery, literary fiction"),
		),
		mcp.WithNumber("target_words",
			mcp.Description("Word count goal for the finished draft"),
		),
	)
}

// Handle processes the project_new tool call.
func (t *ProjectNewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	id, err := t.store.CreateProject(name, memory.ProjectParams{
		Description: req.GetString("description", ""),
		Genre:       req.GetString("genre", ""),
		TargetWords: intArg(req, "target_words", 0),
	})
	if err != nil {
		return toolError("create project", err), nil
	}

	if err := t.state.Set(id); err != nil {
		return toolError("activate project", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created project %q (ID: %d) and set it as the current project.", name, id)), nil
}

// ─── ProjectSwitchTool ───────────────────────────────────────────────────────

// ProjectSwitchTool handles the project_switch MCP tool.
type ProjectSwitchTool struct {
	store *memory.Store
	state *memory.ProjectState
}

// NewProjectSwitchTool creates a ProjectSwitchTool.
func NewProjectSwitchTool(store *memory.Store, state *memory.ProjectState) *ProjectSwitchTool {
	return &ProjectSwitchTool{store: store, state: state}
}

// Definition returns the MCP tool definition for project_switch.
func (t *ProjectSwitchTool) Definition() mcp.Tool {
	return mcp.NewTool("project_switch",
		mcp.WithDescription(
			"Switch the active project by name. Memory tools operate on the active project unless told otherwise.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the project to switch to"),
		),
	)
}

// Handle processes the project_switch tool call.
func (t *ProjectSwitchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	project, err := t.store.GetProjectByName(name)
	if err != nil {
		return toolError("look up project", err), nil
	}
	if project == nil {
		projects, err := t.store.ListProjects()
		if err != nil {
			return toolError("list projects", err), nil
		}
		names := make([]string, len(projects))
		for i, p := range projects {
			names[i] = p.Name
		}
		return mcp.NewToolResultError(fmt.Sprintf(
			"project %q not found. Available projects: %s", name, strings.Join(names, ", "))), nil
	}

	if err := t.state.Set(project.ID); err != nil {
		return toolError("activate project", err), nil
	}

	stats, err := t.store.ProjectStats(project.ID)
	if err != nil {
		return toolError("get project stats", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Switched to project %q (ID: %d).\nCharacters: %d, Plots: %d, World Elements: %d",
		name, project.ID, stats.Characters, stats.Plots, stats.WorldElements)), nil
}

// ─── ProjectListTool ─────────────────────────────────────────────────────────

// ProjectListTool handles the project_list MCP tool.
type ProjectListTool struct {
	store *memory.Store
	state *memory.ProjectState
}

// NewProjectListTool creates a ProjectListTool.
func NewProjectListTool(store *memory.Store, state *memory.ProjectState) *ProjectListTool {
	return &ProjectListTool{store: store, state: state}
}

// Definition returns the MCP tool definition for project_list.
func (t *ProjectListTool) Definition() mcp.Tool {
	return mcp.NewTool("project_list",
		mcp.WithDescription("List all writing projects. The active project is marked with an arrow."),
	)
}

// Handle processes the project_list tool call.
func (t *ProjectListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := t.store.ListProjects()
	if err != nil {
		return toolError("list projects", err), nil
	}
	if len(projects) == 0 {
		return mcp.NewToolResultText("No projects found. Create your first project with project_new."), nil
	}

	current := t.state.Current()

	var b strings.Builder
	fmt.Fprintf(&b, "Projects (%d):\n\n", len(projects))
	for _, p := range projects {
		marker := "  "
		if p.ID == current {
			marker = "→ "
		}
		fmt.Fprintf(&b, "%s#%d %s", marker, p.ID, p.Name)
		if p.Genre != "" {
			fmt.Fprintf(&b, " [%s]", p.Genre)
		}
		b.WriteString("\n")
		if p.Description != "" {
			fmt.Fprintf(&b, "    %s\n", memory.Truncate(p.Description, 120))
		}
		fmt.Fprintf(&b, "    words: %d/%d\n", p.CurrentWords, p.TargetWords)
	}

	return mcp.NewToolResultText(b.String()), nil
}

// ─── ProjectStatsTool ────────────────────────────────────────────────────────

// ProjectStatsTool handles the project_stats MCP tool.
type ProjectStatsTool struct {
	store *memory.Store
	state *memory.ProjectState
}

// NewProjectStatsTool creates a ProjectStatsTool.
func NewProjectStatsTool(store *memory.Store, state *memory.ProjectState) *ProjectStatsTool {
	return &ProjectStatsTool{store: store, state: state}
}

// Definition returns the MCP tool definition for project_stats.
func (t *ProjectStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("project_stats",
		mcp.WithDescription(
			"Show a project's statistics: entity counts, scene completion, and word count progress.",
		),
		mcp.WithNumber("project_id",
			mcp.Description("Project ID (defaults to the active project)"),
		),
	)
}

// Handle processes the project_stats tool call.
func (t *ProjectStatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := targetProject(req, t.state)
	if projectID == 0 {
		return noActiveProject(), nil
	}

	stats, err := t.store.ProjectStats(projectID)
	if err != nil {
		return toolError("get project stats", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", stats.Project.Name)
	if stats.Project.Genre != "" {
		fmt.Fprintf(&b, "- **Genre**: %s\n", stats.Project.Genre)
	}
	fmt.Fprintf(&b, "- **Characters**: %d\n", stats.Characters)
	fmt.Fprintf(&b, "- **Plots**: %d\n", stats.Plots)
	fmt.Fprintf(&b, "- **World Elements**: %d\n", stats.WorldElements)
	fmt.Fprintf(&b, "- **Scenes**: %d (%d complete, %.0f%%)\n",
		stats.Scenes.Total, stats.Scenes.Completed, stats.Scenes.CompletionRate)
	fmt.Fprintf(&b, "- **Words**: %d/%d (%.0f%%)\n",
		stats.Words.Current, stats.Words.Target, stats.Words.Progress)

	return mcp.NewToolResultText(b.String()), nil
}
