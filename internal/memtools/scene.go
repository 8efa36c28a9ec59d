package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/inkwell-mcp/inkwell/internal/memory"
)

// SceneAddTool handles the scene_add MCP tool.
type SceneAddTool struct {
	store *memory.Store
	state *memory.ProjectState
}

// NewSceneAddTool creates a SceneAddTool.
func NewSceneAddTool(store *memory.Store, state *memory.ProjectState) *SceneAddTool {
	return &SceneAddTool{store: store, state: state}
}

// Definition returns the MCP tool definition for scene_add.
func (t *SceneAddTool) Definition() mcp.Tool {
	return mcp.NewTool("scene_add",
		mcp.WithDescription(
			"Add a manuscript scene to the active project, identified by chapter and scene number. "+
				"Scenes track draft progress; they are not part of the search index.",
		),
		mcp.WithNumber("chapter",
			mcp.Required(),
			mcp.Description("Chapter number the scene belongs to"),
		),
		mcp.WithNumber("scene",
			mcp.Required(),
			mcp.Description("Scene number within the chapter"),
		),
		mcp.WithString("title",
			mcp.Description("Scene title"),
		),
		mcp.WithString("summary",
			mcp.Description("One-line summary of what happens"),
		),
		mcp.WithString("content",
			mcp.Description("Draft text of the scene"),
		),
		mcp.WithString("status",
			mcp.Description("planned, draft, or complete (default: planned)"),
		),
		mcp.WithNumber("word_count",
			mcp.Description("Word count (default: counted from content)"),
		),
		mcp.WithNumber("project_id",
			mcp.Description("Project ID (defaults to the active project)"),
		),
	)
}

// Handle processes the scene_add tool call.
func (t *SceneAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chapter := intArg(req, "chapter", 0)
	scene := intArg(req, "scene", 0)
	if chapter <= 0 || scene <= 0 {
		return mcp.NewToolResultError("'chapter' and 'scene' must be positive numbers"), nil
	}

	projectID := targetProject(req, t.state)
	if projectID == 0 {
		return noActiveProject(), nil
	}

	content := req.GetString("content", "")
	wordCount := intArg(req, "word_count", 0)
	if wordCount == 0 && content != "" {
		wordCount = len(strings.Fields(content))
	}

	id, err := t.store.AddScene(projectID, memory.SceneParams{
		ChapterNumber: chapter,
		SceneNumber:   scene,
		Title:         req.GetString("title", ""),
		Summary:       req.GetString("summary", ""),
		Content:       content,
		WordCount:     wordCount,
		Status:        req.GetString("status", ""),
	})
	if err != nil {
		return toolError("add scene", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Added scene %d.%d (ID: %d) to project %d. Words: %d.", chapter, scene, id, projectID, wordCount)), nil
}
