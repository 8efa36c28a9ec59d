package memtools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/inkwell-mcp/inkwell/internal/memory"
)

// MemoryAddTool handles the memory_add MCP tool.
type MemoryAddTool struct {
	store *memory.Store
	state *memory.ProjectState
}

// NewMemoryAddTool creates a MemoryAddTool.
func NewMemoryAddTool(store *memory.Store, state *memory.ProjectState) *MemoryAddTool {
	return &MemoryAddTool{store: store, state: state}
}

// Definition returns the MCP tool definition for memory_add.
func (t *MemoryAddTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_add",
		mcp.WithDescription(
			"Add a memory item to the active project: a character, a plot line, or a world-building element. "+
				"Items are indexed for full-text search and feed the writing context.",
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Kind of item: character, plot, world_building"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the character/element, or title of the plot line"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Main description of the item"),
		),
		mcp.WithNumber("project_id",
			mcp.Description("Project ID (defaults to the active project)"),
		),
		mcp.WithString("importance",
			mcp.Description("Characters: main, supporting, or minor (default: minor)"),
		),
		mcp.WithString("personality",
			mcp.Description("Characters: personality traits"),
		),
		mcp.WithString("backstory",
			mcp.Description("Characters: background and history"),
		),
		mcp.WithString("appearance",
			mcp.Description("Characters: physical appearance"),
		),
		mcp.WithString("relationships",
			mcp.Description(`Characters: JSON object of name to relation, e.g. {"Kael": "rival"}`),
		),
		mcp.WithString("plot_type",
			mcp.Description("Plots: main, subplot, or arc (default: main)"),
		),
		mcp.WithString("status",
			mcp.Description("Plots: planned, active, or complete (default: planned)"),
		),
		mcp.WithString("category",
			mcp.Description("World building: location, culture, history, rules, or technology (default: location)"),
		),
		mcp.WithString("details",
			mcp.Description("World building: extended details"),
		),
	)
}

// Handle processes the memory_add tool call.
func (t *MemoryAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contentType := strings.ToLower(req.GetString("type", ""))
	name := req.GetString("name", "")
	content := req.GetString("content", "")

	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	projectID := targetProject(req, t.state)
	if projectID == 0 {
		return noActiveProject(), nil
	}

	switch contentType {
	case memory.ContentTypeCharacter:
		relationships, err := parseRelationships(req.GetString("relationships", ""))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid 'relationships': %v", err)), nil
		}
		id, err := t.store.AddCharacter(projectID, name, memory.CharacterParams{
			Description:   content,
			Personality:   req.GetString("personality", ""),
			Backstory:     req.GetString("backstory", ""),
			Appearance:    req.GetString("appearance", ""),
			Relationships: relationships,
			Importance:    req.GetString("importance", ""),
		})
		if err != nil {
			return toolError("add character", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Added character %q (ID: %d) to project %d.", name, id, projectID)), nil

	case memory.ContentTypePlot:
		id, err := t.store.AddPlot(projectID, name, memory.PlotParams{
			Description: content,
			PlotType:    req.GetString("plot_type", ""),
			Status:      req.GetString("status", ""),
		})
		if err != nil {
			return toolError("add plot", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Added plot %q (ID: %d) to project %d.", name, id, projectID)), nil

	case memory.ContentTypeWorld:
		id, err := t.store.AddWorldElement(projectID, name, memory.WorldElementParams{
			Category:    req.GetString("category", ""),
			Description: content,
			Details:     req.GetString("details", ""),
		})
		if err != nil {
			return toolError("add world element", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Added world element %q (ID: %d) to project %d.", name, id, projectID)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf(
			"unsupported type %q. Use: character, plot, world_building", contentType)), nil
	}
}

// parseRelationships decodes the optional relationships argument. An empty
// string means no relationships.
func parseRelationships(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	var rels map[string]string
	if err := json.Unmarshal([]byte(raw), &rels); err != nil {
		return nil, err
	}
	return rels, nil
}
