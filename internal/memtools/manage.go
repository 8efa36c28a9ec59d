package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/inkwell-mcp/inkwell/internal/memory"
)

// MemoryUpdateTool handles the memory_update MCP tool.
type MemoryUpdateTool struct {
	store *memory.Store
}

// NewMemoryUpdateTool creates a MemoryUpdateTool.
func NewMemoryUpdateTool(store *memory.Store) *MemoryUpdateTool {
	return &MemoryUpdateTool{store: store}
}

// Definition returns the MCP tool definition for memory_update.
func (t *MemoryUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_update",
		mcp.WithDescription(
			"Update fields of an existing memory item. Only the fields you pass change; everything else is kept.",
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Kind of item: character, plot, world_building, scene"),
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("ID of the item to update"),
		),
		mcp.WithString("name",
			mcp.Description("New name (characters/world elements) or title (plots/scenes)"),
		),
		mcp.WithString("content",
			mcp.Description("New description (characters/plots/world elements) or scene text"),
		),
		mcp.WithString("importance",
			mcp.Description("Characters: main, supporting, or minor"),
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
			mcp.Description("Characters: JSON object of name to relation; replaces the existing map"),
		),
		mcp.WithString("plot_type",
			mcp.Description("Plots: main, subplot, or arc"),
		),
		mcp.WithString("status",
			mcp.Description("Plots: planned, active, complete. Scenes: planned, draft, complete"),
		),
		mcp.WithString("category",
			mcp.Description("World building: location, culture, history, rules, or technology"),
		),
		mcp.WithString("details",
			mcp.Description("World building: extended details"),
		),
		mcp.WithString("summary",
			mcp.Description("Scenes: short summary"),
		),
		mcp.WithNumber("word_count",
			mcp.Description("Scenes: word count override"),
		),
	)
}

// Handle processes the memory_update tool call.
func (t *MemoryUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contentType := strings.ToLower(req.GetString("type", ""))
	id := int64Arg(req, "id", 0)
	if id <= 0 {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	var (
		found bool
		err   error
	)
	switch contentType {
	case memory.ContentTypeCharacter:
		var relationships map[string]string
		if raw := strArg(req, "relationships"); raw != nil {
			relationships, err = parseRelationships(*raw)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid 'relationships': %v", err)), nil
			}
		}
		found, err = t.store.UpdateCharacter(id, memory.UpdateCharacterParams{
			Name:          strArg(req, "name"),
			Description:   strArg(req, "content"),
			Personality:   strArg(req, "personality"),
			Backstory:     strArg(req, "backstory"),
			Appearance:    strArg(req, "appearance"),
			Relationships: relationships,
			Importance:    strArg(req, "importance"),
		})

	case memory.ContentTypePlot:
		found, err = t.store.UpdatePlot(id, memory.UpdatePlotParams{
			Title:       strArg(req, "name"),
			Description: strArg(req, "content"),
			PlotType:    strArg(req, "plot_type"),
			Status:      strArg(req, "status"),
		})

	case memory.ContentTypeWorld:
		found, err = t.store.UpdateWorldElement(id, memory.UpdateWorldElementParams{
			Name:        strArg(req, "name"),
			Category:    strArg(req, "category"),
			Description: strArg(req, "content"),
			Details:     strArg(req, "details"),
		})

	case "scene":
		found, err = t.store.UpdateScene(id, memory.UpdateSceneParams{
			Title:     strArg(req, "name"),
			Summary:   strArg(req, "summary"),
			Content:   strArg(req, "content"),
			WordCount: intArgPtr(req, "word_count"),
			Status:    strArg(req, "status"),
		})

	default:
		return mcp.NewToolResultError(fmt.Sprintf(
			"unsupported type %q. Use: character, plot, world_building, scene", contentType)), nil
	}

	if err != nil {
		return toolError("update "+contentType, err), nil
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("%s %d not found", contentType, id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Updated %s %d.", contentType, id)), nil
}

// ─── MemoryDeleteTool ────────────────────────────────────────────────────────

// MemoryDeleteTool handles the memory_delete MCP tool.
type MemoryDeleteTool struct {
	store *memory.Store
}

// NewMemoryDeleteTool creates a MemoryDeleteTool.
func NewMemoryDeleteTool(store *memory.Store) *MemoryDeleteTool {
	return &MemoryDeleteTool{store: store}
}

// Definition returns the MCP tool definition for memory_delete.
func (t *MemoryDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_delete",
		mcp.WithDescription(
			"Delete one memory item by type and ID. Deletion also removes the item from the search index.",
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Kind of item: character, plot, world_building, scene"),
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("ID of the item to delete"),
		),
	)
}

// Handle processes the memory_delete tool call.
func (t *MemoryDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contentType := strings.ToLower(req.GetString("type", ""))
	id := int64Arg(req, "id", 0)
	if id <= 0 {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	var (
		found bool
		err   error
	)
	switch contentType {
	case memory.ContentTypeCharacter:
		found, err = t.store.DeleteCharacter(id)
	case memory.ContentTypePlot:
		found, err = t.store.DeletePlot(id)
	case memory.ContentTypeWorld:
		found, err = t.store.DeleteWorldElement(id)
	case "scene":
		found, err = t.store.DeleteScene(id)
	default:
		return mcp.NewToolResultError(fmt.Sprintf(
			"unsupported type %q. Use: character, plot, world_building, scene", contentType)), nil
	}

	if err != nil {
		return toolError("delete "+contentType, err), nil
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("%s %d not found", contentType, id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted %s %d.", contentType, id)), nil
}

// strArg returns a pointer to a string argument when it was supplied, nil
// when absent. Update tools use it to distinguish "not provided" from "set
// to empty".
func strArg(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// intArgPtr is strArg for numeric arguments.
func intArgPtr(req mcp.CallToolRequest, key string) *int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}
