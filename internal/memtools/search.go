package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/inkwell-mcp/inkwell/internal/memory"
)

// MemorySearchTool handles the memory_search MCP tool.
type MemorySearchTool struct {
	store *memory.Store
	state *memory.ProjectState
}

// NewMemorySearchTool creates a MemorySearchTool.
func NewMemorySearchTool(store *memory.Store, state *memory.ProjectState) *MemorySearchTool {
	return &MemorySearchTool{store: store, state: state}
}

// Definition returns the MCP tool definition for memory_search.
func (t *MemorySearchTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_search",
		mcp.WithDescription(
			"Full-text search across the project's characters, plots, and world building. "+
				"An empty query returns the most recently added items instead.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search terms - words are matched against names, descriptions, and metadata"),
		),
		mcp.WithString("types",
			mcp.Description("Comma-separated filter: character, plot, world_building (default: all)"),
		),
		mcp.WithNumber("project_id",
			mcp.Description("Project ID (defaults to the active project)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 10)"),
		),
	)
}

// Handle processes the memory_search tool call.
func (t *MemorySearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")

	var contentTypes []string
	if raw := req.GetString("types", ""); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				contentTypes = append(contentTypes, part)
			}
		}
	}

	projectID := targetProject(req, t.state)
	if projectID == 0 {
		return noActiveProject(), nil
	}

	results, err := t.store.SearchMemory(query, memory.SearchOptions{
		ProjectID:    projectID,
		ContentTypes: contentTypes,
		Limit:        intArg(req, "limit", 10),
	})
	if err != nil {
		return toolError("search memory", err), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No results found for %q.", query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d results for %q:\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s #%d: %s %s\n    %s\n",
			i+1, r.ContentType, r.EntityID, r.Title, rankStars(r.Rank), r.Snippet)
	}

	return mcp.NewToolResultText(b.String()), nil
}

// rankStars renders an FTS5 rank (more negative is better) as one to five
// stars.
func rankStars(rank float64) string {
	n := int(rank * -5)
	if n < 1 {
		n = 1
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("⭐", n)
}
