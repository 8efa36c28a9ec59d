package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/inkwell-mcp/inkwell/internal/memory"
)

// AnalyticsTool handles the analytics_overview MCP tool.
type AnalyticsTool struct {
	store *memory.Store
	state *memory.ProjectState
}

// NewAnalyticsTool creates an AnalyticsTool.
func NewAnalyticsTool(store *memory.Store, state *memory.ProjectState) *AnalyticsTool {
	return &AnalyticsTool{store: store, state: state}
}

// Definition returns the MCP tool definition for analytics_overview.
func (t *AnalyticsTool) Definition() mcp.Tool {
	return mcp.NewTool("analytics_overview",
		mcp.WithDescription(
			"Show writing analytics for the active project: per-day words and minutes plus period totals.",
		),
		mcp.WithNumber("days",
			mcp.Description("Days to include (default: 30)"),
		),
		mcp.WithNumber("project_id",
			mcp.Description("Project ID (defaults to the active project)"),
		),
	)
}

// Handle processes the analytics_overview tool call.
func (t *AnalyticsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := targetProject(req, t.state)
	if projectID == 0 {
		return noActiveProject(), nil
	}

	days := intArg(req, "days", 30)

	stats, err := t.store.WritingStats(projectID, days)
	if err != nil {
		return toolError("get writing stats", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Writing Analytics (last %d days)\n\n", stats.PeriodDays)

	if len(stats.Daily) == 0 {
		b.WriteString("No writing sessions logged in this period. Log one with session_log.\n")
		return mcp.NewToolResultText(b.String()), nil
	}

	fmt.Fprintf(&b, "- **Writing days**: %d\n", stats.Totals.WritingDays)
	fmt.Fprintf(&b, "- **Total words**: %d\n", stats.Totals.TotalWords)
	fmt.Fprintf(&b, "- **Total minutes**: %d\n", stats.Totals.TotalMinutes)
	fmt.Fprintf(&b, "- **Average per session**: %.0f words\n", stats.Totals.AvgWordsPerSession)
	fmt.Fprintf(&b, "- **Best session**: %d words\n\n", stats.Totals.BestSession)

	b.WriteString("Daily:\n")
	for _, d := range stats.Daily {
		fmt.Fprintf(&b, "  %s  %6d words", d.Date, d.Words)
		if d.Minutes > 0 {
			fmt.Fprintf(&b, "  (%d min)", d.Minutes)
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}
