package prompts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inkwell-mcp/inkwell/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// PlotDevelopmentPrompt handles the plot_development MCP prompt.
// The message embeds every stored plot line from the active project so
// suggestions build on what is already planned.
type PlotDevelopmentPrompt struct {
	store *memory.Store
	state *memory.ProjectState
}

// NewPlotDevelopmentPrompt creates a PlotDevelopmentPrompt.
func NewPlotDevelopmentPrompt(store *memory.Store, state *memory.ProjectState) *PlotDevelopmentPrompt {
	return &PlotDevelopmentPrompt{store: store, state: state}
}

// Definition returns the MCP prompt definition for registration.
func (p *PlotDevelopmentPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("plot_development",
		mcp.WithPromptDescription(
			"Develop a plot line. Existing plots from the active project "+
				"are included so new ideas stay consistent with them.",
		),
		mcp.WithArgument("plot_type",
			mcp.ArgumentDescription("Type of plot: main, subplot, or arc. Default: main"),
		),
		mcp.WithArgument("current_stage",
			mcp.ArgumentDescription("Current stage of development: beginning, middle, or end. Default: beginning"),
		),
	)
}

// Handle processes the plot_development prompt request.
func (p *PlotDevelopmentPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments

	plotType := "main"
	if args != nil {
		if t, ok := args["plot_type"]; ok && t != "" {
			plotType = t
		}
	}
	stage := "beginning"
	if args != nil {
		if s, ok := args["current_stage"]; ok && s != "" {
			stage = s
		}
	}

	plotContext := ""
	if projectID := p.state.Current(); projectID != 0 {
		plots, err := p.store.GetPlots(projectID)
		if err != nil {
			return nil, fmt.Errorf("loading plots: %w", err)
		}
		if len(plots) > 0 {
			if data, jerr := json.MarshalIndent(plots, "", "  "); jerr == nil {
				plotContext = fmt.Sprintf("\n\nExisting plots:\n%s", data)
			}
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Develop %s plot (%s stage)", plotType, stage),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Help me develop the %s plot for my writing project. I'm currently working on the %s stage.\n\n"+
						"Please help me with:\n"+
						"1. **Conflict and Tension**: What drives the story forward?\n"+
						"2. **Character Motivations**: How do character goals create plot?\n"+
						"3. **Pacing**: How should events unfold?\n"+
						"4. **Plot Points**: Key moments and turning points\n"+
						"5. **Cause and Effect**: How events connect logically\n"+
						"6. **Stakes**: What characters stand to gain or lose\n"+
						"7. **Resolution**: How conflicts will be resolved\n"+
						"8. **Subplots**: How they weave into the main story%s\n\n"+
						"Focus on creating engaging, logical plot development that serves the story and characters.",
					plotType, stage, plotContext,
				)),
			},
		},
	}, nil
}
