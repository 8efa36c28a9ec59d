package prompts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inkwell-mcp/inkwell/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// WorldBuildingPrompt handles the world_building MCP prompt. It offers a
// category-specific checklist and embeds the lore already stored for the
// active project.
type WorldBuildingPrompt struct {
	store *memory.Store
	state *memory.ProjectState
}

// NewWorldBuildingPrompt creates a WorldBuildingPrompt.
func NewWorldBuildingPrompt(store *memory.Store, state *memory.ProjectState) *WorldBuildingPrompt {
	return &WorldBuildingPrompt{store: store, state: state}
}

// Definition returns the MCP prompt definition for registration.
func (p *WorldBuildingPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("world_building",
		mcp.WithPromptDescription(
			"Develop world-building elements. Existing lore from the "+
				"active project is included for consistency.",
		),
		mcp.WithArgument("category",
			mcp.ArgumentDescription("World-building category: location, culture, history, rules, or technology. Default: location"),
		),
		mcp.WithArgument("scope",
			mcp.ArgumentDescription("Level of detail needed: overview, detailed, or comprehensive. Default: detailed"),
		),
	)
}

// Handle processes the world_building prompt request.
func (p *WorldBuildingPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments

	category := "location"
	if args != nil {
		if c, ok := args["category"]; ok && c != "" {
			category = c
		}
	}
	scope := "detailed"
	if args != nil {
		if s, ok := args["scope"]; ok && s != "" {
			scope = s
		}
	}

	worldContext := ""
	if projectID := p.state.Current(); projectID != 0 {
		elements, err := p.store.GetWorldElements(projectID)
		if err != nil {
			return nil, fmt.Errorf("loading world elements: %w", err)
		}
		if len(elements) > 0 {
			if data, jerr := json.MarshalIndent(elements, "", "  "); jerr == nil {
				worldContext = fmt.Sprintf("\n\nExisting world elements:\n%s", data)
			}
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("World-building: %s (%s)", category, scope),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Help me develop %s elements for my story world. I need %s development.\n\n"+
						"For %s world-building, help me consider:\n\n"+
						"**If Location:**\n"+
						"- Geography and environment\n"+
						"- Climate and weather patterns\n"+
						"- Architecture and infrastructure\n"+
						"- Demographics and population\n"+
						"- Resources and economy\n"+
						"- Cultural significance\n\n"+
						"**If Culture:**\n"+
						"- Social structure and hierarchy\n"+
						"- Customs and traditions\n"+
						"- Language and communication\n"+
						"- Religion and beliefs\n"+
						"- Arts and entertainment\n"+
						"- Values and taboos\n\n"+
						"**If History:**\n"+
						"- Major historical events\n"+
						"- Timeline and chronology\n"+
						"- Influential figures\n"+
						"- Conflicts and wars\n"+
						"- Social evolution\n"+
						"- Legends and myths\n\n"+
						"**If Rules/Magic System:**\n"+
						"- Fundamental principles\n"+
						"- Limitations and costs\n"+
						"- How it affects society\n"+
						"- Who can use it\n"+
						"- Consequences of misuse\n"+
						"- Integration with daily life\n\n"+
						"**If Technology:**\n"+
						"- Level of advancement\n"+
						"- Key innovations\n"+
						"- Impact on society\n"+
						"- Distribution and access\n"+
						"- Future developments\n"+
						"- Unintended consequences%s\n\n"+
						"Provide creative, consistent world-building that enhances the story.",
					category, scope, category, worldContext,
				)),
			},
		},
	}, nil
}
