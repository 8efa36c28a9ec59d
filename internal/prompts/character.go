// Package prompts implements MCP prompt handlers for the writing memory
// server.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// the host surfaces to the writer. Unlike tools (which the AI calls),
// prompts are initiated by the user, and each one folds the stored
// project memory into its opening message so the conversation starts
// grounded in what has already been written.
package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inkwell-mcp/inkwell/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// CharacterDevelopmentPrompt handles the character_development MCP prompt.
// It builds a deep-dive character questionnaire, embedding the stored
// record when the named character already exists in the active project.
type CharacterDevelopmentPrompt struct {
	store *memory.Store
	state *memory.ProjectState
}

// NewCharacterDevelopmentPrompt creates a CharacterDevelopmentPrompt.
func NewCharacterDevelopmentPrompt(store *memory.Store, state *memory.ProjectState) *CharacterDevelopmentPrompt {
	return &CharacterDevelopmentPrompt{store: store, state: state}
}

// Definition returns the MCP prompt definition for registration.
func (p *CharacterDevelopmentPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("character_development",
		mcp.WithPromptDescription(
			"Develop a character in depth. If the character already exists "+
				"in the active project, their stored record is included.",
		),
		mcp.WithArgument("character_name",
			mcp.ArgumentDescription("Name of the character to develop"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("character_type",
			mcp.ArgumentDescription("Type of character: main, supporting, or minor. Default: main"),
		),
	)
}

// Handle processes the character_development prompt request.
func (p *CharacterDevelopmentPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments

	name := ""
	if args != nil {
		name = strings.TrimSpace(args["character_name"])
	}
	if name == "" {
		return nil, fmt.Errorf("character_name is required")
	}

	charType := "main"
	if args != nil {
		if t, ok := args["character_type"]; ok && t != "" {
			charType = t
		}
	}

	// When the active project already knows this character, embed the
	// stored record so development builds on it instead of restarting.
	characterInfo := ""
	if projectID := p.state.Current(); projectID != 0 {
		chars, err := p.store.GetCharacters(projectID)
		if err != nil {
			return nil, fmt.Errorf("loading characters: %w", err)
		}
		for _, c := range chars {
			if strings.EqualFold(c.Name, name) {
				if data, jerr := json.MarshalIndent(c, "", "  "); jerr == nil {
					characterInfo = fmt.Sprintf("\n\nExisting character record:\n%s", data)
				}
				break
			}
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Develop character: %s", name),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Develop the character '%s' for my writing project. This is a %s character.\n\n"+
						"Please help me flesh out:\n"+
						"1. Physical appearance and distinctive features\n"+
						"2. Personality traits and quirks\n"+
						"3. Background and history\n"+
						"4. Motivations and goals\n"+
						"5. Relationships with other characters\n"+
						"6. Character arc and development\n"+
						"7. Speech patterns and dialogue style\n"+
						"8. Strengths and weaknesses\n"+
						"9. Fears and internal conflicts\n"+
						"10. Role in the story%s\n\n"+
						"Provide detailed, creative responses that will help bring this character to life.",
					name, charType, characterInfo,
				)),
			},
		},
	}, nil
}
