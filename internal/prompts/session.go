package prompts

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/inkwell-mcp/inkwell/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// WritingSessionPrompt handles the writing_session_start MCP prompt.
// It frames a focused session around a goal and word target, with the
// active project's progress and most recent memory items as context.
type WritingSessionPrompt struct {
	store *memory.Store
	state *memory.ProjectState
}

// NewWritingSessionPrompt creates a WritingSessionPrompt.
func NewWritingSessionPrompt(store *memory.Store, state *memory.ProjectState) *WritingSessionPrompt {
	return &WritingSessionPrompt{store: store, state: state}
}

// Definition returns the MCP prompt definition for registration.
func (p *WritingSessionPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("writing_session_start",
		mcp.WithPromptDescription(
			"Start a focused writing session with the active project's "+
				"progress and recent memory as context.",
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("Session goal, e.g. 'continue current scene' or 'draft chapter three'. Default: continue current scene"),
		),
		mcp.WithArgument("word_target",
			mcp.ArgumentDescription("Target word count for the session. Default: 500"),
		),
	)
}

// Handle processes the writing_session_start prompt request.
func (p *WritingSessionPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments

	goal := "continue current scene"
	if args != nil {
		if g, ok := args["goal"]; ok && g != "" {
			goal = g
		}
	}
	wordTarget := 500
	if args != nil {
		if raw, ok := args["word_target"]; ok && raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				wordTarget = n
			}
		}
	}

	projectContext := ""
	if projectID := p.state.Current(); projectID != 0 {
		stats, err := p.store.ProjectStats(projectID)
		if err != nil {
			return nil, fmt.Errorf("loading project stats: %w", err)
		}
		recent, err := p.store.SearchMemory("", memory.SearchOptions{ProjectID: projectID, Limit: 5})
		if err != nil {
			return nil, fmt.Errorf("loading recent memory: %w", err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "\nCurrent Project: %s\n", stats.Project.Name)
		fmt.Fprintf(&b, "Progress: %d/%d words\n", stats.Words.Current, stats.Words.Target)
		fmt.Fprintf(&b, "Characters: %d\n", stats.Characters)
		fmt.Fprintf(&b, "Plots: %d", stats.Plots)
		if len(recent) > 0 {
			b.WriteString("\n\nRecent memory items:")
			for _, r := range recent {
				fmt.Fprintf(&b, "\n- %s", r.Title)
			}
		}
		projectContext = b.String()
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Writing session: %s", goal),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Let's start a focused writing session!\n\n"+
						"**Session Goal:** %s\n"+
						"**Target Words:** %d\n\n"+
						"**Project Context:**%s\n\n"+
						"Please help me:\n"+
						"1. **Focus**: What specific scene/element should I work on?\n"+
						"2. **Momentum**: What happened in the last scene to build from?\n"+
						"3. **Conflict**: What tension or problem drives this scene?\n"+
						"4. **Character**: Whose POV am I writing from and what do they want?\n"+
						"5. **Setting**: Where and when does this take place?\n"+
						"6. **Mood**: What atmosphere should I create?\n"+
						"7. **Purpose**: How does this scene advance the story?\n\n"+
						"Give me a focused starting point to dive into productive writing!",
					goal, wordTarget, projectContext,
				)),
			},
		},
	}, nil
}
