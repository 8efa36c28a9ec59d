// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it builds the logger, the memory store,
// the context engine session, and the active-project state, and injects
// them into the tools, prompts, and resources. No business logic lives
// here, only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/inkwell-mcp/inkwell/internal/config"
	"github.com/inkwell-mcp/inkwell/internal/engine"
	"github.com/inkwell-mcp/inkwell/internal/logging"
	"github.com/inkwell-mcp/inkwell/internal/memory"
	"github.com/inkwell-mcp/inkwell/internal/memtools"
	"github.com/inkwell-mcp/inkwell/internal/prompts"
	"github.com/inkwell-mcp/inkwell/internal/resources"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts, and
// resources registered. This is the single place where all dependencies
// are resolved.
//
// The returned cleanup function closes the memory store's database
// connection and must be called on shutdown (typically via defer). It is
// always non-nil and safe to call even if initialization failed. Unlike a
// general-purpose server, there is no degraded mode here: the store IS
// the product, so a failed store init is fatal.
func New(cfg *config.Config) (*server.MCPServer, func(), error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, noop, fmt.Errorf("creating logger: %w", err)
	}

	store, err := memory.New(memory.Config{
		DataDir:          cfg.DataDir,
		MaxSearchResults: cfg.Search.MaxResults,
		Logger:           logger,
	})
	if err != nil {
		return nil, noop, fmt.Errorf("opening memory store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing memory store", zap.Error(err))
		}
		_ = logger.Sync()
	}

	state, err := memory.LoadProjectState(cfg.DataDir, store, logger)
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("loading project state: %w", err)
	}

	session := engine.NewSession(engine.SessionConfig{
		MaxTokens:         cfg.Context.MaxTokens,
		CharsPerToken:     cfg.Context.CharsPerToken,
		MinTruncateTokens: cfg.Context.MinTruncateTokens,
		Weights:           cfg.Context.Weights,
		AutoRefresh:       cfg.Context.AutoRefresh,
		Logger:            logger,
	})

	s := server.NewMCPServer(
		"inkwell",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	registerTools(s, store, state, session)
	registerPrompts(s, store, state)
	registerResources(s, store, state, session)

	logger.Info("inkwell server configured",
		zap.String("data_dir", cfg.DataDir),
		zap.Int64("active_project", state.Current()),
	)

	return s, cleanup, nil
}

// noop is the cleanup returned on failed initialization.
func noop() {}

// registerTools registers all 14 writing-memory MCP tools with the server.
func registerTools(s *server.MCPServer, store *memory.Store, state *memory.ProjectState, session *engine.Session) {
	// --- Projects ---
	projectNew := memtools.NewProjectNewTool(store, state)
	s.AddTool(projectNew.Definition(), projectNew.Handle)

	projectSwitch := memtools.NewProjectSwitchTool(store, state)
	s.AddTool(projectSwitch.Definition(), projectSwitch.Handle)

	projectList := memtools.NewProjectListTool(store, state)
	s.AddTool(projectList.Definition(), projectList.Handle)

	projectStats := memtools.NewProjectStatsTool(store, state)
	s.AddTool(projectStats.Definition(), projectStats.Handle)

	// --- Memory entities ---
	memoryAdd := memtools.NewMemoryAddTool(store, state)
	s.AddTool(memoryAdd.Definition(), memoryAdd.Handle)

	memoryUpdate := memtools.NewMemoryUpdateTool(store)
	s.AddTool(memoryUpdate.Definition(), memoryUpdate.Handle)

	memoryDelete := memtools.NewMemoryDeleteTool(store)
	s.AddTool(memoryDelete.Definition(), memoryDelete.Handle)

	memorySearch := memtools.NewMemorySearchTool(store, state)
	s.AddTool(memorySearch.Definition(), memorySearch.Handle)

	// --- Manuscript ---
	sceneAdd := memtools.NewSceneAddTool(store, state)
	s.AddTool(sceneAdd.Definition(), sceneAdd.Handle)

	sessionLog := memtools.NewSessionLogTool(store, state)
	s.AddTool(sessionLog.Definition(), sessionLog.Handle)

	// --- Context engine ---
	contextRefresh := memtools.NewContextRefreshTool(store, state, session)
	s.AddTool(contextRefresh.Definition(), contextRefresh.Handle)

	contextShow := memtools.NewContextShowTool(state, session)
	s.AddTool(contextShow.Definition(), contextShow.Handle)

	contextAuto := memtools.NewContextAutoTool(session)
	s.AddTool(contextAuto.Definition(), contextAuto.Handle)

	// --- Analytics ---
	analytics := memtools.NewAnalyticsTool(store, state)
	s.AddTool(analytics.Definition(), analytics.Handle)
}

// registerPrompts registers the writing-assistance prompts.
func registerPrompts(s *server.MCPServer, store *memory.Store, state *memory.ProjectState) {
	characterDev := prompts.NewCharacterDevelopmentPrompt(store, state)
	s.AddPrompt(characterDev.Definition(), characterDev.Handle)

	plotDev := prompts.NewPlotDevelopmentPrompt(store, state)
	s.AddPrompt(plotDev.Definition(), plotDev.Handle)

	worldBuilding := prompts.NewWorldBuildingPrompt(store, state)
	s.AddPrompt(worldBuilding.Definition(), worldBuilding.Handle)

	writingSession := prompts.NewWritingSessionPrompt(store, state)
	s.AddPrompt(writingSession.Definition(), writingSession.Handle)
}

// registerResources registers the memory:// read-only endpoints.
func registerResources(s *server.MCPServer, store *memory.Store, state *memory.ProjectState, session *engine.Session) {
	h := resources.NewHandler(store, state, session)
	s.AddResource(h.ProjectsResource(), h.HandleProjects)
	s.AddResource(h.ActiveProjectResource(), h.HandleActiveProject)
	s.AddResource(h.CurrentContextResource(), h.HandleCurrentContext)
}

// serverInstructions returns the system instructions that tell the AI how
// to use Inkwell effectively.
func serverInstructions() string {
	return `You have access to Inkwell, a persistent memory server for long-form fiction writing.

## WHY INKWELL EXISTS

Long manuscripts outgrow any context window. Inkwell keeps every character,
plot line, world detail, and scene in a per-project database, and selects
only the most relevant slice back into context while the user writes.
Memory survives between conversations — use it so the user never has to
re-explain their story.

## CORE WORKFLOW

1. At the start of a writing conversation, call project_list and
   project_switch (or project_new for a fresh story)
2. As the user reveals story facts, SAVE them with memory_add — proactively
3. While drafting prose, call context_refresh with the current excerpt so
   the relevant cast and lore stay loaded
4. Store finished prose with scene_add
5. Log output with session_log so the analytics stay meaningful

## WHEN TO SAVE (call memory_add PROACTIVELY)

- A new character appears, or an existing one gains a trait, secret, or
  relationship
- A plot thread is introduced, advanced, or resolved
- A setting detail is established: places, cultures, history, rules of
  magic or law, technology

Never ask permission to save facts the user has already stated — just save
them, then confirm briefly.

## ENTITY TYPES

memory_add dispatches on its type parameter:
- character: name, description, personality, backstory, appearance,
  relationships (JSON object mapping name to relation), importance
  (main, supporting, minor)
- plot: title, description, plot_type (main, subplot, arc), status
  (planned, active, resolved, abandoned)
- world_building: name, category (location, culture, history, rules,
  technology), description, details

## KEEPING MEMORY CURRENT

- memory_update when facts change: a character's importance grows, a plot
  resolves, a place gains history
- memory_delete only when the user removes something from the story
- memory_search BEFORE inventing details the project may already define —
  contradicting stored canon is the one unforgivable failure

## THE CONTEXT ENGINE

context_refresh scores every stored item against a manuscript excerpt
(title matches, name mentions, vocabulary overlap, story importance) and
packs the best items into a token budget.

- Call it when the scene, point of view, or location changes
- context_show displays the current selection and its budget numbers
- context_auto(false) freezes the selection; context_refresh then becomes
  a no-op until re-enabled
- Refreshing with an empty excerpt clears the selection

## SCENES AND PROGRESS

- scene_add stores draft text by chapter and scene number; word_count is
  derived from the content when omitted
- session_log(words, minutes) after each writing burst; dates are
  YYYY-MM-DD and default to today
- analytics_overview shows daily output, totals, and the best session
- project_stats shows cast size, plot count, scene completion, and
  progress toward the word target

## PROMPTS

The user can launch guided workflows: character_development,
plot_development, world_building, and writing_session_start. Each embeds
the stored project memory, so the work builds on what already exists
instead of restarting from a blank page.

## RESOURCES

memory://projects, memory://project/active, and memory://context/current
expose the project list, the active project's stats, and the current
context selection as read-only resources.

## RULES

- Exactly one project is active at a time; most tools operate on it
- memory_search matches only the active project
- Scenes are manuscript, not memory: they are never in search results
- Keep relationships JSON flat: {"Kael": "rival", "Sera": "mentor"}`
}
