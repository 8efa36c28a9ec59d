// Package memtools provides the MCP tool handlers for Inkwell's writing
// memory.
//
// Each tool follows the same pattern:
// - A struct with dependencies (store, project state, context session)
//   injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Tools that operate "on the current project" resolve it through the shared
// ProjectState; callers can always override with an explicit project_id.
package memtools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/inkwell-mcp/inkwell/internal/memory"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// int64Arg extracts an entity id argument.
func int64Arg(req mcp.CallToolRequest, key string, defaultVal int64) int64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int64(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// targetProject resolves the project a tool should act on: an explicit
// project_id argument wins, otherwise the active selection. Returns 0 when
// neither exists.
func targetProject(req mcp.CallToolRequest, state *memory.ProjectState) int64 {
	if id := int64Arg(req, "project_id", 0); id > 0 {
		return id
	}
	return state.Current()
}

// noActiveProject is the shared miss message for tools that need a project.
func noActiveProject() *mcp.CallToolResult {
	return mcp.NewToolResultError("no active project. Create one with project_new or select one with project_switch.")
}

// toolError renders a failure, letting taxonomy errors speak for themselves.
func toolError(action string, err error) *mcp.CallToolResult {
	if memory.IsValidation(err) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", action, err))
}
