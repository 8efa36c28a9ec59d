// Inkwell: persistent writing memory MCP server
//
// An MCP server that gives AI writing assistants durable, per-project
// memory: characters, plots, world building, scenes, and writing
// analytics, with full-text search and token-budgeted context selection.
//
// Usage:
//
//	inkwell serve [config.yaml]   # Start MCP server (stdio transport)
//	inkwell update                # Update to the latest version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/inkwell-mcp/inkwell/internal/config"
	inkserver "github.com/inkwell-mcp/inkwell/internal/server"
	"github.com/inkwell-mcp/inkwell/internal/updater"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		configPath := ""
		if len(os.Args) > 2 {
			configPath = os.Args[2]
		}
		if err := run(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("inkwell v%s\n", inkserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(configPath string) error {
	if configPath == "" {
		configPath = os.Getenv("INKWELL_CONFIG")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, cleanup, err := inkserver.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	// Serve until stdin closes or we get an interrupt.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. This runs in a goroutine during
// "serve" and is best-effort — network failures are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(inkserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  📦 Update available: v%s → v%s\n"+
				"     Run: inkwell update\n"+
				"     Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "🔍 Checking for updates...\n")

	result := updater.CheckVersion(inkserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "✅ Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "📦 New version available: v%s → v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "⬇️  Downloading...\n")

	if err := updater.SelfUpdate(inkserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n   You can download manually from:\n   %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✅ Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "   Restart inkwell to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Inkwell v%s — persistent writing memory MCP server

Usage:
  inkwell serve [config.yaml]   Start the MCP server (stdio transport)
  inkwell update                Update to the latest version

Configuration:
  The optional config file (or the INKWELL_CONFIG environment variable)
  tunes the data directory, logging, search, and the context engine.
  INKWELL_* environment variables override file values, e.g.
  INKWELL_DATA_DIR, INKWELL_LOG_LEVEL, INKWELL_CONTEXT_MAX_TOKENS.

  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "inkwell": {
        "command": "inkwell",
        "args": ["serve"]
      }
    }
  }

Learn more: https://github.com/inkwell-mcp/inkwell
`, inkserver.Version)
}
