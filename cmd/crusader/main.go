// Crusader: campaign/task tracker MCP server.
//
// A local MCP server (stdio transport) that lets AI coding agents plan
// and execute work as campaigns of dependency-ordered tasks with
// acceptance criteria, research, notes, and testing steps.
//
// Usage:
//
//	crusader serve    # Start MCP server (stdio transport)
//	crusader update   # Update to the latest version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/taskcrusade/crusader/internal/config"
	"github.com/taskcrusade/crusader/internal/logging"
	crusader "github.com/taskcrusade/crusader/internal/server"
	"github.com/taskcrusade/crusader/internal/updater"
)

func main() {
	cmd := resolveCommand(os.Args)

	switch cmd {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("crusader v%s\n", crusader.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

// resolveCommand picks the subcommand from argv. No subcommand means
// serve, so MCP configs can omit the args list.
func resolveCommand(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return "serve"
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	s, cleanup, err := crusader.New(cfg, log)
	if err != nil {
		cleanup()
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Best-effort version check. Prints to stderr so it never touches
	// the MCP stdio transport on stdout.
	go notifyIfOutdated()

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	_ = ctx // stdio server manages its own lifecycle

	return server.ServeStdio(s)
}

func notifyIfOutdated() {
	st := updater.CheckVersion(crusader.Version)
	if st.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  Update available: v%s -> v%s\n"+
				"  Run: crusader update\n"+
				"  Release: %s\n\n",
			st.CurrentVersion, st.LatestVersion, st.ReleaseURL,
		)
	}
}

func runUpdate() {
	fmt.Fprintln(os.Stderr, "Checking for updates...")

	st := updater.CheckVersion(crusader.Version)
	if !st.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "Already at the latest version (v%s)\n", st.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "New version available: v%s -> v%s\n", st.CurrentVersion, st.LatestVersion)
	if err := updater.SelfUpdate(crusader.Version); err != nil {
		fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "Download manually from: %s\n", st.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Updated to v%s. Restart crusader to use the new version.\n", st.LatestVersion)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Crusader v%s — campaign/task tracker MCP server

Usage:
  crusader serve    Start the MCP server (stdio transport, default)
  crusader update   Update to the latest version

Configuration (environment variables):
  CRUSADER_DB_PATH  SQLite database path (default: ~/.crusader/database.db)
  CRUSADER_DEBUG    Enable debug logging (default: false)
  CRUSADER_HINTS    Enable workflow hints in responses (default: true)

Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "crusader": {
        "command": "crusader",
        "args": ["serve"]
      }
    }
  }
`, crusader.Version)
}
