package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pplx-mcp/pplx-mcp/internal/config"
	"github.com/pplx-mcp/pplx-mcp/internal/mcp"
	"github.com/pplx-mcp/pplx-mcp/internal/ratelimit"
	"github.com/pplx-mcp/pplx-mcp/internal/upstream"
	"github.com/pplx-mcp/pplx-mcp/internal/usage"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP (Model Context Protocol) server",
	Long: `Starts a Model Context Protocol server over stdio.

This lets AI agents like Claude Code ask Perplexity questions and run
web searches programmatically.

MCP Tools available:
  - perplexity_ask     Ask a question, get a researched answer
  - perplexity_search  Search the web, get a summary with sources

To use with Claude Code, add to your MCP settings:
  {
    "mcpServers": {
      "perplexity": {
        "command": "pplx-mcp",
        "args": ["serve"],
        "env": {"PERPLEXITY_API_KEY": "pplx-..."}
      }
    }
  }`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if cfg.APIKey == "" {
		// Stdout belongs to the protocol; complaints go to stderr.
		fmt.Fprintln(os.Stderr, "PERPLEXITY_API_KEY is not set")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	limiter := ratelimit.New(cfg.RequestsPerMinute, cfg.RequestsPerDay)

	ledger, err := usage.Open(config.GetUsageDB())
	if err != nil {
		logger.Warn("usage ledger unavailable, day budget will not survive restarts", "error", err)
		ledger = nil
	} else {
		defer ledger.Close()
		if spent, err := ledger.CountSince(time.Now().Add(-24 * time.Hour)); err == nil {
			limiter.SeedDay(spent)
		}
	}

	client := upstream.New(cfg.APIKey, cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second)

	server := mcp.NewServer(mcp.Options{
		Upstream: client,
		Limiter:  limiter,
		Ledger:   ledger,
		Logger:   logger,
	})

	if err := server.Run(); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
