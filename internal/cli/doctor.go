package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/pplx-mcp/pplx-mcp/internal/config"
	"github.com/pplx-mcp/pplx-mcp/internal/upstream"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check connectivity to the Perplexity API",
	Long: `Runs a small end-to-end request against the Perplexity API and reports
whether the credential, network path, and configured model all work.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	color.New(color.FgCyan, color.Bold).Println("pplx-mcp doctor")
	fmt.Println("────────────────────────────────")

	if cfg.APIKey == "" {
		printError("PERPLEXITY_API_KEY is not set")
		return fmt.Errorf("missing credential")
	}
	printSuccess("API key present")

	printInfo(fmt.Sprintf("Endpoint: %s", cfg.BaseURL))
	printInfo(fmt.Sprintf("Model:    %s", cfg.DefaultModel))

	client := upstream.New(cfg.APIKey, cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second)

	start := time.Now()
	answer, err := client.Chat(context.Background(), upstream.Query{
		Model:        cfg.DefaultModel,
		SystemPrompt: "Reply with the single word: pong",
		UserContent:  "ping",
		MaxTokens:    20,
	})
	if err != nil {
		printError(fmt.Sprintf("API call failed: %v", err))
		return fmt.Errorf("connectivity check failed")
	}

	printSuccess(fmt.Sprintf("API reachable (%.1fs)", time.Since(start).Seconds()))
	printInfo(fmt.Sprintf("Response: %.60s", answer))

	fmt.Println()
	printSuccess("All checks passed")
	return nil
}
