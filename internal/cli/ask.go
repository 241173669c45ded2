package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pplx-mcp/pplx-mcp/internal/config"
	"github.com/pplx-mcp/pplx-mcp/internal/upstream"
	"github.com/spf13/cobra"
)

var (
	askModel     string
	askMaxTokens int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask Perplexity a question from the terminal",
	Long: `Sends a single question to Perplexity and prints the answer.

This uses the same upstream client as the MCP server, so it is also a
quick way to verify the API key and model configuration.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "model to use (default from config)")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 0, "maximum tokens in the answer (default from config)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if cfg.APIKey == "" {
		exitWithError("PERPLEXITY_API_KEY is not set")
	}

	model := askModel
	if model == "" {
		model = cfg.DefaultModel
	}
	maxTokens := askMaxTokens
	if maxTokens <= 0 {
		maxTokens = cfg.MaxTokens
	}

	question := strings.Join(args, " ")

	client := upstream.New(cfg.APIKey, cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second)

	printInfo(fmt.Sprintf("Asking %s...", model))

	answer, err := client.Chat(context.Background(), upstream.Query{
		Model:        model,
		SystemPrompt: "You are a helpful research assistant. Be precise and concise.",
		UserContent:  question,
		MaxTokens:    maxTokens,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	fmt.Println()
	color.New(color.FgWhite, color.Bold).Println(question)
	fmt.Println("────────────────────────────────")
	fmt.Println(answer)

	return nil
}
