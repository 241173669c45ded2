package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/pplx-mcp/pplx-mcp/internal/config"
	"github.com/pplx-mcp/pplx-mcp/internal/usage"
	"github.com/spf13/cobra"
)

var usageLimit int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show recorded API usage",
	RunE:  runUsage,
}

func init() {
	usageCmd.Flags().IntVarP(&usageLimit, "limit", "n", 10, "number of recent calls to show")
}

func runUsage(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	store, err := usage.Open(config.GetUsageDB())
	if err != nil {
		return fmt.Errorf("failed to open usage ledger: %w", err)
	}
	defer store.Close()

	now := time.Now()
	lastDay, err := store.CountSince(now.Add(-24 * time.Hour))
	if err != nil {
		return fmt.Errorf("failed to read usage: %w", err)
	}
	lastHour, err := store.CountSince(now.Add(-time.Hour))
	if err != nil {
		return fmt.Errorf("failed to read usage: %w", err)
	}

	color.New(color.FgCyan, color.Bold).Println("Perplexity API Usage")
	fmt.Println("────────────────────────────────")
	fmt.Printf("Last hour:     %d calls\n", lastHour)
	fmt.Printf("Last 24 hours: %d calls (budget %d/day)\n", lastDay, cfg.RequestsPerDay)
	fmt.Println()

	calls, err := store.Recent(usageLimit)
	if err != nil {
		return fmt.Errorf("failed to list calls: %w", err)
	}

	if len(calls) == 0 {
		fmt.Println("No calls recorded yet.")
		return nil
	}

	color.New(color.FgWhite, color.Bold).Println("Recent calls:")
	for _, c := range calls {
		fmt.Printf("  %s  %-18s %-15s %s\n",
			c.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			c.Tool,
			c.Model,
			c.ID[:8],
		)
	}

	return nil
}
