package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pplx-mcp/pplx-mcp/internal/config"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "pplx-mcp",
		Short: "Perplexity search tools over the Model Context Protocol",
		Long: `pplx-mcp exposes Perplexity AI's web-backed question answering as MCP
tools over stdio, so AI agents like Claude Code can ask questions and
search the web through a single server process.

Set PERPLEXITY_API_KEY before running any command that talks to the API.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Init()
		},
	}

	version = "0.2.0"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pplx-mcp v%s\n", version)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions for colored output
func printSuccess(msg string) {
	color.Green("✓ %s", msg)
}

func printWarning(msg string) {
	color.Yellow("! %s", msg)
}

func printError(msg string) {
	color.Red("✗ %s", msg)
}

func printInfo(msg string) {
	color.Cyan("→ %s", msg)
}

func exitWithError(msg string) {
	printError(msg)
	os.Exit(1)
}
