package main

import (
	"os"

	"github.com/pplx-mcp/pplx-mcp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
