package main

import (
	"github.com/ansible-mcp/ansiblemcp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// Execute handles printing and os.Exit internally
		_ = err
	}
}
