package main

import (
	"os"

	"github.com/advaitm/stockpilot/cmd/stockpilot/commands"
)

// main is the entry point for the stockpilot CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
