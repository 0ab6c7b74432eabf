package main

import (
	"os"

	"github.com/openbooks-dev/openbooks/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
