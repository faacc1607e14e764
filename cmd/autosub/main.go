package main

import (
	"os"

	"github.com/Tuguberk/ai-subtitle-creator/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
