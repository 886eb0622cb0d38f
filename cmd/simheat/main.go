// Command simheat renders atom-pair similarity reports as annotated heatmaps.
package main

import (
	"os"

	"github.com/turtacn/simheat/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Execute prints the error itself.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
