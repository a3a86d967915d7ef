package main

import (
	"os"

	"github.com/rshade/preheat/internal/cli"
	"github.com/rshade/preheat/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps the result to an exit code.
func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
