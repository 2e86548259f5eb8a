// cmd/garfutils/main.go
//
// Entry point for the garfutils CLI.

package main

import (
	"os"

	"github.com/kingrea/garfutils/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
