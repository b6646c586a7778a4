// Package main provides the CLI for Log Lines.
package main

import (
	"os"

	"github.com/leapstack-labs/loglines/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
