// Package main provides the leapfmt Java formatter CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/leapfmt/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
