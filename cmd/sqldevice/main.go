// Package main provides the sqldevice command.
package main

import (
	"os"

	"github.com/leapstack-labs/sqldevice/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
