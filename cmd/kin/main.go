// Package main is the entry point for the kin CLI tool.
package main

import (
	"os"

	"github.com/mikesturm/kinetic/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
