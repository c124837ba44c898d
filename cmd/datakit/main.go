// Package main provides the entry point for the datakit CLI.
package main

import (
	"os"

	"github.com/YuminosukeSato/datakit/cmd/datakit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
