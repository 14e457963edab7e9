// Package main is the entry point for the deployment scorecard service.
package main

import (
	"os"

	"github.com/fidde/scorecard/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
