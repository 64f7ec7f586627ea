// Package main provides the entry point for the stationctl CLI tool.
package main

import (
	"context"
	"os"

	"github.com/e-radio/stationctl/cmd/stationctl/app"
)

// Version information populated by the release build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	application, err := app.New(version, commit, date)
	if err != nil {
		app.Exit(err)
	}

	// Interrupt cancels the context; looped commands persist their
	// skip-list and surface ErrInterrupted, which maps to exit 130.
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		app.Exit(err)
	}
}
