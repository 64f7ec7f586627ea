// Package fillstate implements the state fillers: batch loops that pick
// stations with a missing state value, resolve one via an external source
// (reverse geocoding or homepage structured data), and write each success
// back to the dataset immediately. Unresolvable stations go to a persisted
// skip-list so later runs don't re-query them.
package fillstate

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// AppContext defines the interface the fill-state commands need from the app.
type AppContext interface {
	Logger() *zerolog.Logger
	DataFile() string
}

// NewCommand creates the fill-state command with its source subcommands.
func NewCommand(app AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill-state [source]",
		Short: "Fill missing station state values from an external source",
		Long: `Fill-state iterates stations whose state field is empty and resolves a
value for each from an external source:

  geo       - reverse-geocode the station's coordinates
  homepage  - extract structured data (JSON-LD) from the station's homepage

Each resolved station is written to the dataset immediately. Stations that
cannot be resolved are recorded in a progress file and skipped by later
runs. Interrupting a run saves the progress file and exits with status 130.`,
		Example: `  stationctl fill-state geo                 # resolve via reverse geocoding
  stationctl fill-state geo --max 50 --lang el
  stationctl fill-state homepage            # resolve via homepage JSON-LD
  stationctl fill-state homepage --once     # manual single-step debugging`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return fmt.Errorf("unknown source: %s", args[0])
		},
	}

	cmd.AddCommand(newGeoCommand(app))
	cmd.AddCommand(newHomepageCommand(app))

	return cmd
}
