// Package normalize implements the city/region normalizers: fixing the case
// where the state field holds a city name by moving it into the city field
// and replacing state with one of the 13 canonical Greek administrative
// regions, either via a static city→region lookup table or by re-querying
// reverse geocoding and alias-matching the returned address fields.
package normalize

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// AppContext defines the interface the normalize commands need from the app.
type AppContext interface {
	Logger() *zerolog.Logger
	DataFile() string
}

// NewCommand creates the normalize command with its strategy subcommands.
func NewCommand(app AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [strategy]",
		Short: "Normalize city/state fields to canonical regions",
		Long: `Normalize fixes stations whose state field holds a city name instead of
one of the 13 canonical regions:

  map  - look the city up in a static city→region table
  geo  - re-query reverse geocoding and alias-match the address fields

In both cases the city-like value moves to the city field and state becomes
the canonical region name.`,
		Example: `  stationctl normalize map                  # static lookup table
  stationctl normalize map --max 50
  stationctl normalize geo                  # reverse geocoding
  stationctl normalize geo --lang el --sleep 1.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return fmt.Errorf("unknown strategy: %s", args[0])
		},
	}

	cmd.AddCommand(newMapCommand(app))
	cmd.AddCommand(newGeoCommand(app))

	return cmd
}
