package fillstate

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/e-radio/stationctl/pkg/errors"
	"github.com/e-radio/stationctl/pkg/geocode"
	"github.com/e-radio/stationctl/pkg/stations"
)

const defaultGeoProgressFile = "tools/state-geo-progress.json"

// newGeoCommand creates the fill-state geo subcommand.
func newGeoCommand(app AppContext) *cobra.Command {
	var (
		maxItems     int
		sleepSeconds float64
		progressFile string
		overwrite    bool
		language     string
	)

	cmd := &cobra.Command{
		Use:   "geo",
		Short: "Fill station state from coordinates via reverse geocoding",
		Long: `Geo resolves each station's state by reverse-geocoding its coordinates
against the Nominatim service and taking the first non-empty field of the
fixed address priority list (city, town, village, municipality, county,
city_district, suburb, state_district, state, region).

Requests are spaced by the politeness delay; stations without coordinates
or without a usable address are skipped and recorded in the progress file.`,
		Example: `  stationctl fill-state geo
  stationctl fill-state geo --max 100 --sleep 1.5
  stationctl fill-state geo --overwrite --lang el`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := geocode.NewClient(
				geocode.WithLanguage(language),
				geocode.WithDelay(time.Duration(sleepSeconds*float64(time.Second))),
			)

			l := &loop{
				logger:       app.Logger(),
				dataFile:     app.DataFile(),
				progressFile: progressFile,
				max:          maxItems,
				eligible: func(st *stations.Station) bool {
					return overwrite || !st.HasState()
				},
				resolve: geoResolver(app, client),
			}
			return l.run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&maxItems, "max", 0, "max stations to process in one run (0 = no limit)")
	cmd.Flags().Float64Var(&sleepSeconds, "sleep", 1.0, "seconds between requests (Nominatim politeness delay)")
	cmd.Flags().StringVar(&progressFile, "progress-file", defaultGeoProgressFile, "progress file for skipped stations")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite existing state values (default: only fill missing)")
	cmd.Flags().StringVar(&language, "lang", "en", "reverse-geocode language")

	return cmd
}

// geoResolver resolves a station's state through reverse geocoding.
func geoResolver(app AppContext, client *geocode.Client) resolveFunc {
	return func(ctx context.Context, st *stations.Station) (string, error) {
		if !st.HasCoordinates() {
			return "", errors.New("missing geo coordinates")
		}
		lat, err := st.GeoLat.Float()
		if err != nil {
			return "", errors.NewValidationError("geo_lat", st.GeoLat.String(), "not a number")
		}
		lon, err := st.GeoLong.Float()
		if err != nil {
			return "", errors.NewValidationError("geo_long", st.GeoLong.String(), "not a number")
		}

		app.Logger().Debug().
			Str("lat", st.GeoLat.String()).
			Str("lon", st.GeoLong.String()).
			Msg("Reverse geocoding")

		result, err := client.Reverse(ctx, lat, lon)
		if err != nil {
			return "", err
		}

		state := result.Address.First(geocode.AddressPriority...)
		if state == "" {
			return "", fmt.Errorf("%w: no suitable address field", errors.ErrNoMatch)
		}
		return state, nil
	}
}
