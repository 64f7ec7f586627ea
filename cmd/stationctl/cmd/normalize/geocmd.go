package normalize

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/e-radio/stationctl/pkg/geocode"
	"github.com/e-radio/stationctl/pkg/regions"
	"github.com/e-radio/stationctl/pkg/stations"
)

const defaultGeoProgressFile = "tools/state-region-progress.json"

// addressFields are the reverse-geocoding address fields matched against the
// region alias table, in order.
var addressFields = []string{"state", "region", "state_district", "county"}

// newGeoCommand creates the normalize geo subcommand.
func newGeoCommand(app AppContext) *cobra.Command {
	var (
		opts         geoOptions
		sleepSeconds float64
		language     string
	)

	cmd := &cobra.Command{
		Use:   "geo",
		Short: "Normalize via reverse geocoding and region aliases",
		Long: `Geo re-queries reverse geocoding for every station with coordinates and
matches the returned address fields (state, region, state_district, county)
against the known name variants of the 13 canonical regions. A city name is
independently derived from the existing city or city-like state value, with
administrative prefixes/suffixes and parenthetical qualifiers stripped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := geocode.NewClient(
				geocode.WithLanguage(language),
				geocode.WithDelay(time.Duration(sleepSeconds*float64(time.Second))),
			)
			return runGeo(cmd.Context(), app.Logger(), app.DataFile(), client, opts)
		},
	}

	cmd.Flags().IntVar(&opts.max, "max", 0, "max stations to process in one run (0 = no limit)")
	cmd.Flags().Float64Var(&sleepSeconds, "sleep", 1.0, "seconds between requests (Nominatim politeness delay)")
	cmd.Flags().StringVar(&opts.progressFile, "progress-file", defaultGeoProgressFile, "progress file for skipped stations")
	cmd.Flags().StringVar(&language, "lang", "en", "reverse-geocode language")

	return cmd
}

type geoOptions struct {
	max          int
	progressFile string
}

func runGeo(ctx context.Context, logger *zerolog.Logger, dataFile string, client *geocode.Client, opts geoOptions) error {
	list, err := stations.Load(dataFile)
	if err != nil {
		return err
	}
	skip := stations.LoadSkipList(opts.progressFile)

	processed := 0
	for _, st := range list {
		if opts.max > 0 && processed >= opts.max {
			break
		}
		if ctx.Err() != nil {
			return interrupted(logger, skip, opts.progressFile)
		}

		if skip.Contains(st.UUID) {
			continue
		}
		if !st.HasCoordinates() {
			skip.Add(st.UUID)
			continue
		}

		logger.Info().
			Str("name", st.Name).
			Str("station", st.UUID).
			Str("lat", st.GeoLat.String()).
			Str("lon", st.GeoLong.String()).
			Msg("Checking")

		lat, latErr := st.GeoLat.Float()
		lon, lonErr := st.GeoLong.Float()
		if latErr != nil || lonErr != nil {
			logger.Warn().Str("station", st.UUID).Msg("Unparseable coordinates, skipping")
			skip.Add(st.UUID)
			continue
		}

		result, err := client.Reverse(ctx, lat, lon)
		if err != nil {
			if ctx.Err() != nil {
				return interrupted(logger, skip, opts.progressFile)
			}
			logger.Warn().Err(err).Str("station", st.UUID).Msg("Reverse geocoding failed, skipping")
			skip.Add(st.UUID)
			continue
		}

		region := matchRegion(result.Address)
		if region == "" {
			logger.Info().Str("station", st.UUID).Msg("No region match found, skipping")
			skip.Add(st.UUID)
			continue
		}

		if city := deriveCity(st); city != "" {
			st.City = city
		}
		st.State = region
		if err := stations.Save(dataFile, list); err != nil {
			return err
		}
		logger.Info().
			Str("station", st.UUID).
			Str("state", region).
			Msg("Updated state")
		processed++
	}

	if err := skip.Save(opts.progressFile); err != nil {
		logger.Warn().Err(err).Str("file", opts.progressFile).Msg("Could not save progress file")
	}
	return nil
}

// matchRegion resolves the first canonical region referenced by the
// address fields, in field order.
func matchRegion(addr geocode.Address) string {
	for _, field := range addressFields {
		value := addr.Field(field)
		if value == "" {
			continue
		}
		if region, ok := regions.Match(value); ok {
			return region
		}
	}
	return ""
}

// deriveCity picks a cleaned city name from the existing city value, or from
// a city-like (non-canonical) state value.
func deriveCity(st *stations.Station) string {
	if city := strings.TrimSpace(st.City); city != "" {
		return regions.CleanCity(city)
	}
	state := strings.TrimSpace(st.State)
	if state != "" && !regions.IsCanonical(st.State) {
		return regions.CleanCity(state)
	}
	return ""
}
