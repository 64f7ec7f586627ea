package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/e-radio/stationctl/pkg/errors"
	"github.com/e-radio/stationctl/pkg/regions"
	"github.com/e-radio/stationctl/pkg/stations"
)

const (
	defaultMapProgressFile = "tools/state-city-only-progress.json"
	defaultCityMapFile     = "tools/city-region-map.json"
	defaultUnknownFile     = "tools/state-city-only-unknown.json"
)

// newMapCommand creates the normalize map subcommand.
func newMapCommand(app AppContext) *cobra.Command {
	var opts mapOptions

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Normalize via the static city→region lookup table",
		Long: `Map scans every station whose state holds a non-region value and whose
city is unset, and resolves the region through the static city→region table.
Cities missing from the table are collected into a side file and the station
is skipped; a skipped station is re-examined once the table gains its entry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(cmd.Context(), app.Logger(), app.DataFile(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.max, "max", 0, "max stations to process in one run (0 = no limit)")
	cmd.Flags().StringVar(&opts.progressFile, "progress-file", defaultMapProgressFile, "progress file for skipped stations")
	cmd.Flags().StringVar(&opts.cityMapFile, "city-map", defaultCityMapFile, "static city→region JSON map")
	cmd.Flags().StringVar(&opts.unknownFile, "unknown-file", defaultUnknownFile, "side file collecting cities missing from the map")

	return cmd
}

type mapOptions struct {
	max          int
	progressFile string
	cityMapFile  string
	unknownFile  string
}

func runMap(ctx context.Context, logger *zerolog.Logger, dataFile string, opts mapOptions) error {
	list, err := stations.Load(dataFile)
	if err != nil {
		return err
	}

	cityMap := regions.LoadCityMap(opts.cityMapFile)
	skip := stations.LoadSkipList(opts.progressFile)
	unknown := map[string]struct{}{}

	processed := 0
	for _, st := range list {
		if opts.max > 0 && processed >= opts.max {
			break
		}
		if ctx.Err() != nil {
			return interrupted(logger, skip, opts.progressFile)
		}

		if regions.IsCanonical(st.State) || strings.TrimSpace(st.City) != "" {
			continue
		}
		city := strings.TrimSpace(st.State)
		if city == "" {
			continue
		}

		region, known := cityMap.Lookup(city)

		// Already-skipped stations are re-examined only once the table
		// has gained their entry.
		if skip.Contains(st.UUID) && !known {
			continue
		}

		logger.Info().
			Str("name", st.Name).
			Str("station", st.UUID).
			Msg("Checking")

		if !known {
			unknown[city] = struct{}{}
			skip.Add(st.UUID)
			continue
		}
		if !regions.IsCanonical(region) {
			logger.Warn().
				Str("city", city).
				Str("region", region).
				Msg("Invalid region in city map")
			skip.Add(st.UUID)
			continue
		}

		st.City = city
		st.State = region
		if err := stations.Save(dataFile, list); err != nil {
			return err
		}
		logger.Info().
			Str("station", st.UUID).
			Str("city", city).
			Str("state", region).
			Msg("Updated city and state")
		processed++
		skip.Discard(st.UUID)
	}

	if err := skip.Save(opts.progressFile); err != nil {
		logger.Warn().Err(err).Str("file", opts.progressFile).Msg("Could not save progress file")
	}
	if len(unknown) > 0 {
		if err := writeUnknownCities(opts.unknownFile, unknown); err != nil {
			logger.Warn().Err(err).Str("file", opts.unknownFile).Msg("Could not save unknown-city list")
		} else {
			logger.Info().Int("cities", len(unknown)).Str("file", opts.unknownFile).Msg("Unknown cities recorded")
		}
	}
	return nil
}

// writeUnknownCities persists the sorted set of cities the lookup table
// could not resolve.
func writeUnknownCities(path string, unknown map[string]struct{}) error {
	cities := make([]string, 0, len(unknown))
	for city := range unknown {
		cities = append(cities, city)
	}
	sort.Strings(cities)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cities); err != nil {
		return errors.WrapParse("json", path, err)
	}
	return errors.WrapIO("write", path, os.WriteFile(path, buf.Bytes(), 0o644))
}

// interrupted persists the skip-list and surfaces the reserved exit status.
func interrupted(logger *zerolog.Logger, skip *stations.SkipList, progressFile string) error {
	if err := skip.Save(progressFile); err != nil {
		logger.Warn().Err(err).Str("file", progressFile).Msg("Could not save progress file")
	}
	logger.Info().Msg("Interrupted, progress saved")
	return errors.ErrInterrupted
}
