package fillstate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/e-radio/stationctl/pkg/errors"
	"github.com/e-radio/stationctl/pkg/scrape"
	"github.com/e-radio/stationctl/pkg/stations"
)

const defaultHomepageProgressFile = "tools/state-fill-progress.json"

// newHomepageCommand creates the fill-state homepage subcommand.
func newHomepageCommand(app AppContext) *cobra.Command {
	var (
		maxItems     int
		sleepSeconds float64
		progressFile string
		once         bool
	)

	cmd := &cobra.Command{
		Use:   "homepage",
		Short: "Fill station state from homepage structured data",
		Long: `Homepage resolves each station's state by fetching its homepage and
mining the embedded application/ld+json blocks for an address locality or
served-area name. Stations without a homepage, with an unreachable page, or
without usable structured data are skipped and recorded in the progress
file.

With --once, at most one station is processed and the progress file is left
untouched — a manual single-step debugging mode.`,
		Example: `  stationctl fill-state homepage
  stationctl fill-state homepage --max 20 --sleep 0.5
  stationctl fill-state homepage --once`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher := scrape.NewFetcher()

			l := &loop{
				logger:       app.Logger(),
				dataFile:     app.DataFile(),
				progressFile: progressFile,
				max:          maxItems,
				sleep:        time.Duration(sleepSeconds * float64(time.Second)),
				once:         once,
				eligible: func(st *stations.Station) bool {
					return !st.HasState()
				},
				resolve: homepageResolver(app, fetcher),
			}
			return l.run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&maxItems, "max", 0, "max stations to process in one run (0 = no limit)")
	cmd.Flags().Float64Var(&sleepSeconds, "sleep", 0, "seconds to sleep between stations")
	cmd.Flags().StringVar(&progressFile, "progress-file", defaultHomepageProgressFile, "progress file for skipped stations")
	cmd.Flags().BoolVar(&once, "once", false, "process at most one station and leave the progress file untouched")

	return cmd
}

// homepageResolver resolves a station's state from its homepage JSON-LD.
func homepageResolver(app AppContext, fetcher *scrape.Fetcher) resolveFunc {
	return func(ctx context.Context, st *stations.Station) (string, error) {
		homepage := strings.TrimSpace(st.Homepage)
		if homepage == "" {
			return "", errors.New("missing homepage")
		}

		app.Logger().Debug().Str("homepage", homepage).Msg("Fetching homepage")

		page, err := fetcher.Fetch(ctx, homepage)
		if err != nil {
			return "", err
		}

		objects := scrape.FlattenObjects(scrape.ExtractJSONLD(page))
		state := scrape.PickState(objects)
		if state == "" {
			return "", fmt.Errorf("%w: no state in application/ld+json", errors.ErrNoMatch)
		}
		return state, nil
	}
}
