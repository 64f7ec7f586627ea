// Package dedupe implements the duplicate station remover: stations sharing
// a stream URL are collapsed to the best-scored record, the dataset is
// rewritten once, and icon files referenced only by removed records are
// deleted from disk.
package dedupe

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/e-radio/stationctl/pkg/stations"
)

// AppContext defines the interface the dedupe command needs from the app.
type AppContext interface {
	Logger() *zerolog.Logger
	DataFile() string
	IconsDir() string
}

// slugSuffixRE matches the random suffix appended to slugs minted for
// stations whose name collided with an existing one.
var slugSuffixRE = regexp.MustCompile(`(?i)-[a-z0-9]{6,8}$`)

// NewCommand creates the dedupe command.
func NewCommand(app AppContext) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove duplicate stations and orphaned icon files",
		Long: `Dedupe groups stations by stream URL and keeps the best record of each
group: stable (non-random-suffixed) slugs and non-empty names score higher,
ties break toward the shorter then lexicographically smaller slug. Stations
without a stream URL are never merged. The dataset is rewritten once, and
icon files referenced only by removed stations are deleted.`,
		Example: `  stationctl dedupe
  stationctl dedupe --dry-run
  stationctl dedupe --icons-dir public/station-icons`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.iconsDir == "" {
				opts.iconsDir = app.IconsDir()
			}
			return run(cmd.Context(), app.Logger(), app.DataFile(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.iconsDir, "icons-dir", "", "station icon directory (default from config)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "report what would change without writing or deleting")

	return cmd
}

type options struct {
	iconsDir string
	dryRun   bool
}

func run(ctx context.Context, logger *zerolog.Logger, dataFile string, opts options) error {
	list, err := stations.Load(dataFile)
	if err != nil {
		return err
	}

	kept, removed := partition(list)
	logger.Info().
		Int("stations", len(list)).
		Int("duplicates", len(removed)).
		Msg("Scanned dataset")

	if len(removed) > 0 && !opts.dryRun {
		if err := stations.Save(dataFile, kept); err != nil {
			return err
		}
	}
	for _, st := range removed {
		logger.Info().
			Str("station", st.UUID).
			Str("name", st.Name).
			Str("stream_url", strings.TrimSpace(st.StreamURL)).
			Bool("dry_run", opts.dryRun).
			Msg("Removed duplicate")
	}

	orphaned := orphanedIcons(kept, removed)
	deleted := 0
	for _, name := range orphaned {
		iconPath := filepath.Join(opts.iconsDir, name)
		if _, err := os.Stat(iconPath); err != nil {
			continue
		}
		if opts.dryRun {
			logger.Info().Str("icon", name).Msg("Would delete icon")
			deleted++
			continue
		}
		if err := os.Remove(iconPath); err != nil {
			logger.Warn().Err(err).Str("icon", name).Msg("Could not delete icon")
			continue
		}
		logger.Info().Str("icon", name).Msg("Deleted icon")
		deleted++
	}

	logger.Info().
		Int("removed_stations", len(removed)).
		Int("deleted_icons", deleted).
		Bool("dry_run", opts.dryRun).
		Msg("Dedupe complete")
	return nil
}

// partition splits the dataset into keepers and removed duplicates,
// preserving dataset order in both.
func partition(list []*stations.Station) (kept, removed []*stations.Station) {
	groups := map[string][]*stations.Station{}
	order := []string{}
	for _, st := range list {
		url := strings.TrimSpace(st.StreamURL)
		if _, seen := groups[url]; !seen {
			order = append(order, url)
		}
		groups[url] = append(groups[url], st)
	}

	keepers := map[string]bool{}
	for _, url := range order {
		group := groups[url]
		// Stations without a stream URL are never merged with each other.
		if url == "" || len(group) == 1 {
			for _, st := range group {
				keepers[st.UUID] = true
			}
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			si, sj := score(group[i]), score(group[j])
			if si != sj {
				return si > sj
			}
			slugI, slugJ := group[i].Slug, group[j].Slug
			if len(slugI) != len(slugJ) {
				return len(slugI) < len(slugJ)
			}
			return slugI < slugJ
		})
		keepers[group[0].UUID] = true
	}

	for _, st := range list {
		if keepers[st.UUID] {
			kept = append(kept, st)
		} else {
			removed = append(removed, st)
		}
	}
	return kept, removed
}

// score rates a duplicate-group member: a slug without the minted random
// suffix is worth far more than a name.
func score(st *stations.Station) int {
	s := 0
	if slug := strings.TrimSpace(st.Slug); slug != "" && !slugSuffixRE.MatchString(slug) {
		s += 10
	}
	if strings.TrimSpace(st.Name) != "" {
		s++
	}
	return s
}

// orphanedIcons returns the sorted icon basenames referenced by removed
// stations and by no surviving one.
func orphanedIcons(kept, removed []*stations.Station) []string {
	referenced := map[string]bool{}
	for _, st := range kept {
		if name := iconName(st.Favicon); name != "" {
			referenced[name] = true
		}
	}

	orphans := map[string]bool{}
	for _, st := range removed {
		if name := iconName(st.Favicon); name != "" && !referenced[name] {
			orphans[name] = true
		}
	}

	names := make([]string, 0, len(orphans))
	for name := range orphans {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// iconName extracts the basename of a favicon path under the station-icon
// directory; favicons hosted elsewhere are left alone.
func iconName(favicon string) string {
	if !strings.Contains(favicon, "/station-icons/") {
		return ""
	}
	return path.Base(favicon)
}
