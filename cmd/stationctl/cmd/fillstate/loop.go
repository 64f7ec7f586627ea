package fillstate

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/e-radio/stationctl/pkg/errors"
	"github.com/e-radio/stationctl/pkg/stations"
)

// resolveFunc resolves a state value for one station. Any error means the
// station is skipped for the rest of this and subsequent runs.
type resolveFunc func(ctx context.Context, st *stations.Station) (string, error)

// loop is the shared driving loop of both fillers: repeatedly select the
// first eligible station not yet skipped, resolve it, persist the dataset on
// success or grow the skip-list on failure.
type loop struct {
	logger       *zerolog.Logger
	dataFile     string
	progressFile string
	max          int
	sleep        time.Duration
	once         bool
	eligible     func(*stations.Station) bool
	resolve      resolveFunc
}

func (l *loop) run(ctx context.Context) error {
	list, err := stations.Load(l.dataFile)
	if err != nil {
		return err
	}

	skip := stations.NewSkipList()
	if !l.once {
		skip = stations.LoadSkipList(l.progressFile)
	}

	processed := 0
	for l.max <= 0 || processed < l.max {
		if ctx.Err() != nil {
			return l.interrupted(skip)
		}

		target := l.next(list, skip)
		if target == nil {
			if skip.Len() > 0 {
				l.logger.Info().Msg("No more unprocessed stations to fill")
			} else {
				l.logger.Info().Msg("No stations to fill")
			}
			return nil
		}

		l.logger.Info().
			Str("name", target.Name).
			Str("station", target.UUID).
			Msg("Checking")

		state, err := l.resolve(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return l.interrupted(skip)
			}
			l.logger.Warn().
				Err(err).
				Str("station", target.UUID).
				Msg("Could not resolve state, skipping")
			skip.Add(target.UUID)
			l.persistSkip(skip)
			// Single-step mode stops after the first attempt, resolved
			// or not.
			if l.once {
				return nil
			}
			continue
		}

		target.State = state
		if err := stations.Save(l.dataFile, list); err != nil {
			return err
		}
		l.logger.Info().
			Str("station", target.UUID).
			Str("state", state).
			Msg("Updated state")
		processed++

		if l.once {
			return nil
		}

		if l.sleep > 0 && (l.max <= 0 || processed < l.max) {
			select {
			case <-ctx.Done():
				return l.interrupted(skip)
			case <-time.After(l.sleep):
			}
		}
	}
	return nil
}

// next returns the first eligible, non-skipped station, or nil.
func (l *loop) next(list []*stations.Station, skip *stations.SkipList) *stations.Station {
	for _, st := range list {
		if !l.eligible(st) {
			continue
		}
		if skip.Contains(st.UUID) {
			continue
		}
		return st
	}
	return nil
}

// interrupted persists the skip-list and surfaces the reserved exit status.
func (l *loop) interrupted(skip *stations.SkipList) error {
	l.persistSkip(skip)
	l.logger.Info().Msg("Interrupted, progress saved")
	return errors.ErrInterrupted
}

// persistSkip saves the skip-list; failure to save progress never aborts the
// run.
func (l *loop) persistSkip(skip *stations.SkipList) {
	if l.once {
		return
	}
	if err := skip.Save(l.progressFile); err != nil {
		l.logger.Warn().Err(err).Str("file", l.progressFile).Msg("Could not save progress file")
	}
}
