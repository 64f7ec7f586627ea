package fillstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-radio/stationctl/pkg/errors"
	"github.com/e-radio/stationctl/pkg/stations"
)

func writeDataset(t *testing.T, dir string, content string) string {
	t.Helper()
	path := filepath.Join(dir, "stations.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestLoop(dataFile, progressFile string, resolve resolveFunc) *loop {
	logger := zerolog.Nop()
	return &loop{
		logger:       &logger,
		dataFile:     dataFile,
		progressFile: progressFile,
		eligible: func(st *stations.Station) bool {
			return !st.HasState()
		},
		resolve: resolve,
	}
}

const twoStations = `[
  {"stationuuid": "one", "name": "First", "state": ""},
  {"stationuuid": "two", "name": "Second", "state": null}
]`

func TestLoop_ResolvesAndPersistsEachStation(t *testing.T) {
	dir := t.TempDir()
	dataFile := writeDataset(t, dir, twoStations)
	progressFile := filepath.Join(dir, "progress.json")

	var resolved []string
	l := newTestLoop(dataFile, progressFile, func(_ context.Context, st *stations.Station) (string, error) {
		resolved = append(resolved, st.UUID)
		return "Attica", nil
	})

	require.NoError(t, l.run(context.Background()))
	assert.Equal(t, []string{"one", "two"}, resolved)

	list, err := stations.Load(dataFile)
	require.NoError(t, err)
	assert.Equal(t, "Attica", list[0].State)
	assert.Equal(t, "Attica", list[1].State)

	_, err = os.Stat(progressFile)
	assert.True(t, os.IsNotExist(err), "no failures, no progress file")
}

func TestLoop_FailureGoesToSkipList(t *testing.T) {
	dir := t.TempDir()
	dataFile := writeDataset(t, dir, twoStations)
	progressFile := filepath.Join(dir, "progress.json")

	l := newTestLoop(dataFile, progressFile, func(_ context.Context, st *stations.Station) (string, error) {
		if st.UUID == "one" {
			return "", errors.New("unreachable")
		}
		return "Crete", nil
	})

	require.NoError(t, l.run(context.Background()))

	list, err := stations.Load(dataFile)
	require.NoError(t, err)
	assert.Empty(t, list[0].State, "failed station left unmutated")
	assert.Equal(t, "Crete", list[1].State)

	skip := stations.LoadSkipList(progressFile)
	assert.True(t, skip.Contains("one"))
	assert.False(t, skip.Contains("two"))
}

func TestLoop_RerunIsNoOp(t *testing.T) {
	dir := t.TempDir()
	dataFile := writeDataset(t, dir, twoStations)
	progressFile := filepath.Join(dir, "progress.json")

	calls := 0
	resolve := func(_ context.Context, st *stations.Station) (string, error) {
		calls++
		if st.UUID == "one" {
			return "", errors.New("unreachable")
		}
		return "Crete", nil
	}

	l := newTestLoop(dataFile, progressFile, resolve)
	require.NoError(t, l.run(context.Background()))
	firstRunCalls := calls

	before, err := os.ReadFile(dataFile)
	require.NoError(t, err)

	// Second run: everything is either resolved or skipped.
	l = newTestLoop(dataFile, progressFile, resolve)
	require.NoError(t, l.run(context.Background()))
	assert.Equal(t, firstRunCalls, calls, "no station re-queried on rerun")

	after, err := os.ReadFile(dataFile)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "rerun makes no mutations")
}

func TestLoop_MaxLimitsProcessing(t *testing.T) {
	dir := t.TempDir()
	dataFile := writeDataset(t, dir, twoStations)

	l := newTestLoop(dataFile, filepath.Join(dir, "progress.json"), func(_ context.Context, st *stations.Station) (string, error) {
		return "Attica", nil
	})
	l.max = 1

	require.NoError(t, l.run(context.Background()))

	list, err := stations.Load(dataFile)
	require.NoError(t, err)
	assert.Equal(t, "Attica", list[0].State)
	assert.Empty(t, list[1].State)
}

func TestLoop_OnceLeavesProgressUntouched(t *testing.T) {
	dir := t.TempDir()
	dataFile := writeDataset(t, dir, twoStations)
	progressFile := filepath.Join(dir, "progress.json")

	l := newTestLoop(dataFile, progressFile, func(_ context.Context, st *stations.Station) (string, error) {
		return "", errors.New("nope")
	})
	l.once = true

	require.NoError(t, l.run(context.Background()))

	_, err := os.Stat(progressFile)
	assert.True(t, os.IsNotExist(err), "--once must not write the progress file")
}

func TestLoop_OnceStopsAfterFirstAttempt(t *testing.T) {
	dir := t.TempDir()
	dataFile := writeDataset(t, dir, twoStations)
	progressFile := filepath.Join(dir, "progress.json")

	var attempted []string
	l := newTestLoop(dataFile, progressFile, func(_ context.Context, st *stations.Station) (string, error) {
		attempted = append(attempted, st.UUID)
		if st.UUID == "one" {
			return "", errors.New("unreachable")
		}
		return "Crete", nil
	})
	l.once = true

	require.NoError(t, l.run(context.Background()))
	assert.Equal(t, []string{"one"}, attempted, "a failed attempt still ends the single-step run")

	list, err := stations.Load(dataFile)
	require.NoError(t, err)
	assert.Empty(t, list[0].State)
	assert.Empty(t, list[1].State, "no station beyond the first candidate is touched")
}

func TestLoop_InterruptPersistsSkipList(t *testing.T) {
	dir := t.TempDir()
	dataFile := writeDataset(t, dir, twoStations)
	progressFile := filepath.Join(dir, "progress.json")

	ctx, cancel := context.WithCancel(context.Background())

	l := newTestLoop(dataFile, progressFile, func(_ context.Context, st *stations.Station) (string, error) {
		cancel()
		return "", ctx.Err()
	})

	err := l.run(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsInterrupted(err))

	_, statErr := os.Stat(progressFile)
	assert.NoError(t, statErr, "interrupt must persist the skip-list")
}

func TestLoop_MissingDataFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	l := newTestLoop(filepath.Join(dir, "absent.json"), filepath.Join(dir, "p.json"), nil)
	err := l.run(context.Background())
	require.Error(t, err)
	assert.False(t, errors.IsInterrupted(err))
}
