package normalize

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-radio/stationctl/pkg/stations"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func mapFixture(t *testing.T) (string, mapOptions) {
	t.Helper()
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "stations.json")
	opts := mapOptions{
		progressFile: filepath.Join(dir, "progress.json"),
		cityMapFile:  filepath.Join(dir, "city-map.json"),
		unknownFile:  filepath.Join(dir, "unknown.json"),
	}
	return dataFile, opts
}

func TestRunMap_MovesCityAndSetsRegion(t *testing.T) {
	dataFile, opts := mapFixture(t)
	writeFile(t, dataFile, `[
  {"stationuuid": "a", "name": "Athens FM", "state": "Athens", "city": ""}
]`)
	writeFile(t, opts.cityMapFile, `{"athens": "Attica"}`)

	logger := zerolog.Nop()
	require.NoError(t, runMap(context.Background(), &logger, dataFile, opts))

	list, err := stations.Load(dataFile)
	require.NoError(t, err)
	assert.Equal(t, "Athens", list[0].City)
	assert.Equal(t, "Attica", list[0].State)

	skip := stations.LoadSkipList(opts.progressFile)
	assert.False(t, skip.Contains("a"), "resolved station leaves the skip set")
}

func TestRunMap_UnknownCityRecordedAndSkipped(t *testing.T) {
	dataFile, opts := mapFixture(t)
	writeFile(t, dataFile, `[
  {"stationuuid": "a", "state": "Atlantis", "city": ""}
]`)

	logger := zerolog.Nop()
	require.NoError(t, runMap(context.Background(), &logger, dataFile, opts))

	list, err := stations.Load(dataFile)
	require.NoError(t, err)
	assert.Equal(t, "Atlantis", list[0].State, "miss leaves the record unmutated")

	skip := stations.LoadSkipList(opts.progressFile)
	assert.True(t, skip.Contains("a"))

	data, err := os.ReadFile(opts.unknownFile)
	require.NoError(t, err)
	var cities []string
	require.NoError(t, json.Unmarshal(data, &cities))
	assert.Equal(t, []string{"Atlantis"}, cities)
}

func TestRunMap_SkippedStationRetriedAfterMapGainsEntry(t *testing.T) {
	dataFile, opts := mapFixture(t)
	writeFile(t, dataFile, `[
  {"stationuuid": "a", "state": "Volos", "city": ""}
]`)

	logger := zerolog.Nop()

	// First run: no entry, station skipped.
	require.NoError(t, runMap(context.Background(), &logger, dataFile, opts))
	assert.True(t, stations.LoadSkipList(opts.progressFile).Contains("a"))

	// Table gains the entry; the skipped station is re-examined.
	writeFile(t, opts.cityMapFile, `{"volos": "Thessaly"}`)
	require.NoError(t, runMap(context.Background(), &logger, dataFile, opts))

	list, err := stations.Load(dataFile)
	require.NoError(t, err)
	assert.Equal(t, "Volos", list[0].City)
	assert.Equal(t, "Thessaly", list[0].State)
	assert.False(t, stations.LoadSkipList(opts.progressFile).Contains("a"))
}

func TestRunMap_InvalidRegionInMap(t *testing.T) {
	dataFile, opts := mapFixture(t)
	writeFile(t, dataFile, `[
  {"stationuuid": "a", "state": "Athens", "city": ""}
]`)
	writeFile(t, opts.cityMapFile, `{"athens": "Narnia"}`)

	logger := zerolog.Nop()
	require.NoError(t, runMap(context.Background(), &logger, dataFile, opts))

	list, err := stations.Load(dataFile)
	require.NoError(t, err)
	assert.Equal(t, "Athens", list[0].State, "non-canonical mapping never applied")
	assert.True(t, stations.LoadSkipList(opts.progressFile).Contains("a"))
}

func TestRunMap_LeavesResolvedStationsAlone(t *testing.T) {
	dataFile, opts := mapFixture(t)
	writeFile(t, dataFile, `[
  {"stationuuid": "a", "state": "Attica", "city": "Athens"},
  {"stationuuid": "b", "state": "Crete", "city": ""},
  {"stationuuid": "c", "state": "", "city": ""}
]`)
	writeFile(t, opts.cityMapFile, `{"attica": "Attica", "crete": "Crete"}`)

	before, err := os.ReadFile(dataFile)
	require.NoError(t, err)

	logger := zerolog.Nop()
	require.NoError(t, runMap(context.Background(), &logger, dataFile, opts))

	after, err := os.ReadFile(dataFile)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "canonical/blank states make no mutations")
}
