package stations

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-radio/stationctl/pkg/errors"
)

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)

	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestLoadSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stations.json")

	src := `[
  {
    "stationuuid": "a",
    "name": "Ένα FM",
    "state": "",
    "stream_url": "http://a.example/stream"
  }
]
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	list, err := Load(path)
	require.NoError(t, err)
	require.Len(t, list, 1)

	list[0].State = "Attica"
	require.NoError(t, Save(path, list))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasSuffix(text, "\n"), "file must end with a newline")
	assert.Contains(t, text, `"state": "Attica"`)
	// Greek text must not be \u-escaped
	assert.Contains(t, text, "Ένα FM")
	// 2-space indentation
	assert.Contains(t, text, "\n  {")

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, reloaded, 1)
	assert.Equal(t, "Attica", reloaded[0].State)
	assert.Equal(t, "http://a.example/stream", reloaded[0].StreamURL)
}

func TestMarshalDataset_EmptyIsArray(t *testing.T) {
	data, err := MarshalDataset(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}
