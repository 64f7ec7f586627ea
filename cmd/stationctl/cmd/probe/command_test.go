package probe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-radio/stationctl/pkg/ffprobe"
)

func TestCollectURLs(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "urls.txt")
	require.NoError(t, os.WriteFile(input, []byte("http://c/stream\n\n  http://d/stream  \n"), 0o644))

	urls, err := collectURLs([]string{" http://a/stream ", "", "http://b/stream"}, input)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://a/stream",
		"http://b/stream",
		"http://c/stream",
		"http://d/stream",
	}, urls)
}

func TestCollectURLs_MissingInputFile(t *testing.T) {
	_, err := collectURLs(nil, filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}

func TestWriteResults_File(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.json")
	results := []ffprobe.Result{
		{URL: "http://a/stream?user=x&pass=y", Error: "probe failed"},
		{URL: "http://b/stream", Format: map[string]any{"format_name": "mp3"}},
	}

	require.NoError(t, writeResults(results, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasSuffix(text, "\n"))
	// query-string ampersands stay literal
	assert.Contains(t, text, "user=x&pass=y")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "probe failed", decoded[0]["error"])
	_, hasFormat := decoded[0]["format"]
	assert.False(t, hasFormat, "error records carry only url and error")
	assert.Equal(t, "mp3", decoded[1]["format"].(map[string]any)["format_name"])
}
