// Package ffprobe wraps the external ffprobe tool for stream metadata
// inspection. One invocation per URL; failures are captured as per-URL error
// records rather than surfaced as errors, so a batch always produces one
// result per input.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"
)

// DefaultBinary is the probe executable looked up on PATH.
const DefaultBinary = "ffprobe"

// fixedArgs are passed before the URL on every invocation.
var fixedArgs = []string{
	"-v", "quiet",
	"-print_format", "json",
	"-show_format", "-show_streams",
}

// Result is the probe outcome for one URL. Successful results carry the
// tool's format and stream objects; failed ones carry only an error string.
type Result struct {
	URL     string
	Format  map[string]any
	Streams []map[string]any
	Error   string
}

// MarshalJSON emits either {url, error} or {url, format, streams}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			URL   string `json:"url"`
			Error string `json:"error"`
		}{r.URL, r.Error})
	}
	format := r.Format
	if format == nil {
		format = map[string]any{}
	}
	streams := r.Streams
	if streams == nil {
		streams = []map[string]any{}
	}
	return json.Marshal(struct {
		URL     string           `json:"url"`
		Format  map[string]any   `json:"format"`
		Streams []map[string]any `json:"streams"`
	}{r.URL, format, streams})
}

// Runner invokes the probe binary.
type Runner struct {
	binary string
}

// NewRunner creates a Runner for the given binary path; empty means the
// default looked up on PATH.
func NewRunner(binary string) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Runner{binary: binary}
}

// Probe inspects one URL. The result is never an error: subprocess failure
// and malformed output both yield an error record for that URL.
func (r *Runner) Probe(ctx context.Context, url string) Result {
	cmd := exec.CommandContext(ctx, r.binary, append(append([]string{}, fixedArgs...), url)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = "ffprobe failed"
		}
		return Result{URL: url, Error: message}
	}

	return parseOutput(url, stdout.Bytes())
}

// ProbeAll inspects each URL in order and returns one result per input.
func (r *Runner) ProbeAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, 0, len(urls))
	for _, url := range urls {
		results = append(results, r.Probe(ctx, url))
	}
	return results
}

// parseOutput converts the tool's JSON stdout into a Result.
func parseOutput(url string, stdout []byte) Result {
	var payload struct {
		Format  map[string]any   `json:"format"`
		Streams []map[string]any `json:"streams"`
	}
	if err := json.Unmarshal(stdout, &payload); err != nil {
		return Result{URL: url, Error: "invalid ffprobe JSON output"}
	}
	return Result{URL: url, Format: payload.Format, Streams: payload.Streams}
}
