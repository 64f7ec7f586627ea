// Package probe implements the stream prober: one ffprobe invocation per
// URL, one JSON result record per URL, order preserved.
package probe

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/e-radio/stationctl/pkg/errors"
	"github.com/e-radio/stationctl/pkg/ffprobe"
)

// AppContext defines the interface the probe command needs from the app.
type AppContext interface {
	Logger() *zerolog.Logger
}

// NewCommand creates the probe command.
func NewCommand(app AppContext) *cobra.Command {
	var (
		urls       []string
		inputFile  string
		outputFile string
		binary     string
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe stream URLs for media metadata",
		Long: `Probe runs ffprobe against each stream URL and collects its format and
stream metadata as a JSON array, one record per input URL in input order.
A URL that fails to probe yields an error record; it is never retried.`,
		Example: `  stationctl probe --url http://radio.example/stream
  stationctl probe --input urls.txt --output metadata.json
  stationctl probe --url http://a/stream --url http://b/stream`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := app.Logger()

			collected, err := collectURLs(urls, inputFile)
			if err != nil {
				return err
			}
			if len(collected) == 0 {
				return errors.New("no URLs provided, use --url or --input")
			}

			runner := ffprobe.NewRunner(binary)
			logger.Info().Int("urls", len(collected)).Msg("Probing streams")

			results := runner.ProbeAll(cmd.Context(), collected)
			for _, result := range results {
				if result.Error != "" {
					logger.Warn().Str("url", result.URL).Str("error", result.Error).Msg("Probe failed")
				} else {
					logger.Debug().Str("url", result.URL).Int("streams", len(result.Streams)).Msg("Probed")
				}
			}

			return writeResults(results, outputFile)
		},
	}

	cmd.Flags().StringArrayVar(&urls, "url", nil, "stream URL (can be repeated)")
	cmd.Flags().StringVar(&inputFile, "input", "", "text file with one URL per line")
	cmd.Flags().StringVar(&outputFile, "output", "", "output JSON file (defaults to stdout)")
	cmd.Flags().StringVar(&binary, "ffprobe", ffprobe.DefaultBinary, "path of the ffprobe binary")

	return cmd
}

// collectURLs merges --url flags and the lines of --input, trimmed, blanks
// dropped, flag URLs first.
func collectURLs(urls []string, inputFile string) ([]string, error) {
	var collected []string
	for _, u := range urls {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			collected = append(collected, trimmed)
		}
	}
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, errors.WrapIO("read", inputFile, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				collected = append(collected, trimmed)
			}
		}
	}
	return collected, nil
}

// writeResults renders the result array (2-space indent, trailing newline)
// to the output file, or stdout when none is given.
func writeResults(results []ffprobe.Result, outputFile string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return errors.WrapParse("json", outputFile, err)
	}

	if outputFile == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(outputFile, buf.Bytes(), 0o644); err != nil {
		return errors.WrapIO("write", outputFile, err)
	}
	return nil
}
