package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/e-radio/stationctl/pkg/logging"
)

// NewLogger creates a configured logger based on the application
// configuration. Log level precedence (highest to lowest):
//  1. -v/--verbose flag (shortcut for debug)
//  2. -q/--quiet flag (shortcut for warn)
//  3. --log-level flag / LOG_LEVEL environment variable
//  4. Default (info)
func NewLogger(config *Config) zerolog.Logger {
	return logging.NewFromConfig(&logging.Config{
		Level:   determineLogLevel(config),
		Format:  config.LogFormat,
		Output:  config.LogOutput,
		NoColor: config.NoColor,
	})
}

// determineLogLevel determines the log level using clear precedence rules.
func determineLogLevel(config *Config) string {
	if config.Verbose && config.Quiet {
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}
	if config.Verbose {
		return "debug"
	}
	if config.Quiet {
		return "warn"
	}
	if config.LogLevel != "" {
		return config.LogLevel
	}
	return "info"
}
