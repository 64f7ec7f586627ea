// Package app provides the application context and dependency management for
// the stationctl CLI: configuration, logging, and the root command wiring for
// the dataset maintenance subcommands.
package app

import (
	"github.com/rs/zerolog"

	"github.com/e-radio/stationctl/pkg/errors"
)

// App represents the stationctl application with its dependencies. Each
// subcommand is a self-contained batch job; the app only centralizes
// configuration and logging.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapIO("load", "config", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// DataFile returns the path of the station dataset file.
func (a *App) DataFile() string {
	return a.config.DataFile
}

// IconsDir returns the directory holding station icon files.
func (a *App) IconsDir() string {
	return a.config.IconsDir
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
