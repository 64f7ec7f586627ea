package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/e-radio/stationctl/cmd/stationctl/cmd/dedupe"
	"github.com/e-radio/stationctl/cmd/stationctl/cmd/fillstate"
	"github.com/e-radio/stationctl/cmd/stationctl/cmd/normalize"
	"github.com/e-radio/stationctl/cmd/stationctl/cmd/probe"
	"github.com/e-radio/stationctl/pkg/errors"
)

// Reserved exit codes. Everything else fatal exits 1.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

// Execute runs the stationctl CLI with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "stationctl",
		Short:   "Radio station dataset maintenance tools",
		Version: a.version,
		Long: `Stationctl is a set of independent batch utilities that enrich and clean
the radio station dataset: filling missing state fields via reverse
geocoding or homepage structured data, normalizing city/region naming,
removing duplicate stations, and probing stream URLs for media metadata.

Every command reads the full dataset file, mutates qualifying records, and
writes the file back. The looped commands keep a skip-list side file so
repeated runs don't re-query stations that already failed.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.stationctl.yaml)")
	rootCmd.PersistentFlags().String("data", "", "station dataset file (default "+DefaultDataFile+")")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: auto, console, json")

	rootCmd.SetVersionTemplate("stationctl {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	dataFile := mustGetString(cmd, "data")
	logLevel := mustGetString(cmd, "log-level")
	logFormat := mustGetString(cmd, "log-format")

	a.config.UpdateFromFlags(verbose, quiet, noColor, dataFile, logLevel, logFormat)

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(probe.NewCommand(a))
	rootCmd.AddCommand(fillstate.NewCommand(a))
	rootCmd.AddCommand(normalize.NewCommand(a))
	rootCmd.AddCommand(dedupe.NewCommand(a))
}

// ExitCode maps an Execute error to the process exit status: 130 for a
// user-interrupted run whose progress has been persisted, 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.IsInterrupted(err):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}

// Exit prints the error (unless the run was merely interrupted) and
// terminates with the mapped status.
func Exit(err error) {
	code := ExitCode(err)
	if code == ExitFailure {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
	}
	os.Exit(code)
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't
// exist. Only for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't
// exist. Only for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
