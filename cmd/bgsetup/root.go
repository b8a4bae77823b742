// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for bgsetup.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bgsetup-cli/internal/config"
	"bgsetup-cli/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// logger is the shared structured logger; level follows --verbose.
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})

	// rootCmd represents the base command. Invoked without a subcommand it
	// runs the full setup sequence, matching the one-shot launcher the tool
	// replaces.
	rootCmd = &cobra.Command{
		Use:   "bgsetup",
		Short: "Set up and launch the background-removal utility",
		Long: TitleStyle.Render("bgsetup") + SubtitleStyle.Render(" - set up and launch the background-removal utility") + `

bgsetup prepares everything the background-removal app needs and then
starts it: a Python interpreter of the required version, the PyQt5,
Pillow and rembg packages, and the u2net AI models.

Run it with no arguments for the full sequence, or use the subcommands
to run and diagnose individual phases.

` + SubtitleStyle.Render("Examples:") + `
  bgsetup                   Full setup, then launch the app
  bgsetup doctor            Report the environment without changing it
  bgsetup deps --check      List missing Python packages
  bgsetup models            Pre-fetch the AI models (~180MB)
  bgsetup launch            Start the app without reinstalling anything`,
		RunE: runSetup,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/bgsetup/config.toml)")

	addSetupFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(pythonCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(guideCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig wires the --config and --verbose flags into the config
// layer and the logger before any RunE executes.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFileOverride(cfgFile)
	}
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
}

// loadConfig loads and validates the configuration, applying the config
// file's verbose preference when the flag did not set it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose && !verbose {
		verbose = true
		logger.SetLevel(log.DebugLevel)
	}
	return cfg, nil
}

// formatErrorForDisplay renders actionable errors with their suggestions;
// other errors fall back to their message.
func formatErrorForDisplay(err error) string {
	if ae, ok := issue.AsActionable(err); ok {
		return ae.Render()
	}
	return err.Error()
}

// fail renders err (with suggestions, when actionable) and converts it to a
// bare ExitError so the framework does not print the message a second time.
func fail(err error) error {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err))
	return &ExitError{Code: 1}
}
