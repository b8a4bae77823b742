// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bgsetup-cli/internal/config"
	"bgsetup-cli/internal/issue"
	"bgsetup-cli/internal/launch"
	"bgsetup-cli/internal/python"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// launchCmd starts the app without touching the environment first.
var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Start the app without reinstalling anything",
	RunE:  runLaunch,
}

func runLaunch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}

	interp, err := python.Find(ctx, cfg.Python.Path)
	if err != nil {
		return fail(pythonEnsureError(err, cfg))
	}

	code, err := launchApp(ctx, cfg, interp)
	if err != nil {
		return fail(err)
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// launchApp runs the app script with inherited stdio and returns its exit
// code. Missing-script failures get actionable context.
func launchApp(ctx context.Context, cfg *config.Config, interp python.Interpreter) (int, error) {
	l := &launch.Launcher{
		Interp: interp,
		Script: cfg.App.Script,
		Args:   cfg.App.Args,
	}

	code, err := l.Run(ctx)
	if err != nil {
		if errors.Is(err, launch.ErrScriptNotFound) {
			return code, issue.NewContext().
				WithOperation("launch app").
				WithResource(cfg.App.Script).
				WithSuggestion("Keep " + cfg.App.Script + " next to the bgsetup executable").
				WithSuggestion("Or set app.script in the config to its full path").
				Wrap(err).
				BuildError()
		}
		return code, err
	}

	logger.Debug("app exited", "code", code)
	if code != 0 {
		fmt.Fprintln(os.Stderr, WarningStyle.Render(fmt.Sprintf("App exited with code %d", code)))
	}
	return code, nil
}

// isTerminalFile reports whether f is an interactive terminal.
func isTerminalFile(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
