// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"bgsetup-cli/internal/config"
	"bgsetup-cli/internal/issue"
	"bgsetup-cli/internal/python"

	"github.com/spf13/cobra"
)

var (
	// pythonInstall enables installing the interpreter when missing or
	// too old.
	pythonInstall bool

	// pythonCmd reports on (and optionally installs) the interpreter.
	pythonCmd = &cobra.Command{
		Use:   "python",
		Short: "Locate or install the required Python interpreter",
		RunE:  runPython,
	}
)

func init() {
	pythonCmd.Flags().BoolVar(&pythonInstall, "install", false, "install the required version when missing or too old")
}

func runPython(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}

	if pythonInstall {
		interp, err := python.Ensure(ctx, cfg.Python, os.Stdout, os.Stderr)
		if err != nil {
			return fail(pythonEnsureError(err, cfg))
		}
		fmt.Printf("%s %s (%s)\n", SuccessStyle.Render("✓"), interp.String(), interp.Version)
		return nil
	}

	interp, err := python.Find(ctx, cfg.Python.Path)
	if err != nil {
		return fail(pythonEnsureError(err, cfg))
	}

	if verr := interp.Satisfies(cfg.Python.Requirement); verr != nil {
		fmt.Printf("%s %s (%s)\n", WarningStyle.Render("!"), interp.String(), interp.Version)
		return fail(pythonEnsureError(verr, cfg))
	}

	fmt.Printf("%s %s (%s)\n", SuccessStyle.Render("✓"), interp.String(), interp.Version)
	return nil
}

// pythonEnsureError decorates interpreter failures with the fixes available
// on this machine.
func pythonEnsureError(err error, cfg *config.Config) error {
	ctx := issue.NewContext().
		WithOperation("resolve python interpreter").
		Wrap(err)

	switch {
	case errors.Is(err, python.ErrNotFound):
		ctx.WithSuggestion("Install Python " + cfg.Python.Requirement + "+ from https://www.python.org/downloads/").
			WithSuggestion("Or run 'bgsetup python --install' to install it via your version manager")
	case errors.Is(err, python.ErrVersionTooOld):
		ctx.WithSuggestion("Run 'bgsetup python --install' to install Python " + cfg.Python.Requirement).
			WithSuggestion("Or set python.path in the config to a newer interpreter")
	case errors.Is(err, python.ErrNoManager):
		ctx.WithSuggestion("Install pyenv, Homebrew or use your distribution's package manager")
	}

	return ctx.BuildError()
}
