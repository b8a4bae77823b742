// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"bgsetup-cli/internal/config"
	"bgsetup-cli/internal/hooks"
	"bgsetup-cli/internal/launch"
	"bgsetup-cli/internal/pip"
	"bgsetup-cli/internal/python"
	"bgsetup-cli/internal/tui"

	"github.com/spf13/cobra"
)

var (
	// assumeYes skips the confirmation prompt.
	assumeYes bool
	// skipModels skips model pre-fetching.
	skipModels bool
	// skipLaunch stops after installation without starting the app.
	skipLaunch bool
	// keepGoing continues through phase failures, like the original
	// launcher script did.
	keepGoing bool
	// noPause suppresses the final wait-for-Enter.
	noPause bool

	// setupCmd is the explicit spelling of the root command's default run.
	setupCmd = &cobra.Command{
		Use:   "setup",
		Short: "Install the interpreter, packages and models, then launch the app",
		RunE:  runSetup,
	}
)

func init() {
	addSetupFlags(setupCmd)
}

// addSetupFlags registers the setup flags on a command. The root command
// shares them so `bgsetup` and `bgsetup setup` behave identically.
func addSetupFlags(c *cobra.Command) {
	c.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	c.Flags().BoolVar(&skipModels, "skip-models", false, "do not pre-fetch AI models")
	c.Flags().BoolVar(&skipLaunch, "skip-launch", false, "install everything but do not start the app")
	c.Flags().BoolVar(&keepGoing, "keep-going", false, "continue when a phase fails")
	c.Flags().BoolVar(&noPause, "no-pause", false, "do not wait for Enter before exiting")
}

// runSetup is the full bootstrap sequence: hooks, interpreter, packages,
// models, app launch, pause.
func runSetup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}

	preHook := hooks.Hook{Name: "pre_setup", Script: cfg.Hooks.PreSetup}
	postHook := hooks.Hook{Name: "post_setup", Script: cfg.Hooks.PostSetup}
	for _, h := range []hooks.Hook{preHook, postHook} {
		if err := h.Validate(); err != nil {
			return fail(err)
		}
	}

	if !assumeYes {
		ok, cerr := tui.Confirm(os.Stdout,
			"Set up the background-removal utility?",
			fmt.Sprintf("Installs Python %s+, %d pip packages and the AI models.",
				cfg.Python.Requirement, len(cfg.Pip.Packages)),
			true)
		if cerr != nil {
			return fail(cerr)
		}
		if !ok {
			fmt.Println(SubtitleStyle.Render("Aborted."))
			return nil
		}
	}

	runner := &hooks.Runner{Dir: ".", Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	if err := runner.Run(ctx, preHook); err != nil {
		if herr := phaseFailed("pre-setup hook", err); herr != nil {
			return herr
		}
	}

	fmt.Println(TitleStyle.Render("1/4") + " Python interpreter")
	interp, err := python.Ensure(ctx, cfg.Python, os.Stdout, os.Stderr)
	if err != nil {
		// Without an interpreter nothing below can run, so this phase is a
		// hard failure even with --keep-going.
		return fail(pythonEnsureError(err, cfg))
	}
	logger.Debug("interpreter resolved", "path", interp.String(), "version", interp.Version)
	fmt.Printf("  %s %s (%s)\n", SuccessStyle.Render("✓"), interp.String(), interp.Version)

	fmt.Println(TitleStyle.Render("2/4") + " Python packages")
	installer := pip.NewInstaller(interp, cfg.Pip)
	if err := installPackages(ctx, installer); err != nil {
		if herr := phaseFailed("packages", err); herr != nil {
			return herr
		}
	}

	fmt.Println(TitleStyle.Render("3/4") + " AI models")
	if skipModels || !cfg.Models.AutoDownload {
		fmt.Println(SubtitleStyle.Render("  skipped"))
	} else if err := downloadModels(ctx, cfg, os.Stdout); err != nil {
		if herr := phaseFailed("models", err); herr != nil {
			return herr
		}
	}

	if err := runner.Run(ctx, postHook); err != nil {
		if herr := phaseFailed("post-setup hook", err); herr != nil {
			return herr
		}
	}

	if skipLaunch {
		fmt.Println(SuccessStyle.Render("Setup complete.") + " Run " + CmdStyle.Render("bgsetup launch") + " to start the app.")
		return nil
	}

	fmt.Println(TitleStyle.Render("4/4") + " Launching " + CmdStyle.Render(cfg.App.Script))
	code, err := launchApp(ctx, cfg, interp)
	if err != nil {
		if herr := phaseFailed("launch", err); herr != nil {
			return herr
		}
	}

	maybePause(cfg)

	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// phaseFailed reports a failed phase. With --keep-going the failure is
// reduced to a warning and nil is returned so the sequence continues.
func phaseFailed(phase string, err error) error {
	if keepGoing {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+phase+": "+formatErrorForDisplay(err))
		return nil
	}
	return fail(err)
}

// maybePause waits for Enter when configured, the flag allows it, and a
// human is attached to stdin.
func maybePause(cfg *config.Config) {
	if noPause || !cfg.App.PauseOnExit {
		return
	}
	if !isTerminalFile(os.Stdin) {
		return
	}
	launch.Pause(os.Stdin, os.Stdout)
}
