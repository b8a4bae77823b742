// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"bgsetup-cli/internal/issue"
	"bgsetup-cli/internal/pip"
	"bgsetup-cli/internal/python"
	"bgsetup-cli/internal/tui"

	"github.com/spf13/cobra"
)

var (
	// depsCheck reports missing packages without installing.
	depsCheck bool

	// depsCmd installs or checks the app's pip packages.
	depsCmd = &cobra.Command{
		Use:   "deps",
		Short: "Install the app's Python packages via pip",
		RunE:  runDeps,
	}
)

func init() {
	depsCmd.Flags().BoolVar(&depsCheck, "check", false, "report missing packages without installing")
}

func runDeps(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}

	interp, err := python.Find(ctx, cfg.Python.Path)
	if err != nil {
		return fail(pythonEnsureError(err, cfg))
	}

	installer := pip.NewInstaller(interp, cfg.Pip)

	if depsCheck {
		var statuses []pip.PackageStatus
		err := tui.Spin(os.Stdout, "Checking installed packages...", func() error {
			var serr error
			statuses, serr = installer.Status(ctx)
			return serr
		})
		if err != nil {
			return fail(err)
		}

		missing := 0
		for _, st := range statuses {
			if st.Installed {
				fmt.Printf("  %s %s %s\n", SuccessStyle.Render("✓"), st.Name, SubtitleStyle.Render(st.Version))
			} else {
				fmt.Printf("  %s %s %s\n", ErrorStyle.Render("✗"), st.Name, SubtitleStyle.Render("missing"))
				missing++
			}
		}
		if missing > 0 {
			fmt.Printf("\n%d missing; run %s to install.\n", missing, CmdStyle.Render("bgsetup deps"))
			return &ExitError{Code: 1}
		}
		return nil
	}

	if err := installPackages(ctx, installer); err != nil {
		return fail(err)
	}
	fmt.Println(SuccessStyle.Render("✓") + " packages installed")
	return nil
}

// installPackages bootstraps pip if needed and installs the configured
// packages, streaming pip's own output through.
func installPackages(ctx context.Context, installer *pip.Installer) error {
	if err := installer.EnsurePip(ctx); err != nil {
		return issue.NewContext().
			WithOperation("bootstrap pip").
			WithSuggestion("Reinstall Python with the pip component enabled").
			Wrap(err).
			BuildError()
	}

	if err := installer.Install(ctx, os.Stdout, os.Stderr); err != nil {
		return issue.NewContext().
			WithOperation("install packages").
			WithResource("pip").
			WithSuggestion("Check your network connection").
			WithSuggestion("Run 'bgsetup deps --check' to see which packages are missing").
			Wrap(err).
			BuildError()
	}
	return nil
}
