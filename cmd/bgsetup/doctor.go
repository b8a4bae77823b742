// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"bgsetup-cli/internal/launch"
	"bgsetup-cli/internal/model"
	"bgsetup-cli/internal/pip"
	"bgsetup-cli/internal/python"

	"github.com/spf13/cobra"
)

// doctorCmd reports the state of everything the app needs without changing
// any of it.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report the environment without changing it",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}

	problems := 0
	ok := func(format string, args ...any) {
		fmt.Printf("  %s %s\n", SuccessStyle.Render("✓"), fmt.Sprintf(format, args...))
	}
	bad := func(format string, args ...any) {
		fmt.Printf("  %s %s\n", ErrorStyle.Render("✗"), fmt.Sprintf(format, args...))
		problems++
	}

	fmt.Println(TitleStyle.Render("Interpreter"))
	interp, err := python.Find(ctx, cfg.Python.Path)
	switch {
	case err != nil:
		bad("no python interpreter found")
	case interp.Satisfies(cfg.Python.Requirement) != nil:
		bad("%s is %s, need %s+", interp.String(), interp.Version, cfg.Python.Requirement)
	default:
		ok("%s (%s)", interp.String(), interp.Version)
	}

	if manager, merr := python.DetectManager(cfg.Python.Manager); merr == nil {
		ok("version manager: %s", manager)
	} else if errors.Is(merr, python.ErrNoManager) {
		fmt.Printf("  %s no version manager found (installs unavailable)\n", WarningStyle.Render("!"))
	} else {
		bad("%v", merr)
	}

	fmt.Println(TitleStyle.Render("Packages"))
	if err == nil {
		installer := pip.NewInstaller(interp, cfg.Pip)
		statuses, serr := installer.Status(ctx)
		if serr != nil {
			bad("could not query pip: %v", serr)
		} else {
			for _, st := range statuses {
				if st.Installed {
					ok("%s %s", st.Name, st.Version)
				} else {
					bad("%s missing", st.Name)
				}
			}
		}
	} else {
		fmt.Printf("  %s skipped (no interpreter)\n", SubtitleStyle.Render("-"))
	}

	fmt.Println(TitleStyle.Render("Models"))
	models, merr := model.Resolve(cfg.Models.Names)
	dir, derr := model.Dir(cfg.Models.Dir)
	if merr != nil || derr != nil {
		bad("model config: %v", errors.Join(merr, derr))
	} else {
		for _, m := range models {
			if m.Present(dir) {
				ok("%s", m.Filename)
			} else {
				fmt.Printf("  %s %s not downloaded (fetched on demand)\n", WarningStyle.Render("!"), m.Filename)
			}
		}
	}

	fmt.Println(TitleStyle.Render("App"))
	if path, serr := launch.ResolveScript(cfg.App.Script); serr == nil {
		ok("%s", path)
	} else {
		bad("app script %s not found", cfg.App.Script)
	}

	if problems > 0 {
		fmt.Printf("\n%d problem(s) found. Run %s to fix the environment.\n", problems, CmdStyle.Render("bgsetup"))
		return &ExitError{Code: 1}
	}
	fmt.Println("\n" + SuccessStyle.Render("Everything looks good."))
	return nil
}
