// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"bgsetup-cli/internal/config"
	"bgsetup-cli/internal/issue"
	"bgsetup-cli/internal/model"
	"bgsetup-cli/internal/tui"

	"github.com/spf13/cobra"
)

var (
	// modelsVerify re-hashes on-disk models against pinned digests.
	modelsVerify bool

	// modelsCmd pre-fetches the AI models so the app's first run does not
	// stall on a large download.
	modelsCmd = &cobra.Command{
		Use:   "models",
		Short: "Pre-fetch the AI models (~180MB on first run)",
		RunE:  runModels,
	}
)

func init() {
	modelsCmd.Flags().BoolVar(&modelsVerify, "verify", false, "verify existing model files against their checksums")
}

func runModels(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}

	if modelsVerify {
		return verifyModels(cfg)
	}

	if err := downloadModels(ctx, cfg, os.Stdout); err != nil {
		return fail(err)
	}
	return nil
}

// downloadModels fetches each configured model with a progress bar,
// skipping those already on disk. Shared by setup and the models command.
func downloadModels(ctx context.Context, cfg *config.Config, out io.Writer) error {
	models, err := model.Resolve(cfg.Models.Names)
	if err != nil {
		return err
	}

	dir, err := model.Dir(cfg.Models.Dir)
	if err != nil {
		return err
	}
	d := model.NewDownloader(dir)

	for _, m := range models {
		if m.Present(dir) {
			fmt.Fprintf(out, "  %s %s %s\n", SuccessStyle.Render("✓"), m.Filename, SubtitleStyle.Render("already present"))
			continue
		}

		title := fmt.Sprintf("  %s (%s)", m.Filename, m.ApproxSize)
		m := m
		err := tui.Download(out, title, func(report tui.ReportFunc) error {
			_, ferr := d.FetchWithRetry(ctx, m, model.ProgressFunc(report))
			return ferr
		})
		if err != nil {
			return issue.NewContext().
				WithOperation("download model").
				WithResource(m.Filename).
				WithSuggestion("Check your network connection and retry 'bgsetup models'").
				WithSuggestion("The app can also download models itself on first use").
				Wrap(err).
				BuildError()
		}
		fmt.Fprintf(out, "  %s %s\n", SuccessStyle.Render("✓"), m.Filename)
	}

	logger.Debug("models ready", "dir", dir)
	return nil
}

// verifyModels re-hashes present models; models without pinned digests are
// reported as unverifiable.
func verifyModels(cfg *config.Config) error {
	models, err := model.Resolve(cfg.Models.Names)
	if err != nil {
		return fail(err)
	}
	dir, err := model.Dir(cfg.Models.Dir)
	if err != nil {
		return fail(err)
	}
	d := model.NewDownloader(dir)

	failures := 0
	for _, m := range models {
		switch {
		case !m.Present(dir):
			fmt.Printf("  %s %s %s\n", WarningStyle.Render("!"), m.Filename, SubtitleStyle.Render("not downloaded"))
		case m.SHA256 == "":
			fmt.Printf("  %s %s %s\n", SubtitleStyle.Render("-"), m.Filename, SubtitleStyle.Render("no pinned checksum"))
		case d.Verify(m) != nil:
			fmt.Printf("  %s %s %s\n", ErrorStyle.Render("✗"), m.Filename, ErrorStyle.Render("checksum mismatch"))
			failures++
		default:
			fmt.Printf("  %s %s\n", SuccessStyle.Render("✓"), m.Filename)
		}
	}

	if failures > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}
