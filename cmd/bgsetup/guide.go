// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed guide.md
var guideMarkdown string

// guideCmd renders the first-run guide in the terminal.
var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show the first-run guide",
	RunE:  runGuide,
}

func runGuide(_ *cobra.Command, _ []string) error {
	if !isTerminalFile(os.Stdout) {
		fmt.Print(guideMarkdown)
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fail(err)
	}

	out, err := r.Render(guideMarkdown)
	if err != nil {
		return fail(err)
	}
	fmt.Print(out)
	return nil
}
