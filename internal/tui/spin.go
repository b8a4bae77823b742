// SPDX-License-Identifier: MPL-2.0

// Package tui provides the small set of terminal UI components bgsetup uses:
// a spinner for long-running steps, a progress bar for model downloads, and
// a confirmation prompt. Every component degrades to plain output when
// stdout is not a terminal.
package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// spinnerStyle colors the spinner glyph.
var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

type (
	// spinModel runs a function while animating a spinner.
	spinModel struct {
		title   string
		spinner spinner.Model
		err     error
		done    bool
	}

	// spinDoneMsg is sent when the wrapped function returns.
	spinDoneMsg struct {
		err error
	}
)

// isTerminal reports whether the writer is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Spin runs fn while displaying a spinner with the given title. When out is
// not a terminal the title is printed once and fn runs directly.
func Spin(out io.Writer, title string, fn func() error) error {
	if !isTerminal(out) {
		fmt.Fprintf(out, "%s\n", title)
		return fn()
	}

	s := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(spinnerStyle))
	m := spinModel{title: title, spinner: s}

	p := tea.NewProgram(m, tea.WithOutput(out))
	go func() {
		p.Send(spinDoneMsg{err: fn()})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("spinner failed: %w", err)
	}
	if fm, ok := final.(spinModel); ok {
		return fm.err
	}
	return nil
}

// Init implements tea.Model.
func (m spinModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m spinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		// The wrapped function owns cancellation; swallow keys so stray
		// input does not corrupt the display.
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

// View implements tea.Model.
func (m spinModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.title)
}
