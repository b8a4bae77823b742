// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

type (
	// ReportFunc receives transfer progress. total is -1 when unknown.
	ReportFunc func(done, total int64)

	// progressModel displays a download progress bar.
	progressModel struct {
		title   string
		bar     progress.Model
		percent float64
		err     error
		done    bool
	}

	progressMsg struct {
		done  int64
		total int64
	}

	progressDoneMsg struct {
		err error
	}
)

// Download runs fn while displaying a progress bar titled title. fn receives
// a ReportFunc to call as bytes arrive. When out is not a terminal, progress
// is reported as occasional percentage lines instead.
func Download(out io.Writer, title string, fn func(report ReportFunc) error) error {
	if !isTerminal(out) {
		return downloadPlain(out, title, fn)
	}

	m := progressModel{
		title: title,
		bar:   progress.New(progress.WithDefaultGradient()),
	}

	p := tea.NewProgram(m, tea.WithOutput(out))
	go func() {
		err := fn(func(done, total int64) {
			p.Send(progressMsg{done: done, total: total})
		})
		p.Send(progressDoneMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress display failed: %w", err)
	}
	if fm, ok := final.(progressModel); ok {
		return fm.err
	}
	return nil
}

// downloadPlain prints a line every 10% so logs stay readable.
func downloadPlain(out io.Writer, title string, fn func(report ReportFunc) error) error {
	fmt.Fprintf(out, "%s\n", title)
	lastDecile := -1
	return fn(func(done, total int64) {
		if total <= 0 {
			return
		}
		decile := int(done * 10 / total)
		if decile > lastDecile {
			lastDecile = decile
			fmt.Fprintf(out, "  %d%%\n", decile*10)
		}
	})
}

// Init implements tea.Model.
func (m progressModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		if msg.total > 0 {
			m.percent = float64(msg.done) / float64(msg.total)
		}
		return m, nil
	case progressDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - len(m.title) - 8
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}
		return m, nil
	case tea.KeyMsg:
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m progressModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.title, m.bar.ViewAs(m.percent))
}
