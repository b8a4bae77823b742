// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"errors"
	"io"

	"github.com/charmbracelet/huh"
)

// Confirm asks a yes/no question. When out is not a terminal the default is
// returned without prompting, so scripted runs never block.
func Confirm(out io.Writer, title, description string, defaultValue bool) (bool, error) {
	if !isTerminal(out) {
		return defaultValue, nil
	}

	value := defaultValue
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&value).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return value, nil
}
