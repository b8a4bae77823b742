// SPDX-License-Identifier: MPL-2.0

// Package model pre-fetches the ONNX models the background-removal library
// loads at runtime, so the first run of the app does not stall on a large
// download inside the GUI.
package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrUnknownModel is the sentinel error wrapped by UnknownModelError.
var ErrUnknownModel = errors.New("unknown model")

type (
	// Model describes one downloadable ONNX model.
	Model struct {
		// Name is the registry key, e.g. "u2net".
		Name string
		// Filename is the on-disk name, e.g. "u2net.onnx".
		Filename string
		// URL is the release asset to fetch.
		URL string
		// SHA256 is the expected hex digest; empty means unverified.
		SHA256 string
		// ApproxSize is a human-readable size hint for display.
		ApproxSize string
	}

	// UnknownModelError is returned when a requested model name is not in
	// the registry. It wraps ErrUnknownModel for errors.Is compatibility.
	UnknownModelError struct {
		Name string
	}
)

// Error implements the error interface.
func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model %q (available: u2net, u2netp)", e.Name)
}

// Unwrap returns ErrUnknownModel so callers can use errors.Is.
func (e *UnknownModelError) Unwrap() error { return ErrUnknownModel }

// registry lists the models the app can use. u2net is the full-quality
// network; u2netp is the lightweight variant.
var registry = []Model{
	{
		Name:       "u2net",
		Filename:   "u2net.onnx",
		URL:        "https://github.com/danielgatis/rembg/releases/download/v0.0.0/u2net.onnx",
		ApproxSize: "176MB",
	},
	{
		Name:       "u2netp",
		Filename:   "u2netp.onnx",
		URL:        "https://github.com/danielgatis/rembg/releases/download/v0.0.0/u2netp.onnx",
		ApproxSize: "4.7MB",
	},
}

// All returns every model in the registry.
func All() []Model {
	out := make([]Model, len(registry))
	copy(out, registry)
	return out
}

// Lookup resolves a model name against the registry.
func Lookup(name string) (Model, error) {
	for _, m := range registry {
		if m.Name == name {
			return m, nil
		}
	}
	return Model{}, &UnknownModelError{Name: name}
}

// Resolve maps the configured model names to registry entries, failing on
// the first unknown name.
func Resolve(names []string) ([]Model, error) {
	models := make([]Model, 0, len(names))
	for _, n := range names {
		m, err := Lookup(n)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

// Dir returns the model directory: the configured override, or ~/.u2net,
// which is where the background-removal library looks for models.
func Dir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".u2net"), nil
}

// Present reports whether the model file already exists in dir.
func (m Model) Present(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, m.Filename))
	return err == nil && !info.IsDir()
}
