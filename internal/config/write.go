// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ErrConfigExists is returned by WriteDefault when the config file already
// exists and overwrite is false.
var ErrConfigExists = errors.New("config file already exists")

// tomlConfig mirrors Config with toml tags for serialization. Viper owns the
// mapstructure tags for loading; writing goes through go-toml directly so the
// emitted file keeps the section order below.
type tomlConfig struct {
	Python struct {
		Requirement string `toml:"requirement"`
		Path        string `toml:"path,omitempty"`
		Manager     string `toml:"manager"`
	} `toml:"python"`
	Pip struct {
		Packages  []string `toml:"packages"`
		IndexURL  string   `toml:"index_url,omitempty"`
		Upgrade   bool     `toml:"upgrade"`
		ExtraArgs []string `toml:"extra_args,omitempty"`
	} `toml:"pip"`
	App struct {
		Script      string   `toml:"script"`
		Args        []string `toml:"args,omitempty"`
		PauseOnExit bool     `toml:"pause_on_exit"`
	} `toml:"app"`
	Models struct {
		Dir          string   `toml:"dir,omitempty"`
		AutoDownload bool     `toml:"auto_download"`
		Names        []string `toml:"names"`
	} `toml:"models"`
	Hooks struct {
		PreSetup  string `toml:"pre_setup,omitempty"`
		PostSetup string `toml:"post_setup,omitempty"`
	} `toml:"hooks"`
	UI struct {
		ColorScheme string `toml:"color_scheme"`
		Verbose     bool   `toml:"verbose"`
	} `toml:"ui"`
}

// Marshal renders the Config as TOML.
func Marshal(c *Config) ([]byte, error) {
	var t tomlConfig
	t.Python.Requirement = c.Python.Requirement
	t.Python.Path = c.Python.Path
	t.Python.Manager = string(c.Python.Manager)
	t.Pip.Packages = c.Pip.Packages
	t.Pip.IndexURL = c.Pip.IndexURL
	t.Pip.Upgrade = c.Pip.Upgrade
	t.Pip.ExtraArgs = c.Pip.ExtraArgs
	t.App.Script = c.App.Script
	t.App.Args = c.App.Args
	t.App.PauseOnExit = c.App.PauseOnExit
	t.Models.Dir = c.Models.Dir
	t.Models.AutoDownload = c.Models.AutoDownload
	t.Models.Names = c.Models.Names
	t.Hooks.PreSetup = c.Hooks.PreSetup
	t.Hooks.PostSetup = c.Hooks.PostSetup
	t.UI.ColorScheme = string(c.UI.ColorScheme)
	t.UI.Verbose = c.UI.Verbose

	return toml.Marshal(t)
}

// WriteDefault writes the default config to the standard config file path,
// creating the config directory if needed. Returns the written path.
func WriteDefault(overwrite bool) (string, error) {
	path, err := ConfigFilePath()
	if err != nil {
		return "", err
	}

	if !overwrite && fileExists(path) {
		return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	data, err := Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
