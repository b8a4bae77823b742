// SPDX-License-Identifier: MPL-2.0

// Package config loads bgsetup configuration from a TOML file using Viper,
// layering defaults, the config file, and BGSETUP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"bgsetup-cli/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "bgsetup"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// envPrefix namespaces environment variable overrides (BGSETUP_*).
	envPrefix = "BGSETUP"
)

// ConfigDir returns the bgsetup configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the path the config file is loaded from, honoring
// the --config override.
func ConfigFilePath() (string, error) {
	if configFileOverride != "" {
		return configFileOverride, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// Load reads the config file (if present), applies environment overrides and
// validates the result. A missing config file is not an error; defaults are
// returned. An explicitly overridden config file must exist.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFileOverride != "" {
		if !fileExists(configFileOverride) {
			return nil, issue.NewContext().
				WithOperation("load configuration").
				WithResource(configFileOverride).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'bgsetup config init' to create a default config").
				Wrap(fmt.Errorf("config file not found: %s", configFileOverride)).
				BuildError()
		}
		v.SetConfigFile(configFileOverride)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, issue.NewContext().
				WithOperation("load configuration").
				WithResource(v.ConfigFileUsed()).
				WithSuggestion("Check that the file contains valid TOML syntax").
				WithSuggestion("See 'bgsetup config show' for the effective configuration").
				Wrap(err).
				BuildError()
		}
		// No config file: defaults plus env overrides apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, issue.NewContext().
			WithOperation("parse configuration").
			WithResource(v.ConfigFileUsed()).
			WithSuggestion("Check the value types against 'bgsetup config show'").
			Wrap(err).
			BuildError()
	}

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewContext().
			WithOperation("validate configuration").
			WithResource(v.ConfigFileUsed()).
			Wrap(err).
			BuildError()
	}

	return cfg, nil
}

// setDefaults registers every config key with its default so partial config
// files only need to name what they change.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("python.requirement", defaults.Python.Requirement)
	v.SetDefault("python.path", defaults.Python.Path)
	v.SetDefault("python.manager", string(defaults.Python.Manager))
	v.SetDefault("pip.packages", defaults.Pip.Packages)
	v.SetDefault("pip.index_url", defaults.Pip.IndexURL)
	v.SetDefault("pip.upgrade", defaults.Pip.Upgrade)
	v.SetDefault("pip.extra_args", defaults.Pip.ExtraArgs)
	v.SetDefault("app.script", defaults.App.Script)
	v.SetDefault("app.args", defaults.App.Args)
	v.SetDefault("app.pause_on_exit", defaults.App.PauseOnExit)
	v.SetDefault("models.dir", defaults.Models.Dir)
	v.SetDefault("models.auto_download", defaults.Models.AutoDownload)
	v.SetDefault("models.names", defaults.Models.Names)
	v.SetDefault("hooks.pre_setup", defaults.Hooks.PreSetup)
	v.SetDefault("hooks.post_setup", defaults.Hooks.PostSetup)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
