// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

const (
	// ManagerAuto lets bgsetup pick whichever version manager is on PATH.
	ManagerAuto Manager = "auto"
	// ManagerPyenv installs interpreters via pyenv.
	ManagerPyenv Manager = "pyenv"
	// ManagerWinget installs interpreters via winget (Windows).
	ManagerWinget Manager = "winget"
	// ManagerBrew installs interpreters via Homebrew.
	ManagerBrew Manager = "brew"
	// ManagerApt installs interpreters via apt-get (Debian/Ubuntu).
	ManagerApt Manager = "apt"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidManager is returned when a Manager value is not recognized.
	ErrInvalidManager = errors.New("invalid version manager")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidRequirement is returned when the python requirement is not a
	// parseable version like "3.10" or "3.11.4".
	ErrInvalidRequirement = errors.New("invalid python version requirement")
	// ErrEmptyScript is returned when the app script path is empty.
	ErrEmptyScript = errors.New("app script path must not be empty")
	// ErrNoPackages is returned when the pip package list is empty.
	ErrNoPackages = errors.New("pip package list must not be empty")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Manager names the interpreter version manager used for installs.
	Manager string

	// InvalidManagerError is returned when a Manager value is not recognized.
	// It wraps ErrInvalidManager for errors.Is() compatibility.
	InvalidManagerError struct {
		Value Manager
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not
	// recognized. It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError aggregates all validation failures for a Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		Errors []error
	}

	// PythonConfig controls interpreter discovery and installation.
	PythonConfig struct {
		// Requirement is the minimum interpreter version, e.g. "3.10".
		Requirement string `mapstructure:"requirement"`
		// Path pins an explicit interpreter binary, bypassing discovery.
		Path string `mapstructure:"path"`
		// Manager selects the version manager used by --install.
		Manager Manager `mapstructure:"manager"`
	}

	// PipConfig controls package installation.
	PipConfig struct {
		// Packages are the pip requirement specifiers to install.
		Packages []string `mapstructure:"packages"`
		// IndexURL overrides the package index (--index-url).
		IndexURL string `mapstructure:"index_url"`
		// Upgrade passes --upgrade to pip install.
		Upgrade bool `mapstructure:"upgrade"`
		// ExtraArgs are appended verbatim to the pip install invocation.
		ExtraArgs []string `mapstructure:"extra_args"`
	}

	// AppConfig describes the application script to launch.
	AppConfig struct {
		// Script is the app entry point, resolved relative to the bgsetup
		// executable when not absolute.
		Script string `mapstructure:"script"`
		// Args are passed to the script verbatim.
		Args []string `mapstructure:"args"`
		// PauseOnExit waits for Enter after the app exits, so console
		// output stays readable when launched from a double-click.
		PauseOnExit bool `mapstructure:"pause_on_exit"`
	}

	// ModelsConfig controls AI model pre-fetching.
	ModelsConfig struct {
		// Dir is the model directory; empty means ~/.u2net.
		Dir string `mapstructure:"dir"`
		// AutoDownload pre-fetches models during setup.
		AutoDownload bool `mapstructure:"auto_download"`
		// Names selects which models from the registry to fetch.
		Names []string `mapstructure:"names"`
	}

	// HooksConfig holds optional shell snippets run around the setup
	// sequence. Snippets execute in the embedded POSIX shell interpreter,
	// not the host shell.
	HooksConfig struct {
		PreSetup  string `mapstructure:"pre_setup"`
		PostSetup string `mapstructure:"post_setup"`
	}

	// UIConfig holds terminal UI preferences.
	UIConfig struct {
		ColorScheme ColorScheme `mapstructure:"color_scheme"`
		Verbose     bool        `mapstructure:"verbose"`
	}

	// Config is the root bgsetup configuration.
	Config struct {
		Python PythonConfig `mapstructure:"python"`
		Pip    PipConfig    `mapstructure:"pip"`
		App    AppConfig    `mapstructure:"app"`
		Models ModelsConfig `mapstructure:"models"`
		Hooks  HooksConfig  `mapstructure:"hooks"`
		UI     UIConfig     `mapstructure:"ui"`
	}
)

// Error implements the error interface.
func (e *InvalidManagerError) Error() string {
	return fmt.Sprintf("invalid version manager %q (must be one of: auto, pyenv, winget, brew, apt)", e.Value)
}

// Unwrap returns ErrInvalidManager so callers can use errors.Is.
func (e *InvalidManagerError) Unwrap() error { return ErrInvalidManager }

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (must be one of: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme so callers can use errors.Is.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig so callers can use errors.Is.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// IsValid reports whether the Manager is one of the known values.
func (m Manager) IsValid() bool {
	switch m {
	case ManagerAuto, ManagerPyenv, ManagerWinget, ManagerBrew, ManagerApt:
		return true
	}
	return false
}

// IsValid reports whether the ColorScheme is one of the known values.
func (s ColorScheme) IsValid() bool {
	switch s {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true
	}
	return false
}

// DefaultConfig returns the configuration matching the stock distribution:
// Python >= 3.10 with PyQt5, Pillow and rembg[cpu], launching bg_remove.py
// from the directory the bgsetup executable lives in.
func DefaultConfig() *Config {
	return &Config{
		Python: PythonConfig{
			Requirement: "3.10",
			Manager:     ManagerAuto,
		},
		Pip: PipConfig{
			Packages: []string{"PyQt5", "Pillow", "rembg[cpu]"},
		},
		App: AppConfig{
			Script:      "bg_remove.py",
			PauseOnExit: true,
		},
		Models: ModelsConfig{
			AutoDownload: true,
			Names:        []string{"u2net", "u2netp"},
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Validate checks the Config and returns an InvalidConfigError aggregating
// every problem found, or nil when the config is usable.
func (c *Config) Validate() error {
	var errs []error

	if !semver.IsValid(canonicalRequirement(c.Python.Requirement)) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidRequirement, c.Python.Requirement))
	}
	if !c.Python.Manager.IsValid() {
		errs = append(errs, &InvalidManagerError{Value: c.Python.Manager})
	}
	if strings.TrimSpace(c.App.Script) == "" {
		errs = append(errs, ErrEmptyScript)
	}
	if len(c.Pip.Packages) == 0 {
		errs = append(errs, ErrNoPackages)
	}
	if !c.UI.ColorScheme.IsValid() {
		errs = append(errs, &InvalidColorSchemeError{Value: c.UI.ColorScheme})
	}

	if len(errs) > 0 {
		return &InvalidConfigError{Errors: errs}
	}
	return nil
}

// canonicalRequirement converts a requirement like "3.10" to the "v3.10"
// form golang.org/x/mod/semver expects.
func canonicalRequirement(req string) string {
	req = strings.TrimSpace(req)
	if req == "" {
		return ""
	}
	if !strings.HasPrefix(req, "v") {
		req = "v" + req
	}
	return req
}
