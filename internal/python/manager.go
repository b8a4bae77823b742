// SPDX-License-Identifier: MPL-2.0

package python

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"bgsetup-cli/internal/config"
)

// ErrNoManager indicates no supported interpreter version manager was found
// on PATH, so bgsetup cannot install Python itself.
var ErrNoManager = errors.New("no supported python version manager found")

// managerProbeOrder is the detection order for ManagerAuto. pyenv comes
// first: when a user has it, it is the manager they expect to own versions.
var managerProbeOrder = []config.Manager{
	config.ManagerPyenv,
	config.ManagerWinget,
	config.ManagerBrew,
	config.ManagerApt,
}

// managerBinaries maps each manager to the binary probed on PATH.
var managerBinaries = map[config.Manager]string{
	config.ManagerPyenv:  "pyenv",
	config.ManagerWinget: "winget",
	config.ManagerBrew:   "brew",
	config.ManagerApt:    "apt-get",
}

// DetectManager resolves the configured manager to a concrete one. For
// ManagerAuto the PATH is probed in preference order; a pinned manager is
// verified to be present.
func DetectManager(configured config.Manager) (config.Manager, error) {
	if configured != config.ManagerAuto {
		if _, err := lookPath(managerBinaries[configured]); err != nil {
			return "", fmt.Errorf("configured version manager %q not found on PATH: %w", configured, err)
		}
		return configured, nil
	}

	for _, m := range managerProbeOrder {
		if _, err := lookPath(managerBinaries[m]); err == nil {
			return m, nil
		}
	}
	return "", ErrNoManager
}

// InstallArgs returns the argv (program + arguments) that installs the given
// Python series through the manager. The requirement is a minimum version
// like "3.10"; managers that address packages by series receive its
// major.minor form.
func InstallArgs(manager config.Manager, requirement string) ([]string, error) {
	series := majorMinor(requirement)
	switch manager {
	case config.ManagerPyenv:
		// -s skips the install when the version already exists.
		return []string{"pyenv", "install", "-s", series}, nil
	case config.ManagerWinget:
		return []string{
			"winget", "install", "--id", "Python.Python." + series,
			"--silent", "--accept-package-agreements", "--accept-source-agreements",
		}, nil
	case config.ManagerBrew:
		return []string{"brew", "install", "python@" + series}, nil
	case config.ManagerApt:
		return []string{"apt-get", "install", "-y", "python" + series}, nil
	default:
		return nil, fmt.Errorf("unsupported version manager %q", manager)
	}
}

// Install runs the manager's install command for the required version,
// streaming its output to the given writers. The manager performs the actual
// download and install; bgsetup only sequences it.
func Install(ctx context.Context, manager config.Manager, requirement string, stdout, stderr io.Writer) error {
	argv, err := InstallArgs(manager, requirement)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", argv[0], err)
	}
	return nil
}

// Ensure returns an interpreter satisfying the requirement, installing one
// through the version manager when discovery fails or the found interpreter
// is too old. Output from the manager is streamed to the writers.
func Ensure(ctx context.Context, cfg config.PythonConfig, stdout, stderr io.Writer) (Interpreter, error) {
	interp, err := Find(ctx, cfg.Path)
	var verr error
	if err == nil {
		verr = interp.Satisfies(cfg.Requirement)
		if verr == nil {
			return interp, nil
		}
	}

	manager, merr := DetectManager(cfg.Manager)
	if merr != nil {
		if err != nil {
			return Interpreter{}, fmt.Errorf("%w (and %v)", err, merr)
		}
		return Interpreter{}, fmt.Errorf("%w (and %v)", verr, merr)
	}

	if ierr := Install(ctx, manager, cfg.Requirement, stdout, stderr); ierr != nil {
		return Interpreter{}, ierr
	}

	// Re-discover: the manager may have installed a series-suffixed binary.
	interp, err = findAfterInstall(ctx, cfg)
	if err != nil {
		return Interpreter{}, fmt.Errorf("interpreter still not usable after install: %w", err)
	}
	if verr := interp.Satisfies(cfg.Requirement); verr != nil {
		return Interpreter{}, verr
	}
	return interp, nil
}

// findAfterInstall retries discovery, additionally probing the
// series-suffixed binary name (python3.11) that brew and apt install.
func findAfterInstall(ctx context.Context, cfg config.PythonConfig) (Interpreter, error) {
	suffixed := "python" + majorMinor(cfg.Requirement)
	if _, err := lookPath(suffixed); err == nil {
		if version, verr := queryVersion(ctx, suffixed); verr == nil {
			return Interpreter{Path: suffixed, Version: version}, nil
		}
	}
	return Find(ctx, cfg.Path)
}

// majorMinor trims a requirement like "3.10.2" or "v3.10" to "3.10".
func majorMinor(requirement string) string {
	v := strings.TrimPrefix(strings.TrimSpace(requirement), "v")
	parts := strings.SplitN(v, ".", 3)
	if len(parts) >= 2 {
		return parts[0] + "." + parts[1]
	}
	return v
}
