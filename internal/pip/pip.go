// SPDX-License-Identifier: MPL-2.0

// Package pip installs and inspects the application's Python packages by
// driving `python -m pip` on a resolved interpreter.
package pip

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"

	"bgsetup-cli/internal/config"
	"bgsetup-cli/internal/python"
)

// packageNamePattern validates requirement specifiers before they reach the
// pip command line: a PEP 508 name, an optional [extras] group, and an
// optional version constraint.
var packageNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+(\[[A-Za-z0-9._,-]+\])?([<>=!~]=?[A-Za-z0-9._*]+)?$`)

//nolint:gochecknoglobals // Test seam for process execution.
var runCommand = realRunCommand

type (
	// Installer drives pip through a specific interpreter.
	Installer struct {
		interp python.Interpreter
		cfg    config.PipConfig
	}

	// PackageStatus is one package's install state as reported by pip.
	PackageStatus struct {
		// Spec is the requirement specifier from config, e.g. "rembg[cpu]".
		Spec string
		// Name is the bare distribution name, e.g. "rembg".
		Name string
		// Installed reports whether `pip show` found the package.
		Installed bool
		// Version is the installed version, when installed.
		Version string
	}
)

// NewInstaller creates an Installer for the given interpreter and pip config.
func NewInstaller(interp python.Interpreter, cfg config.PipConfig) *Installer {
	return &Installer{interp: interp, cfg: cfg}
}

// ValidateSpecs rejects requirement specifiers that would not survive shell
// interpolation or that smuggle pip options.
func ValidateSpecs(specs []string) error {
	for _, s := range specs {
		if !packageNamePattern.MatchString(s) {
			return fmt.Errorf("invalid package specifier %q", s)
		}
	}
	return nil
}

// BaseName strips extras and version constraints from a requirement
// specifier: "rembg[cpu]>=2.0" becomes "rembg".
func BaseName(spec string) string {
	for i, r := range spec {
		switch r {
		case '[', '<', '>', '=', '!', '~':
			return spec[:i]
		}
	}
	return spec
}

// EnsurePip verifies pip is importable and bootstraps it via ensurepip when
// it is not. Some distro pythons ship without pip.
func (in *Installer) EnsurePip(ctx context.Context) error {
	res := runCommand(in.interp.Command(ctx, "-m", "pip", "--version"))
	if res.Succeeded() {
		return nil
	}

	res = runCommand(in.interp.Command(ctx, "-m", "ensurepip", "--upgrade"))
	if res.Error != nil {
		return fmt.Errorf("failed to bootstrap pip: %w", res.Error)
	}
	if !res.ExitCode.IsSuccess() {
		return fmt.Errorf("ensurepip exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.ErrOutput))
	}
	return nil
}

// InstallArgs returns the pip arguments for installing the configured
// packages (without the interpreter prefix).
func (in *Installer) InstallArgs() []string {
	args := []string{"-m", "pip", "install"}
	if in.cfg.Upgrade {
		args = append(args, "--upgrade")
	}
	if in.cfg.IndexURL != "" {
		args = append(args, "--index-url", in.cfg.IndexURL)
	}
	args = append(args, in.cfg.ExtraArgs...)
	args = append(args, in.cfg.Packages...)
	return args
}

// Install runs `python -m pip install` for the configured packages,
// streaming pip's output to the writers. Package specs are validated first.
func (in *Installer) Install(ctx context.Context, stdout, stderr io.Writer) error {
	if err := ValidateSpecs(in.cfg.Packages); err != nil {
		return err
	}

	cmd := in.interp.Command(ctx, in.InstallArgs()...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("pip install exited with code %d", exitErr.ExitCode())
		}
		return fmt.Errorf("failed to run pip: %w", err)
	}
	return nil
}

// Status reports the install state of every configured package via
// `pip show`, without modifying anything.
func (in *Installer) Status(ctx context.Context) ([]PackageStatus, error) {
	if err := ValidateSpecs(in.cfg.Packages); err != nil {
		return nil, err
	}

	statuses := make([]PackageStatus, 0, len(in.cfg.Packages))
	for _, spec := range in.cfg.Packages {
		name := BaseName(spec)
		res := runCommand(in.interp.Command(ctx, "-m", "pip", "show", name))
		if res.Error != nil {
			return nil, fmt.Errorf("failed to query package %s: %w", name, res.Error)
		}

		st := PackageStatus{Spec: spec, Name: name}
		if res.ExitCode.IsSuccess() {
			st.Installed = true
			st.Version = parseShowVersion(res.Output)
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// parseShowVersion extracts the Version field from `pip show` output.
func parseShowVersion(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, "Version:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// realRunCommand executes the command capturing both output streams.
func realRunCommand(cmd *exec.Cmd) *Result {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Output:    stdout.String(),
		ErrOutput: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = ExitCode(exitErr.ExitCode())
		} else {
			result.ExitCode = 1
			result.Error = err
		}
	}
	return result
}
