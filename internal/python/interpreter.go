// SPDX-License-Identifier: MPL-2.0

// Package python locates a CPython interpreter on the host, checks it
// against a minimum version requirement, and installs a suitable version
// through the system's interpreter version manager when asked.
package python

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	// ErrNotFound indicates no Python interpreter could be located on PATH.
	ErrNotFound = errors.New("python interpreter not found")

	// ErrVersionTooOld is the sentinel error wrapped by VersionError.
	ErrVersionTooOld = errors.New("python version below requirement")

	// versionPattern extracts the version from `python --version` output,
	// e.g. "Python 3.11.4".
	versionPattern = regexp.MustCompile(`Python\s+(\d+\.\d+(?:\.\d+)?)`)

	//nolint:gochecknoglobals // Test seam for exec.LookPath.
	lookPath = exec.LookPath

	//nolint:gochecknoglobals // Test seam for querying `python --version`.
	queryVersion = realQueryVersion
)

type (
	// Interpreter is a located Python binary with its reported version.
	Interpreter struct {
		// Path is the binary path or command name resolvable via PATH.
		Path string
		// Args are prepended arguments (the Windows launcher is "py -3").
		Args []string
		// Version is the reported version without "v" prefix, e.g. "3.11.4".
		Version string
	}

	// VersionError is returned when the located interpreter is older than
	// the requirement. It wraps ErrVersionTooOld for errors.Is compatibility.
	VersionError struct {
		Found    string
		Required string
	}
)

// Error implements the error interface.
func (e *VersionError) Error() string {
	return fmt.Sprintf("python %s found, but %s or newer is required", e.Found, e.Required)
}

// Unwrap returns ErrVersionTooOld so callers can use errors.Is.
func (e *VersionError) Unwrap() error { return ErrVersionTooOld }

// Command builds an *exec.Cmd for the interpreter with the given arguments,
// carrying the launcher prefix (e.g. "py -3") when present.
func (i Interpreter) Command(ctx context.Context, args ...string) *exec.Cmd {
	full := append(append([]string{}, i.Args...), args...)
	return exec.CommandContext(ctx, i.Path, full...)
}

// String returns the display form of the interpreter invocation.
func (i Interpreter) String() string {
	if len(i.Args) == 0 {
		return i.Path
	}
	return i.Path + " " + strings.Join(i.Args, " ")
}

// Satisfies reports whether the interpreter version meets the minimum
// requirement (e.g. "3.10"). Returns a VersionError when it does not.
func (i Interpreter) Satisfies(requirement string) error {
	found := canonical(i.Version)
	required := canonical(requirement)
	if !semver.IsValid(found) {
		return fmt.Errorf("unparseable interpreter version %q", i.Version)
	}
	if !semver.IsValid(required) {
		return fmt.Errorf("unparseable version requirement %q", requirement)
	}
	if semver.Compare(found, required) < 0 {
		return &VersionError{Found: i.Version, Required: requirement}
	}
	return nil
}

// Find locates a usable interpreter. An explicit path wins; otherwise the
// conventional names are probed in order, including the Windows launcher.
// Candidates that exist on PATH but fail to report a version are skipped.
func Find(ctx context.Context, explicitPath string) (Interpreter, error) {
	if explicitPath != "" {
		version, err := queryVersion(ctx, explicitPath)
		if err != nil {
			return Interpreter{}, fmt.Errorf("configured interpreter %q is not usable: %w", explicitPath, err)
		}
		return Interpreter{Path: explicitPath, Version: version}, nil
	}

	for _, c := range candidates() {
		if _, err := lookPath(c.Path); err != nil {
			continue
		}
		version, err := queryVersion(ctx, c.Path, c.Args...)
		if err != nil {
			continue
		}
		c.Version = version
		return c, nil
	}

	return Interpreter{}, ErrNotFound
}

// candidates returns the probe order for the current platform.
func candidates() []Interpreter {
	if runtime.GOOS == "windows" {
		return []Interpreter{
			{Path: "py", Args: []string{"-3"}},
			{Path: "python"},
			{Path: "python3"},
		}
	}
	return []Interpreter{
		{Path: "python3"},
		{Path: "python"},
	}
}

// realQueryVersion runs `<python> --version` and parses the reported version.
// Python 2 printed the version to stderr, so both streams are inspected.
func realQueryVersion(ctx context.Context, path string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, path, append(args, "--version")...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to query version of %s: %w", path, err)
	}
	return ParseVersion(string(out))
}

// ParseVersion extracts the semantic version from `python --version` output.
func ParseVersion(out string) (string, error) {
	m := versionPattern.FindStringSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("unrecognized version output %q", strings.TrimSpace(out))
	}
	return m[1], nil
}

// canonical converts "3.11.4" to the "v3.11.4" form x/mod/semver expects.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
