// SPDX-License-Identifier: MPL-2.0

// Package launch starts the application script with the resolved Python
// interpreter, wiring the console through and propagating the exit code.
package launch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"bgsetup-cli/internal/python"
)

// ErrScriptNotFound is the sentinel error wrapped by ScriptNotFoundError.
var ErrScriptNotFound = errors.New("app script not found")

var (
	//nolint:gochecknoglobals // Test seam for os.Executable().
	osExecutable = os.Executable

	//nolint:gochecknoglobals // Test seam for filepath.EvalSymlinks().
	evalSymlinks = filepath.EvalSymlinks
)

type (
	// Launcher runs an app script with a specific interpreter.
	Launcher struct {
		Interp python.Interpreter
		// Script is the entry point as configured (possibly relative).
		Script string
		// Args are passed to the script verbatim.
		Args []string

		// Stdin, Stdout, Stderr default to the process streams when nil.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// ScriptNotFoundError reports the paths that were probed.
	// It wraps ErrScriptNotFound for errors.Is compatibility.
	ScriptNotFoundError struct {
		Script string
		Probed []string
	}
)

// Error implements the error interface.
func (e *ScriptNotFoundError) Error() string {
	return fmt.Sprintf("app script %q not found (probed: %v)", e.Script, e.Probed)
}

// Unwrap returns ErrScriptNotFound so callers can use errors.Is.
func (e *ScriptNotFoundError) Unwrap() error { return ErrScriptNotFound }

// ResolveScript locates the app script. Absolute paths are used as-is;
// relative paths are probed against the directory of the bgsetup executable
// first (the script ships alongside it), then the current directory.
func ResolveScript(script string) (string, error) {
	if filepath.IsAbs(script) {
		if fileExists(script) {
			return script, nil
		}
		return "", &ScriptNotFoundError{Script: script, Probed: []string{script}}
	}

	var probed []string

	if execPath, err := resolveExecDir(); err == nil {
		candidate := filepath.Join(execPath, script)
		probed = append(probed, candidate)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, script)
		probed = append(probed, candidate)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return "", &ScriptNotFoundError{Script: script, Probed: probed}
}

// Run executes the script and returns its exit code. A non-zero exit is not
// an error; infrastructure failures (missing script, interpreter refusing to
// start) are.
func (l *Launcher) Run(ctx context.Context) (int, error) {
	scriptPath, err := ResolveScript(l.Script)
	if err != nil {
		return 1, err
	}

	args := append([]string{scriptPath}, l.Args...)
	cmd := l.Interp.Command(ctx, args...)
	cmd.Dir = filepath.Dir(scriptPath)
	cmd.Stdin = l.stdin()
	cmd.Stdout = l.stdout()
	cmd.Stderr = l.stderr()

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("failed to launch %s: %w", l.Script, err)
	}
	return 0, nil
}

// Pause blocks until the user presses Enter, mirroring the console `pause`
// at the end of the original launcher so output stays readable when the
// program was started from a double-click.
func Pause(in io.Reader, out io.Writer) {
	fmt.Fprint(out, "\nPress Enter to close...")
	_, _ = bufio.NewReader(in).ReadString('\n')
}

func (l *Launcher) stdin() io.Reader {
	if l.Stdin != nil {
		return l.Stdin
	}
	return os.Stdin
}

func (l *Launcher) stdout() io.Writer {
	if l.Stdout != nil {
		return l.Stdout
	}
	return os.Stdout
}

func (l *Launcher) stderr() io.Writer {
	if l.Stderr != nil {
		return l.Stderr
	}
	return os.Stderr
}

// resolveExecDir returns the directory of the running executable with
// symlinks resolved, so a symlinked bgsetup still finds its neighbors.
func resolveExecDir() (string, error) {
	execPath, err := osExecutable()
	if err != nil {
		return "", err
	}
	resolved, err := evalSymlinks(execPath)
	if err != nil {
		return "", err
	}
	return filepath.Dir(resolved), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
