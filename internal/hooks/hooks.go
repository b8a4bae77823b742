// SPDX-License-Identifier: MPL-2.0

// Package hooks runs the optional pre/post-setup shell snippets from config.
// Snippets execute in the embedded mvdan/sh interpreter so they behave the
// same on every platform and need no host shell.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

type (
	// Hook is a named shell snippet.
	Hook struct {
		// Name identifies the hook in logs and errors ("pre_setup").
		Name string
		// Script is the POSIX shell snippet to run.
		Script string
	}

	// Runner executes hooks in the embedded shell.
	Runner struct {
		// Dir is the working directory for hook execution.
		Dir string
		// Env are extra KEY=VALUE pairs visible to hooks, on top of the
		// process environment.
		Env []string

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// HookError reports a hook that exited non-zero or failed to run.
	HookError struct {
		Name string
		Code int
		Err  error
	}
)

// Error implements the error interface.
func (e *HookError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hook %s failed: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("hook %s exited with code %d", e.Name, e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *HookError) Unwrap() error { return e.Err }

// Validate parses the hook without running it, so configuration mistakes
// surface before the setup sequence starts.
func (h Hook) Validate() error {
	if strings.TrimSpace(h.Script) == "" {
		return nil
	}
	if _, err := syntax.NewParser().Parse(strings.NewReader(h.Script), h.Name); err != nil {
		return fmt.Errorf("hook %s has a syntax error: %w", h.Name, err)
	}
	return nil
}

// Run executes the hook. Empty hooks are a no-op.
func (r *Runner) Run(ctx context.Context, h Hook) error {
	if strings.TrimSpace(h.Script) == "" {
		return nil
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(h.Script), h.Name)
	if err != nil {
		return &HookError{Name: h.Name, Err: fmt.Errorf("parse: %w", err)}
	}

	env := append(os.Environ(), r.Env...)
	runner, err := interp.New(
		interp.Dir(r.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(r.Stdin, r.stdout(), r.stderr()),
	)
	if err != nil {
		return &HookError{Name: h.Name, Err: err}
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &HookError{Name: h.Name, Code: int(status)}
		}
		return &HookError{Name: h.Name, Err: err}
	}
	return nil
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
