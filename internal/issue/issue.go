// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing errors that carry enough context to be
// actionable: what was being attempted, which resource was involved, and what
// the user can do about it.
package issue

import (
	"errors"
	"strings"
)

type (
	// ActionableError is an error with context for user-facing messages.
	//
	// Use the Context builder for construction:
	//
	//	err := issue.NewContext().
	//		WithOperation("install packages").
	//		WithResource("pip").
	//		WithSuggestion("Run 'bgsetup doctor' to inspect the environment").
	//		Wrap(cause).
	//		Build()
	ActionableError struct {
		// Operation describes what was being attempted (e.g., "locate interpreter").
		Operation string

		// Resource identifies the file, tool, or entity involved (optional).
		Resource string

		// Suggestions provides hints on how to fix the issue (optional).
		Suggestions []string

		// Cause is the underlying error that triggered this error (optional).
		Cause error
	}

	// Context is a fluent builder for ActionableError instances.
	Context struct {
		operation   string
		resource    string
		suggestions []string
		cause       error
	}
)

// NewContext creates an empty error context builder.
func NewContext() *Context {
	return &Context{}
}

// WithOperation sets the operation description.
func (c *Context) WithOperation(op string) *Context {
	c.operation = op
	return c
}

// WithResource sets the resource identifier.
func (c *Context) WithResource(res string) *Context {
	c.resource = res
	return c
}

// WithSuggestion appends a fix suggestion. May be called multiple times;
// suggestions are rendered in insertion order.
func (c *Context) WithSuggestion(s string) *Context {
	c.suggestions = append(c.suggestions, s)
	return c
}

// Wrap records the underlying cause.
func (c *Context) Wrap(err error) *Context {
	c.cause = err
	return c
}

// Build constructs the ActionableError.
func (c *Context) Build() *ActionableError {
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: c.suggestions,
		Cause:       c.cause,
	}
}

// BuildError constructs the ActionableError as a plain error value.
func (c *Context) BuildError() error {
	return c.Build()
}

// Error returns the single-line form: "failed to <op>: <resource>: <cause>".
// Suggestions are not part of the error string; use Render for full display.
func (e *ActionableError) Error() string {
	var b strings.Builder
	b.WriteString("failed to ")
	b.WriteString(e.Operation)
	if e.Resource != "" {
		b.WriteString(": ")
		b.WriteString(e.Resource)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Render returns the multi-line display form including suggestions.
func (e *ActionableError) Render() string {
	var b strings.Builder
	b.WriteString(e.Error())
	for _, s := range e.Suggestions {
		b.WriteString("\n  • ")
		b.WriteString(s)
	}
	return b.String()
}

// AsActionable extracts an ActionableError from err's chain, if present.
func AsActionable(err error) (*ActionableError, bool) {
	var ae *ActionableError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
