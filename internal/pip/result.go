// SPDX-License-Identifier: MPL-2.0

package pip

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// Result captures the outcome of a pip invocation.
	Result struct {
		// ExitCode is the process exit status.
		ExitCode ExitCode
		// Output is the captured stdout (capture mode only).
		Output string
		// ErrOutput is the captured stderr (capture mode only).
		ErrOutput string
		// Error is set for infrastructure failures (binary missing,
		// context canceled), not for ordinary non-zero exits.
		Error error
	}
)

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// Succeeded reports whether the invocation ran and exited zero.
func (r *Result) Succeeded() bool {
	return r.Error == nil && r.ExitCode.IsSuccess()
}
