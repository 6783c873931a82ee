package domain

import (
	"fmt"
	"strings"
)

// CompileError describes a failed compilation.
// ExitCode is zero for backends that do not run a separate process.
type CompileError struct {
	Filename string
	ExitCode int
	Output   string
	Err      error
}

func (e *CompileError) header() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("could not compile script. Exit code: %d", e.ExitCode)
	}
	return fmt.Sprintf("could not compile %q", e.Filename)
}

func (e *CompileError) output() string {
	if out := strings.TrimRight(e.Output, "\r\n"); out != "" {
		return "\n" + out
	}
	return ""
}

// Message returns the failure and the compiler output without the cause chain.
func (e *CompileError) Message() string {
	return e.header() + e.output()
}

func (e *CompileError) Error() string {
	if e.Err == nil {
		return e.Message()
	}
	return e.header() + ": " + e.Err.Error() + e.output()
}

// Unwrap exposes ErrCompileFailed and the underlying cause to errors.Is and errors.As.
func (e *CompileError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCompileFailed}
	}
	return []error{ErrCompileFailed, e.Err}
}
