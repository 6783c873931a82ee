//go:build !cgo || !(linux || darwin) || !(amd64 || arm64)

package native

import (
	"context"

	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Compiler)(nil)

func available() error {
	return zerr.With(zerr.Wrap(domain.ErrBackendUnavailable, "V8 is not linked into this build"),
		"backend", domain.BackendNative.String())
}

// Compiler stands in for the V8 compiler in builds without it.
type Compiler struct{}

// New returns a compiler whose every compilation fails.
func New(domain.CompilerConfig) *Compiler {
	return &Compiler{}
}

// Kind implements ports.Compiler.
func (*Compiler) Kind() domain.BackendKind {
	return domain.BackendNative
}

// Compile implements ports.Compiler.
func (*Compiler) Compile(_ context.Context, filename string, _ ports.SourceFactory) (string, error) {
	return "", &domain.CompileError{Filename: filename, Err: available()}
}

// Close implements ports.Compiler.
func (*Compiler) Close() error {
	return nil
}
