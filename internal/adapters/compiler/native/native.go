// Package native runs the TypeScript compiler in an embedded V8 isolate.
// The isolate is only linked into cgo builds on platforms v8go ships for;
// elsewhere the backend reports itself unavailable.
package native

import (
	"context"

	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
)

var _ ports.Backend = (*Backend)(nil)

// Backend offers the V8 compiler to the selector.
type Backend struct{}

// NewBackend returns the native backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Kind implements ports.Backend.
func (*Backend) Kind() domain.BackendKind {
	return domain.BackendNative
}

// Available implements ports.Backend.
func (*Backend) Available(context.Context, domain.CompilerConfig) error {
	return available()
}

// New implements ports.Backend.
func (*Backend) New(cfg domain.CompilerConfig) (ports.Compiler, error) {
	if err := available(); err != nil {
		return nil, err
	}
	return New(cfg), nil
}
