package engine

import (
	"context"

	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
)

var _ ports.Backend = (*Backend)(nil)

// Backend offers the goja compiler to the selector.
type Backend struct{}

// NewBackend returns the engine backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Kind implements ports.Backend.
func (*Backend) Kind() domain.BackendKind {
	return domain.BackendEngine
}

// Available implements ports.Backend. The interpreter is linked in, so it always is.
func (*Backend) Available(context.Context, domain.CompilerConfig) error {
	return nil
}

// New implements ports.Backend.
func (*Backend) New(cfg domain.CompilerConfig) (ports.Compiler, error) {
	return New(cfg), nil
}
