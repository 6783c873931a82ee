package process

import (
	"context"

	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
)

var _ ports.Backend = (*Backend)(nil)

// Backend offers the external interpreter compiler to the selector.
type Backend struct{}

// NewBackend returns the process backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Kind implements ports.Backend.
func (*Backend) Kind() domain.BackendKind {
	return domain.BackendProcess
}

// Available implements ports.Backend by probing the interpreter.
func (*Backend) Available(ctx context.Context, cfg domain.CompilerConfig) error {
	return Probe(ctx, cfg)
}

// New implements ports.Backend.
func (*Backend) New(cfg domain.CompilerConfig) (ports.Compiler, error) {
	return New(cfg), nil
}
