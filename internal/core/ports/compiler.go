package ports

import (
	"context"

	"go.trai.ch/tsload/internal/core/domain"
)

//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks

// Compiler turns a TypeScript entry file into JavaScript.
type Compiler interface {
	// Kind reports which backend implements the compiler.
	Kind() domain.BackendKind

	// Compile compiles filename, pulling it and every file it references from sources.
	// Failures are reported as *domain.CompileError.
	Compile(ctx context.Context, filename string, sources SourceFactory) (string, error)

	// Close releases the resources held by the compiler.
	Close() error
}

// Backend describes a compiler implementation that the selector may choose.
type Backend interface {
	// Kind identifies the backend.
	Kind() domain.BackendKind

	// Available returns nil when the backend can run here, or the reason it cannot.
	Available(ctx context.Context, cfg domain.CompilerConfig) error

	// New constructs a compiler. Construction must not have side effects
	// beyond returning a usable instance.
	New(cfg domain.CompilerConfig) (Compiler, error)
}

// CompilerSource hands out the compiler to use for a compilation.
type CompilerSource interface {
	Compiler(ctx context.Context) (Compiler, error)
}
