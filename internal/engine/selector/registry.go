package selector

import (
	"errors"
	"sync"

	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
)

// Registry holds compilers shared across selectors, one per backend kind.
// It is injected so that tests can use a fresh registry.
type Registry struct {
	compilers sync.Map // domain.BackendKind -> ports.Compiler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Load returns the compiler registered for kind.
func (r *Registry) Load(kind domain.BackendKind) (ports.Compiler, bool) {
	v, ok := r.compilers.Load(kind)
	if !ok {
		return nil, false
	}
	return v.(ports.Compiler), true
}

// CompareAndSet registers candidate for kind unless a compiler is already
// registered. It returns the registered compiler and whether it is candidate.
func (r *Registry) CompareAndSet(kind domain.BackendKind, candidate ports.Compiler) (ports.Compiler, bool) {
	v, loaded := r.compilers.LoadOrStore(kind, candidate)
	return v.(ports.Compiler), !loaded
}

// Close closes and forgets every registered compiler.
func (r *Registry) Close() error {
	var errs []error
	r.compilers.Range(func(key, value any) bool {
		r.compilers.Delete(key)
		if err := value.(ports.Compiler).Close(); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}
