// Package selector chooses the compiler backend for a loader.
//
// Backends are tried in priority order, native then process then engine.
// The first that is enabled, available and constructs successfully is kept
// for the lifetime of the selector. With sharing enabled, the compiler is
// taken from or published to a Registry so that every selector in the
// process uses the same instance per backend kind.
package selector

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory builds selectors over a fixed set of backends.
type Factory struct {
	backends []ports.Backend
	registry *Registry
	logger   ports.Logger
	tracer   ports.Tracer
}

// NewFactory returns a Factory. Backends are ordered by priority.
func NewFactory(registry *Registry, logger ports.Logger, tracer ports.Tracer, backends ...ports.Backend) *Factory {
	sorted := slices.Clone(backends)
	slices.SortStableFunc(sorted, func(a, b ports.Backend) int {
		return cmp.Compare(a.Kind(), b.Kind())
	})
	return &Factory{
		backends: sorted,
		registry: registry,
		logger:   logger,
		tracer:   tracer,
	}
}

// Registry returns the registry shared compilers are published to.
func (f *Factory) Registry() *Registry {
	return f.registry
}

// New returns a selector configured by cfg.
func (f *Factory) New(cfg domain.CompilerConfig) *Selector {
	return &Selector{
		cfg:      cfg,
		backends: f.backends,
		registry: f.registry,
		logger:   f.logger,
		tracer:   f.tracer,
	}
}

var _ ports.CompilerSource = (*Selector)(nil)

// Selector lazily chooses and memoizes one compiler.
type Selector struct {
	cfg      domain.CompilerConfig
	backends []ports.Backend
	registry *Registry
	logger   ports.Logger
	tracer   ports.Tracer

	mu       sync.Mutex
	compiler ports.Compiler
	shared   bool
}

// Compiler returns the selected compiler, choosing it on first use.
func (s *Selector) Compiler(ctx context.Context) (ports.Compiler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.compiler != nil {
		return s.compiler, nil
	}

	ctx, span := s.tracer.Start(ctx, "select compiler")
	defer span.End()

	for _, backend := range s.backends {
		kind := backend.Kind()
		if s.disabled(kind) {
			continue
		}
		if err := backend.Available(ctx, s.cfg); err != nil {
			continue
		}

		if s.cfg.Share {
			if c, ok := s.registry.Load(kind); ok {
				s.keep(span, c, true)
				return c, nil
			}
		}

		c, err := backend.New(s.cfg)
		if err != nil {
			s.logger.Warn(fmt.Sprintf("compiler backend %s: %v", kind, err))
			continue
		}

		if s.cfg.Share {
			winner, stored := s.registry.CompareAndSet(kind, c)
			if !stored {
				_ = c.Close()
			}
			c = winner
		}
		s.keep(span, c, s.cfg.Share)
		return c, nil
	}

	err := zerr.Wrap(domain.ErrNoBackend, "select compiler")
	span.RecordError(err)
	return nil, err
}

func (s *Selector) keep(span ports.Span, c ports.Compiler, shared bool) {
	s.compiler = c
	s.shared = shared
	span.SetAttribute("backend", c.Kind().String())
	span.SetAttribute("shared", shared)
}

func (s *Selector) disabled(kind domain.BackendKind) bool {
	switch kind {
	case domain.BackendNative:
		return s.cfg.DisableNative
	case domain.BackendProcess:
		return s.cfg.DisableProcess
	default:
		return false
	}
}

// Kind reports the selected backend. It is false before the first selection.
func (s *Selector) Kind() (domain.BackendKind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.compiler == nil {
		return 0, false
	}
	return s.compiler.Kind(), true
}

// Available reports every backend in priority order with the reason it
// cannot be used, if any.
func (s *Selector) Available(ctx context.Context) []domain.BackendStatus {
	selected, ok := s.Kind()

	statuses := make([]domain.BackendStatus, 0, len(s.backends))
	for _, backend := range s.backends {
		kind := backend.Kind()
		status := domain.BackendStatus{
			Kind:     kind,
			Selected: ok && kind == selected,
		}
		if s.disabled(kind) {
			status.Reason = "disabled by configuration"
		} else if err := backend.Available(ctx, s.cfg); err != nil {
			status.Reason = err.Error()
		} else {
			status.Available = true
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Close closes a privately owned compiler. Shared compilers belong to the registry.
func (s *Selector) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, shared := s.compiler, s.shared
	s.compiler, s.shared = nil, false
	if c == nil || shared {
		return nil
	}
	return c.Close()
}
