// Package compilertest provides fixtures for exercising compiler backends
// without a real TypeScript distribution.
package compilertest

import (
	_ "embed"
	"sync"

	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
)

// BundleName is the name under which Sources serves the fake bundle.
const BundleName = domain.DefaultBundle

// Bundle is a minimal stand-in for the TypeScript services bundle. It strips
// type annotations, resolves reference comments and reports a diagnostic for
// sources containing @@error.
//
//go:embed fakets.js
var Bundle string

var _ ports.SourceFactory = (*Sources)(nil)

// Sources is an in-memory SourceFactory that counts lookups.
type Sources struct {
	mu      sync.Mutex
	files   map[string]string
	lookups map[string]int
}

// NewSources returns a SourceFactory serving files plus the fake bundle.
func NewSources(files map[string]string) *Sources {
	s := &Sources{
		files:   map[string]string{BundleName: Bundle},
		lookups: make(map[string]int),
	}
	for name, contents := range files {
		s.files[name] = contents
	}
	return s
}

// GetSource implements ports.SourceFactory.
func (s *Sources) GetSource(filename string) (*domain.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookups[filename]++
	contents, ok := s.files[filename]
	if !ok {
		return nil, domain.NotFoundError(filename, nil)
	}
	return domain.NewSource(filename, contents), nil
}

// Set adds or replaces a file.
func (s *Sources) Set(filename, contents string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filename] = contents
}

// Remove deletes a file, including the bundle.
func (s *Sources) Remove(filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, filename)
}

// Lookups reports how often filename was requested.
func (s *Sources) Lookups(filename string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups[filename]
}

// Config returns a compiler configuration that loads the fake bundle.
func Config() domain.CompilerConfig {
	cfg := domain.DefaultConfig().Compiler
	cfg.Bundle = BundleName
	return cfg
}
