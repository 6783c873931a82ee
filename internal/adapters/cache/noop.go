// Package cache implements the compilation caches.
package cache

import (
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
)

var _ ports.Cache = Noop{}

// Noop is the cache used when caching is disabled.
type Noop struct{}

// Get always misses.
func (Noop) Get(*domain.Source) (string, bool) {
	return "", false
}

// Put discards the value.
func (Noop) Put(*domain.Source, string) {}
