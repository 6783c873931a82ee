package ports

import "go.trai.ch/tsload/internal/core/domain"

// Cache maps sources to their compiled output.
// Implementations never report I/O failures; a failed read is a miss and a
// failed write is dropped.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type Cache interface {
	// Get returns the compiled text stored for src.
	Get(src *domain.Source) (string, bool)

	// Put stores the compiled text for src.
	Put(src *domain.Source, compiled string)
}

// CacheFactory builds the cache variant selected by the configuration.
type CacheFactory interface {
	New(cfg domain.CacheConfig) (Cache, error)
}
