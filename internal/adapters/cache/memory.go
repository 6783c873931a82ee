package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Cache = (*Memory)(nil)

// Memory is a bounded in-memory cache keyed by source identity.
// Least recently used entries are evicted once size entries are held.
type Memory struct {
	entries *lru.Cache[domain.SourceKey, string]
}

// NewMemory creates a Memory cache holding at most size entries.
func NewMemory(size int) (*Memory, error) {
	if size <= 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidCacheSize, "create memory cache"), "size", size)
	}
	entries, err := lru.New[domain.SourceKey, string](size)
	if err != nil {
		return nil, zerr.Wrap(err, "create memory cache")
	}
	return &Memory{entries: entries}, nil
}

// Get returns the compiled text for src.
func (m *Memory) Get(src *domain.Source) (string, bool) {
	return m.entries.Get(src.Key())
}

// Put stores the compiled text for src.
func (m *Memory) Put(src *domain.Source, compiled string) {
	m.entries.Add(src.Key(), compiled)
}

// Len reports the number of cached entries.
func (m *Memory) Len() int {
	return m.entries.Len()
}
