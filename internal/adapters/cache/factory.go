package cache

import (
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheFactory = (*Factory)(nil)

// Factory builds caches from configuration.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory whose disk caches log through logger.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// New returns the cache selected by cfg.Mode.
// An unknown mode fails with domain.ErrInvalidCacheMode.
func (f *Factory) New(cfg domain.CacheConfig) (ports.Cache, error) {
	mode, err := domain.ParseCacheMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}

	size := cfg.Size
	if size == 0 {
		size = domain.DefaultCacheSize
	}

	switch mode {
	case domain.CacheMemory:
		return NewMemory(size)
	case domain.CacheDisk:
		dir := cfg.Dir
		if dir == "" {
			dir = domain.DefaultCachePath()
		}
		return NewDisk(dir, size, f.logger)
	case domain.CacheNone:
		return Noop{}, nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidCacheMode, "create cache"), "mode", cfg.Mode)
	}
}
