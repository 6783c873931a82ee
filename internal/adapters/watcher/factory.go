package watcher

import "go.trai.ch/tsload/internal/core/ports"

var _ ports.WatcherFactory = Factory{}

// Factory creates Watchers that log through a shared logger.
type Factory struct {
	Logger ports.Logger
}

// NewWatcher implements ports.WatcherFactory.
func (f Factory) NewWatcher(skipDirs ...string) (ports.Watcher, error) {
	return NewWatcher(f.Logger, WithSkipDir(skipDirs...))
}
