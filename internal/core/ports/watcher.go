package ports

import (
	"context"
	"iter"
)

// WatchOp represents the type of file system operation.
type WatchOp uint8

const (
	// OpCreate indicates a file was created.
	OpCreate WatchOp = iota
	// OpWrite indicates a file was modified.
	OpWrite
	// OpRemove indicates a file was removed.
	OpRemove
	// OpRename indicates a file was renamed.
	OpRename
)

// WatchEvent is a change to a TypeScript source below a watched root.
type WatchEvent struct {
	Path      string
	Operation WatchOp
}

// Watcher reports changes to TypeScript sources.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching root recursively until ctx is done.
	Start(ctx context.Context, root string) error
	// Stop releases the underlying watches.
	Stop() error
	// Events yields changes until the watcher stops.
	Events() iter.Seq[WatchEvent]
}

// WatcherFactory creates watchers on demand.
type WatcherFactory interface {
	// NewWatcher returns a watcher that also ignores directories named in skipDirs.
	NewWatcher(skipDirs ...string) (Watcher, error)
}
