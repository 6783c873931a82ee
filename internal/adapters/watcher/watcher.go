package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// skipDirectories are directories that are never watched.
var skipDirectories = map[string]bool{
	".git":                     true,
	".jj":                      true,
	"node_modules":             true,
	domain.DefaultCacheDirName: true,
}

const eventChannelBuffer = 100

// Option configures a Watcher.
type Option func(*Watcher)

// WithSkipDir excludes directories with the given base name, in addition to
// the built-in list.
func WithSkipDir(names ...string) Option {
	return func(w *Watcher) {
		for _, name := range names {
			if name != "" {
				w.skip[filepath.Base(name)] = true
			}
		}
	}
}

// Watcher reports changes to TypeScript sources using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	skip      map[string]bool
	events    chan ports.WatchEvent
}

// NewWatcher creates a new file system watcher. Errors reported by the
// platform watcher are logged and do not stop the event stream.
func NewWatcher(logger ports.Logger, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "create file watcher")
	}
	w := &Watcher{
		fsWatcher: fsw,
		logger:    logger,
		skip:      make(map[string]bool, len(skipDirectories)),
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
	}
	for name := range skipDirectories {
		w.skip[name] = true
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching the given root directory recursively.
func (w *Watcher) Start(ctx context.Context, root string) error {
	for dir := range w.watchRecursively(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "watch directory"), "path", dir)
		}
	}

	go w.processEvents(ctx)

	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// watchRecursively walks the directory tree and yields all directories.
func (w *Watcher) watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && w.skip[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				w.addCreatedDir(event.Name)
			}

			watchEvent, ok := convertEvent(event)
			if !ok {
				continue
			}

			select {
			case w.events <- watchEvent:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error(zerr.Wrap(err, "file watcher"))
		}
	}
}

// addCreatedDir starts watching a directory created below the root.
func (w *Watcher) addCreatedDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.skip[info.Name()] {
		return
	}
	for dir := range w.watchRecursively(path) {
		if err := w.fsWatcher.Add(dir); err != nil {
			w.logger.Error(zerr.With(zerr.Wrap(err, "watch directory"), "path", dir))
		}
	}
}

// IsSource reports whether path names a TypeScript source.
func IsSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), domain.TypeScriptExt)
}

// convertEvent converts an fsnotify event on a TypeScript source to a ports.WatchEvent.
func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	if !IsSource(event.Name) {
		return ports.WatchEvent{}, false
	}

	var op ports.WatchOp
	switch {
	case event.Has(fsnotify.Write):
		op = ports.OpWrite
	case event.Has(fsnotify.Create):
		op = ports.OpCreate
	case event.Has(fsnotify.Remove):
		op = ports.OpRemove
	case event.Has(fsnotify.Rename):
		op = ports.OpRename
	default:
		return ports.WatchEvent{}, false
	}
	return ports.WatchEvent{Path: event.Name, Operation: op}, true
}
