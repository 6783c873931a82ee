package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.trai.ch/tsload/internal/adapters/watcher" //nolint:depguard // debouncing and dependency index
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/engine/loader"
	"go.trai.ch/zerr"
)

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	CompileOptions
	// Root is the directory watched for changes. It defaults to ".".
	Root string
}

// Watch compiles files, then recompiles every entry whose sources change
// until ctx is done. Each recompilation uses a fresh loader, so edited files
// are read again and miss the cache. Compile failures are logged and do not
// stop the loop.
func (a *App) Watch(ctx context.Context, files []string, opts WatchOptions) error {
	if len(files) == 0 {
		return domain.ErrNoInputFiles
	}

	entries := make([]string, 0, len(files))
	for _, file := range files {
		entry, ok := loader.CompileTarget(file)
		if !ok {
			return zerr.With(zerr.Wrap(domain.ErrNotTypeScript, "watch"), "file", file)
		}
		abs, err := filepath.Abs(entry)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "resolve entry"), "file", file)
		}
		entries = append(entries, abs)
	}

	cfg, _, _, err := a.session()
	if err != nil {
		return err
	}

	root := opts.Root
	if root == "" {
		root = "."
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "resolve watch root"), "root", opts.Root)
	}

	w, err := a.watchers.NewWatcher(cfg.Cache.Dir, opts.OutDir)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	if err := w.Start(ctx, root); err != nil {
		return err
	}

	r := &rebuilder{app: a, index: watcher.NewIndex(), opts: opts.CompileOptions}
	for _, entry := range entries {
		r.rebuild(ctx, entry)
	}
	a.logger.Info(fmt.Sprintf("watching %d entries in %s", len(entries), root))

	d := watcher.NewDebouncer(a.debounce, func(paths []string) {
		for _, entry := range r.index.Affected(paths) {
			r.rebuild(ctx, entry)
		}
	})
	for event := range w.Events() {
		d.Add(event.Path)
	}

	// No batch may compile after Watch returns.
	d.Close()
	return nil
}

// rebuilder serializes recompilations and records what each entry read.
type rebuilder struct {
	app   *App
	index *watcher.Index
	opts  CompileOptions

	mu sync.Mutex
}

func (r *rebuilder) rebuild(ctx context.Context, entry string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	l, err := r.app.newLoader()
	if err != nil {
		r.app.logger.Error(err)
		return
	}

	compiled, err := l.Compile(ctx, entry)

	// Sources read by a failed compilation are tracked too, so fixing them
	// triggers another attempt.
	resolved := l.Resolved()
	for i, name := range resolved {
		if abs, absErr := filepath.Abs(name); absErr == nil {
			resolved[i] = abs
		}
	}
	r.index.Update(entry, resolved)

	if err != nil {
		r.app.logger.Error(err)
		return
	}
	if err := r.app.emit(entry, compiled, r.opts); err != nil {
		r.app.logger.Error(err)
		return
	}
	if r.opts.OutDir == "" {
		r.app.logger.Info("compiled " + entry)
	}
}
