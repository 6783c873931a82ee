// Package loader compiles TypeScript sources when they are loaded.
//
// A Loader intercepts names ending in .ts, or in .ts.js as an alias for the
// compiled form, resolves the source, consults the cache and compiles on a
// miss. Every other name is passed through to the underlying filesystem
// untouched. The Loader is also the SourceFactory handed to the compiler, so
// files the compiler pulls in are resolved through the same table.
package loader

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/tsload/internal/adapters/telemetry" //nolint:depguard // default tracer
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var (
	_ ports.SourceFactory = (*Loader)(nil)
	_ fs.FS               = (*Loader)(nil)
)

// Option configures a Loader.
type Option func(*Loader)

// WithFS resolves sources and passes through other names via fsys before
// falling back to the local filesystem.
func WithFS(fsys fs.FS) Option {
	return func(l *Loader) { l.parent = fsys }
}

// WithTracer records a span per compiled load.
func WithTracer(tracer ports.Tracer) Option {
	return func(l *Loader) { l.tracer = tracer }
}

// Loader is a compile-on-load resolver.
type Loader struct {
	cache     ports.Cache
	compilers ports.CompilerSource
	parent    fs.FS
	tracer    ports.Tracer

	mu      sync.Mutex
	sources map[string]*domain.Source

	group singleflight.Group
}

// New returns a Loader that caches in cache and compiles with the compiler
// supplied by compilers.
func New(cache ports.Cache, compilers ports.CompilerSource, opts ...Option) *Loader {
	l := &Loader{
		cache:     cache,
		compilers: compilers,
		tracer:    telemetry.NewNoOpTracer(),
		sources:   make(map[string]*domain.Source),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CompileTarget reports whether name is compiled on load and returns the
// TypeScript source to compile for it.
func CompileTarget(name string) (string, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, domain.CompiledAliasExt):
		return name[:len(name)-len(domain.JavaScriptExt)], true
	case strings.HasSuffix(lower, domain.TypeScriptExt):
		return name, true
	default:
		return "", false
	}
}

// Register adds src to the resolution table, shadowing files of the same name.
func (l *Loader) Register(src *domain.Source) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources[src.Filename()] = src
}

// Resolved returns the names in the resolution table, sorted.
func (l *Loader) Resolved() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.sources))
	for name := range l.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetSource implements ports.SourceFactory. Names are resolved through the
// table, then the parent filesystem, then the local filesystem. Resolved
// sources are kept for the lifetime of the Loader.
func (l *Loader) GetSource(filename string) (*domain.Source, error) {
	l.mu.Lock()
	src, ok := l.sources[filename]
	l.mu.Unlock()
	if ok {
		return src, nil
	}

	src, err := l.read(filename)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.sources[filename]; ok {
		return existing, nil
	}
	l.sources[filename] = src
	return src, nil
}

func (l *Loader) read(filename string) (*domain.Source, error) {
	if l.parent != nil && fs.ValidPath(filename) {
		src, err := domain.SourceFromFS(l.parent, filename)
		if err == nil || !errors.Is(err, domain.ErrSourceNotFound) {
			return src, err
		}
	}
	return domain.SourceFromFile(filename)
}

// Load returns the contents for name, compiling TypeScript names.
func (l *Loader) Load(ctx context.Context, name string) (io.ReadCloser, error) {
	entry, ok := CompileTarget(name)
	if !ok {
		return l.open(name)
	}

	compiled, err := l.Compile(ctx, entry)
	if err != nil {
		return nil, err
	}
	return newMemFile(name, compiled), nil
}

// Compile returns the JavaScript for filename, from the cache when possible.
// Concurrent compilations of the same source share one backend call.
func (l *Loader) Compile(ctx context.Context, filename string) (string, error) {
	ctx, span := l.tracer.Start(ctx, "load")
	defer span.End()
	span.SetAttribute("filename", filename)

	src, err := l.GetSource(filename)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	if compiled, ok := l.cache.Get(src); ok {
		span.SetAttribute("cache_hit", true)
		return compiled, nil
	}
	span.SetAttribute("cache_hit", false)

	v, err, _ := l.group.Do(src.Filename()+"\x00"+src.Digest(), func() (any, error) {
		if compiled, ok := l.cache.Get(src); ok {
			return compilation{text: compiled}, nil
		}

		compiler, err := l.compilers.Compiler(ctx)
		if err != nil {
			return compilation{}, err
		}
		backend := compiler.Kind().String()

		compiled, err := compiler.Compile(ctx, src.Filename(), l)
		if err != nil {
			return compilation{backend: backend}, err
		}
		l.cache.Put(src, compiled)
		return compilation{text: compiled, backend: backend}, nil
	})
	result, _ := v.(compilation)
	if result.backend != "" {
		span.SetAttribute("backend", result.backend)
	}
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return result.text, nil
}

// compilation is the value shared by coalesced callers. backend is empty
// when the entry was found in the cache.
type compilation struct {
	text    string
	backend string
}

// Open implements fs.FS. TypeScript names are compiled with a background
// context and served as read-only in-memory files.
func (l *Loader) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	entry, ok := CompileTarget(name)
	if !ok {
		return l.open(name)
	}

	compiled, err := l.Compile(context.Background(), entry)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return newMemFile(name, compiled), nil
}

func (l *Loader) open(name string) (fs.File, error) {
	if l.parent != nil && fs.ValidPath(name) {
		f, err := l.parent.Open(name)
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			return f, err
		}
	}

	// #nosec G304 -- pass-through of the caller's own resource name
	f, err := os.Open(name)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "open resource"), "name", name)
	}
	return f, nil
}
