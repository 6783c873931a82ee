// Package app implements the application layer for tsload.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.trai.ch/tsload/internal/adapters/watcher" //nolint:depguard // debouncing and dependency index
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/tsload/internal/engine/loader"
	"go.trai.ch/tsload/internal/engine/selector"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	caches       ports.CacheFactory
	selectors    *selector.Factory
	watchers     ports.WatcherFactory
	logger       ports.Logger
	tracer       ports.Tracer
	debounce     time.Duration

	mu       sync.Mutex
	cfg      *domain.Config
	cache    ports.Cache
	selector *selector.Selector
}

// New creates a new App instance.
func New(
	configLoader ports.ConfigLoader,
	caches ports.CacheFactory,
	selectors *selector.Factory,
	watchers ports.WatcherFactory,
	log ports.Logger,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader: configLoader,
		caches:       caches,
		selectors:    selectors,
		watchers:     watchers,
		logger:       log,
		tracer:       tracer,
		debounce:     watcher.DefaultDebounceWindow,
	}
}

// WithDebounce sets the window used to batch file changes in Watch.
func (a *App) WithDebounce(d time.Duration) *App {
	a.debounce = d
	return a
}

// Settings are command-line overrides applied on top of the configuration.
// Zero values leave the configured value in place.
type Settings struct {
	ConfigPath     string
	CacheMode      string
	CacheDir       string
	DisableNative  bool
	DisableProcess bool
	Share          bool
	Interpreter    string
}

// Configure loads the configuration for cwd, applies s and prepares the cache
// and compiler selector used by later calls.
func (a *App) Configure(cwd string, s Settings) (*domain.Config, error) {
	cfg, err := a.configLoader.Load(cwd, s.ConfigPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if s.CacheMode != "" {
		cfg.Cache.Mode = domain.CacheMode(s.CacheMode)
	}
	if s.CacheDir != "" {
		cfg.Cache.Dir = s.CacheDir
		if !filepath.IsAbs(cfg.Cache.Dir) {
			cfg.Cache.Dir = filepath.Join(cwd, cfg.Cache.Dir)
		}
	}
	if s.Interpreter != "" {
		cfg.Compiler.Interpreter = s.Interpreter
	}
	cfg.Compiler.DisableNative = cfg.Compiler.DisableNative || s.DisableNative
	cfg.Compiler.DisableProcess = cfg.Compiler.DisableProcess || s.DisableProcess
	cfg.Compiler.Share = cfg.Compiler.Share || s.Share

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := a.caches.New(cfg.Cache)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.selector != nil {
		_ = a.selector.Close()
	}
	a.cfg = cfg
	a.cache = c
	a.selector = a.selectors.New(cfg.Compiler)
	return cfg, nil
}

func (a *App) session() (*domain.Config, ports.Cache, *selector.Selector, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cfg == nil {
		return nil, nil, nil, domain.ErrNotConfigured
	}
	return a.cfg, a.cache, a.selector, nil
}

func (a *App) newLoader() (*loader.Loader, error) {
	_, c, sel, err := a.session()
	if err != nil {
		return nil, err
	}
	return loader.New(c, sel, loader.WithTracer(a.tracer)), nil
}

// CompileOptions configuration for the Compile method.
type CompileOptions struct {
	// OutDir receives one .js file per entry. Output goes to Stdout when empty.
	OutDir string
	Stdout io.Writer
}

// Compile compiles every file concurrently. All failures are reported together.
func (a *App) Compile(ctx context.Context, files []string, opts CompileOptions) error {
	if len(files) == 0 {
		return domain.ErrNoInputFiles
	}
	for _, file := range files {
		if _, ok := loader.CompileTarget(file); !ok {
			return zerr.With(zerr.Wrap(domain.ErrNotTypeScript, "compile"), "file", file)
		}
	}

	l, err := a.newLoader()
	if err != nil {
		return err
	}

	outputs := make([]string, len(files))
	errs := make([]error, len(files))

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		g.Go(func() error {
			entry, _ := loader.CompileTarget(file)
			outputs[i], errs[i] = l.Compile(ctx, entry)
			return nil
		})
	}
	_ = g.Wait()

	for i, file := range files {
		if errs[i] != nil {
			continue
		}
		if err := a.emit(file, outputs[i], opts); err != nil {
			errs[i] = err
		}
	}
	return errors.Join(errs...)
}

// emit writes compiled output for file to the output directory or stdout.
func (a *App) emit(file, compiled string, opts CompileOptions) error {
	if opts.OutDir == "" {
		if opts.Stdout == nil {
			return nil
		}
		if !strings.HasSuffix(compiled, "\n") {
			compiled += "\n"
		}
		_, err := io.WriteString(opts.Stdout, compiled)
		return err
	}

	entry, _ := loader.CompileTarget(file)
	target := filepath.Join(opts.OutDir, domain.OutputName(filepath.Base(entry)))
	if err := os.MkdirAll(opts.OutDir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "create output directory"), "path", opts.OutDir)
	}
	if err := os.WriteFile(target, []byte(compiled), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "write compiled output"), "path", target)
	}
	a.logger.Info(fmt.Sprintf("compiled %s -> %s", file, target))
	return nil
}

// Cat writes the contents of name to w, compiling TypeScript names.
func (a *App) Cat(ctx context.Context, name string, w io.Writer) error {
	l, err := a.newLoader()
	if err != nil {
		return err
	}

	rc, err := l.Load(ctx, name)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	if _, err := io.Copy(w, rc); err != nil {
		return zerr.With(zerr.Wrap(err, "write output"), "name", name)
	}
	return nil
}

// CleanCache removes the disk cache directory. Other cache modes keep nothing
// on disk, so there is nothing to remove.
func (a *App) CleanCache(_ context.Context) error {
	cfg, _, _, err := a.session()
	if err != nil {
		return err
	}

	if cfg.Cache.Mode != domain.CacheDisk {
		a.logger.Info(fmt.Sprintf("cache mode is %s, nothing to clean", cfg.Cache.Mode))
		return nil
	}

	dir := cfg.Cache.Dir
	a.logger.Info(fmt.Sprintf("removing %s...", dir))
	if err := os.RemoveAll(dir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove cache directory"), "path", dir)
	}
	a.logger.Info(fmt.Sprintf("removed %s", dir))
	return nil
}

// Backends reports every compiler backend in priority order. The first
// available backend is marked as selected unless a compiler was already chosen.
func (a *App) Backends(ctx context.Context) ([]domain.BackendStatus, error) {
	_, _, sel, err := a.session()
	if err != nil {
		return nil, err
	}

	statuses := sel.Available(ctx)
	if _, chosen := sel.Kind(); !chosen {
		for i := range statuses {
			if statuses[i].Available {
				statuses[i].Selected = true
				break
			}
		}
	}
	return statuses, nil
}

// Close releases the selected compiler and every shared compiler.
func (a *App) Close() error {
	a.mu.Lock()
	sel := a.selector
	a.selector = nil
	a.mu.Unlock()

	var errs error
	if sel != nil {
		errs = sel.Close()
	}
	return errors.Join(errs, a.selectors.Registry().Close())
}
