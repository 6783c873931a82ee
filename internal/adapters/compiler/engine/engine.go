// Package engine runs the TypeScript compiler inside the goja interpreter.
// It needs nothing beyond the compiler bundle and is always available.
package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/dop251/goja"
	"go.trai.ch/tsload/internal/adapters/compiler/scripthost"
	"go.trai.ch/tsload/internal/adapters/compiler/scripts"
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Compiler)(nil)

// Compiler owns one goja runtime with the compiler bundle loaded.
// Compilations are serialised on the runtime.
type Compiler struct {
	cfg domain.CompilerConfig

	mu      sync.Mutex
	vm      *goja.Runtime
	compile goja.Callable
	closed  bool
}

// New returns a compiler that loads its bundle on first use.
func New(cfg domain.CompilerConfig) *Compiler {
	return &Compiler{cfg: cfg}
}

// Kind implements ports.Compiler.
func (c *Compiler) Kind() domain.BackendKind {
	return domain.BackendEngine
}

// Compile implements ports.Compiler.
func (c *Compiler) Compile(ctx context.Context, filename string, sources ports.SourceFactory) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", zerr.With(zerr.Wrap(domain.ErrCompilerClosed, "compile"), "backend", c.Kind().String())
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := c.init(sources); err != nil {
		return "", &domain.CompileError{Filename: filename, Err: err}
	}

	session := scripthost.NewSession(filename, sources)
	if _, err := session.Entry(); err != nil {
		return "", err
	}

	host := c.vm.NewObject()
	if err := errors.Join(
		host.Set("defaultLib", c.cfg.DefaultLib),
		host.Set("getSource", session.GetSource),
		host.Set("reportDiagnostic", session.ReportDiagnostic),
	); err != nil {
		return "", session.Fail(err)
	}

	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		c.vm.Interrupt(ctx.Err())
		close(interrupted)
	})
	defer func() {
		if !stop() {
			<-interrupted
		}
		c.vm.ClearInterrupt()
	}()

	out, err := c.compile(goja.Undefined(), c.vm.ToValue(filename), host)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", session.Fail(ctxErr)
		}
		return "", session.Fail(scriptError(err))
	}
	return out.String(), nil
}

// init loads the bundle and the adapter. A failed load is retried by the next compilation.
func (c *Compiler) init(sources ports.SourceFactory) error {
	if c.compile != nil {
		return nil
	}

	bundle, err := sources.GetSource(c.cfg.Bundle)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "load compiler bundle"), "bundle", c.cfg.Bundle)
	}
	adapter, err := scripthost.Adapter(sources, c.cfg)
	if err != nil {
		return err
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	for _, src := range []*domain.Source{bundle, adapter} {
		if _, err := vm.RunScript(src.Filename(), src.Contents()); err != nil {
			return zerr.With(zerr.Wrap(scriptError(err), "evaluate script"), "script", src.Filename())
		}
	}

	fn, ok := goja.AssertFunction(vm.Get(scripts.EntryFunction))
	if !ok {
		return zerr.With(zerr.New("compile entry point is not a function"), "function", scripts.EntryFunction)
	}

	c.vm = vm
	c.compile = fn
	return nil
}

// Close implements ports.Compiler. The runtime is dropped for collection.
func (c *Compiler) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.vm = nil
	c.compile = nil
	return nil
}

// scriptError reduces a thrown JavaScript value to its message.
func scriptError(err error) error {
	var exc *goja.Exception
	if errors.As(err, &exc) && exc.Value() != nil {
		return zerr.New(exc.Value().String())
	}
	return err
}
