//go:build cgo && (linux || darwin) && (amd64 || arm64)

package native

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.trai.ch/tsload/internal/adapters/compiler/scripthost"
	"go.trai.ch/tsload/internal/adapters/compiler/scripts"
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/zerr"
	v8 "rogchap.com/v8go"
)

const (
	getSourceFunc = "__tsloadGetSource"
	reportFunc    = "__tsloadReport"
	hostObject    = "__host"
)

var _ ports.Compiler = (*Compiler)(nil)

func available() error {
	return nil
}

// Compiler owns one V8 isolate and context with the compiler bundle loaded.
// Compilations are serialised on the isolate.
type Compiler struct {
	cfg domain.CompilerConfig

	mu      sync.Mutex
	iso     *v8.Isolate
	ctx     *v8.Context
	compile *v8.Function
	host    *v8.Value
	session *scripthost.Session
	closed  bool
}

// New returns a compiler that creates its isolate on first use.
func New(cfg domain.CompilerConfig) *Compiler {
	return &Compiler{cfg: cfg}
}

// Kind implements ports.Compiler.
func (c *Compiler) Kind() domain.BackendKind {
	return domain.BackendNative
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
	c.session = session
	defer func() { c.session = nil }()

	file, err := v8.NewValue(c.iso, filename)
	if err != nil {
		return "", session.Fail(err)
	}

	stop := context.AfterFunc(ctx, c.iso.TerminateExecution)
	defer stop()

	out, err := c.compile.Call(v8.Undefined(c.iso), file, c.host)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", session.Fail(ctxErr)
		}
		return "", session.Fail(scriptError(err))
	}
	return out.String(), nil
}

// init creates the isolate and loads the prelude, the bundle and the adapter.
// A failed load disposes the isolate and is retried by the next compilation.
func (c *Compiler) init(sources ports.SourceFactory) (err error) {
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
	defaultLib, err := json.Marshal(c.cfg.DefaultLib)
	if err != nil {
		return err
	}

	iso := v8.NewIsolate()
	defer func() {
		if err != nil {
			iso.Dispose()
		}
	}()

	global := v8.NewObjectTemplate(iso)
	if err := errors.Join(
		global.Set(getSourceFunc, v8.NewFunctionTemplate(iso, c.getSource)),
		global.Set(reportFunc, v8.NewFunctionTemplate(iso, c.report)),
	); err != nil {
		return err
	}

	v8ctx := v8.NewContext(iso, global)
	defer func() {
		if err != nil {
			v8ctx.Close()
		}
	}()

	for _, src := range []*domain.Source{
		domain.NewSource("tsload/native_prelude.js", scripts.NativePrelude),
		bundle,
		adapter,
		domain.NewSource("tsload/default_lib.js", hostObject+".defaultLib = "+string(defaultLib)+";"),
	} {
		if _, err := v8ctx.RunScript(src.Contents(), src.Filename()); err != nil {
			return zerr.With(zerr.Wrap(scriptError(err), "evaluate script"), "script", src.Filename())
		}
	}

	entry, err := v8ctx.Global().Get(scripts.EntryFunction)
	if err != nil {
		return err
	}
	fn, err := entry.AsFunction()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "compile entry point is not a function"), "function", scripts.EntryFunction)
	}
	host, err := v8ctx.Global().Get(hostObject)
	if err != nil {
		return err
	}

	c.iso, c.ctx, c.compile, c.host = iso, v8ctx, fn, host
	return nil
}

func (c *Compiler) getSource(info *v8.FunctionCallbackInfo) *v8.Value {
	iso := info.Context().Isolate()

	args := info.Args()
	if c.session == nil || len(args) == 0 {
		return c.throw(iso, "getSource called outside a compilation")
	}

	data, err := json.Marshal(c.session.GetSource(args[0].String()))
	if err != nil {
		return c.throw(iso, err.Error())
	}
	val, err := v8.NewValue(iso, string(data))
	if err != nil {
		return c.throw(iso, err.Error())
	}
	return val
}

func (c *Compiler) report(info *v8.FunctionCallbackInfo) *v8.Value {
	if c.session != nil {
		for _, arg := range info.Args() {
			c.session.ReportDiagnostic(arg.String())
		}
	}
	return nil
}

func (c *Compiler) throw(iso *v8.Isolate, msg string) *v8.Value {
	val, err := v8.NewValue(iso, msg)
	if err != nil {
		return nil
	}
	return iso.ThrowException(val)
}

// Close implements ports.Compiler and disposes the isolate.
func (c *Compiler) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.ctx != nil {
		c.ctx.Close()
	}
	if c.iso != nil {
		c.iso.Dispose()
	}
	c.iso, c.ctx, c.compile, c.host = nil, nil, nil, nil
	return nil
}

// scriptError reduces a thrown JavaScript error to its message.
func scriptError(err error) error {
	var jsErr *v8.JSError
	if errors.As(err, &jsErr) {
		return zerr.New(jsErr.Message)
	}
	return err
}
