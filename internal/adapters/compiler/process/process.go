// Package process runs the TypeScript command-line compiler in an external
// interpreter and serves its file reads over stdin and stdout.
//
// The child writes a request line, TSLOAD_READFILE followed by a filename,
// and blocks until the host answers with the byte length of the contents, a
// space and the contents. Every other line is compiler output. The exchange
// is half-duplex, so a single goroutine alternates between reading a line
// and writing the reply.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/tsload/internal/adapters/compiler/scripthost"
	"go.trai.ch/tsload/internal/adapters/compiler/scripts"
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Compiler)(nil)

// Compiler drives one patched compiler script through child processes.
// Compilations are serialised.
type Compiler struct {
	cfg domain.CompilerConfig

	mu     sync.Mutex
	script string
	closed bool
}

// New returns a compiler that writes its patched script on first use.
func New(cfg domain.CompilerConfig) *Compiler {
	if cfg.Interpreter == "" {
		cfg.Interpreter = domain.DefaultInterpreter
	}
	if cfg.EntryPoint == "" {
		cfg.EntryPoint = domain.DefaultEntryPoint
	}
	if cfg.ProcessBundle == "" {
		cfg.ProcessBundle = domain.DefaultProcessBundle
	}
	return &Compiler{cfg: cfg}
}

// Kind implements ports.Compiler.
func (c *Compiler) Kind() domain.BackendKind {
	return domain.BackendProcess
}

// Compile implements ports.Compiler.
func (c *Compiler) Compile(ctx context.Context, filename string, sources ports.SourceFactory) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", zerr.With(zerr.Wrap(domain.ErrCompilerClosed, "compile"), "backend", c.Kind().String())
	}
	if err := c.setup(sources); err != nil {
		return "", &domain.CompileError{Filename: filename, Err: err}
	}
	return c.run(ctx, filename, sources)
}

// setup materialises the patched compiler script. A failed setup is retried
// by the next compilation.
func (c *Compiler) setup(sources ports.SourceFactory) error {
	if c.script != "" {
		return nil
	}

	bundle, err := sources.GetSource(c.cfg.ProcessBundle)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "load compiler bundle"), "bundle", c.cfg.ProcessBundle)
	}
	patched, err := Patch(bundle.Contents(), c.cfg.EntryPoint)
	if err != nil {
		return zerr.With(err, "bundle", bundle.Filename())
	}

	f, err := os.CreateTemp("", fmt.Sprintf("tsload-compiler-%016x-*.js", xxhash.Sum64String(patched)))
	if err != nil {
		return zerr.Wrap(err, "create compiler script")
	}
	_, writeErr := f.WriteString(patched)
	if err := errors.Join(writeErr, f.Close()); err != nil {
		_ = os.Remove(f.Name())
		return zerr.With(zerr.Wrap(err, "write compiler script"), "path", f.Name())
	}

	c.script = f.Name()
	return nil
}

func (c *Compiler) run(ctx context.Context, filename string, sources ports.SourceFactory) (string, error) {
	args := append(slices.Clone(c.cfg.InterpreterArgs), c.script, filename)
	cmd := exec.CommandContext(ctx, c.cfg.Interpreter, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", &domain.CompileError{Filename: filename, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", &domain.CompileError{Filename: filename, Err: err}
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return "", &domain.CompileError{
			Filename: filename,
			Err:      zerr.With(zerr.Wrap(err, "start interpreter"), "interpreter", c.cfg.Interpreter),
		}
	}

	var output strings.Builder
	fail := func(err error) (string, error) {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", &domain.CompileError{Filename: filename, Output: output.String(), Err: err}
	}

	reader := bufio.NewReader(stdout)
	writer := bufio.NewWriter(stdin)
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			text := strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if name, ok := strings.CutPrefix(text, scripts.ReadFileMarker); ok {
				if err := reply(writer, sources, filename, name); err != nil {
					return fail(err)
				}
			} else {
				output.WriteString(text)
				output.WriteByte('\n')
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fail(zerr.Wrap(readErr, "read compiler output"))
		}
	}

	_ = stdin.Close()
	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", &domain.CompileError{Filename: filename, Output: output.String(), Err: ctxErr}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &domain.CompileError{Filename: filename, ExitCode: exitErr.ExitCode(), Output: output.String()}
		}
		return "", &domain.CompileError{Filename: filename, Output: output.String(), Err: err}
	}
	return output.String(), nil
}

// reply answers a file request with "<byte length> <contents>".
func reply(w *bufio.Writer, sources ports.SourceFactory, entry, name string) error {
	src, err := scripthost.Resolve(sources, entry, name)
	if err != nil {
		return err
	}

	contents := src.Contents()
	if _, err := w.WriteString(strconv.Itoa(len(contents)) + " " + contents); err != nil {
		return zerr.With(zerr.Wrap(err, "reply to file request"), "filename", name)
	}
	if err := w.Flush(); err != nil {
		return zerr.With(zerr.Wrap(err, "reply to file request"), "filename", name)
	}
	return nil
}

// Close implements ports.Compiler and removes the patched script.
func (c *Compiler) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.script == "" {
		return nil
	}
	script := c.script
	c.script = ""
	if err := os.Remove(script); err != nil && !errors.Is(err, os.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "remove compiler script"), "path", script)
	}
	return nil
}

// Patch inserts the file-request shim immediately before the first match of
// entryPoint in bundle.
func Patch(bundle, entryPoint string) (string, error) {
	re, err := regexp.Compile(entryPoint)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "compile entry point pattern"), "pattern", entryPoint)
	}
	loc := re.FindStringIndex(bundle)
	if loc == nil {
		return "", zerr.With(zerr.Wrap(domain.ErrBundleEntryPointMissing, "patch compiler bundle"), "pattern", entryPoint)
	}

	var b strings.Builder
	b.Grow(len(bundle) + len(scripts.ProcessShim) + 1)
	b.WriteString(bundle[:loc[0]])
	b.WriteString(scripts.ProcessShim)
	b.WriteByte('\n')
	b.WriteString(bundle[loc[0]:])
	return b.String(), nil
}
