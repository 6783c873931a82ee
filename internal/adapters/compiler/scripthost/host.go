// Package scripthost connects script-hosted compilers to a ports.SourceFactory.
package scripthost

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/tsload/internal/adapters/compiler/scripts"
	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/zerr"
)

// Result is the tagged outcome of a source lookup handed to script code.
// A lookup that is not found has Found unset and an empty Error.
type Result struct {
	Found    bool   `json:"found"`
	Filename string `json:"filename"`
	Contents string `json:"contents"`
	Error    string `json:"error"`
}

// Resolve returns the source for name. When name is relative and not found it
// is retried relative to the directory of entry.
func Resolve(sources ports.SourceFactory, entry, name string) (*domain.Source, error) {
	src, err := sources.GetSource(name)
	if err == nil || !errors.Is(err, domain.ErrSourceNotFound) {
		return src, err
	}

	if alt := relativeTo(entry, name); alt != "" {
		if altSrc, altErr := sources.GetSource(alt); altErr == nil {
			return altSrc, nil
		}
	}
	return nil, err
}

func relativeTo(entry, name string) string {
	name = filepath.ToSlash(name)
	if entry == "" || path.IsAbs(name) {
		return ""
	}
	dir := path.Dir(filepath.ToSlash(entry))
	if dir == "." {
		return ""
	}
	alt := path.Join(dir, name)
	if alt == path.Clean(name) {
		return ""
	}
	return alt
}

// Script loads a script by name, falling back to builtin when name is empty.
func Script(sources ports.SourceFactory, name, builtinName, builtin string) (*domain.Source, error) {
	if name == "" {
		return domain.NewSource(builtinName, builtin), nil
	}
	src, err := sources.GetSource(name)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "load script"), "script", name)
	}
	return src, nil
}

// Adapter returns the compile adapter configured in cfg.
func Adapter(sources ports.SourceFactory, cfg domain.CompilerConfig) (*domain.Source, error) {
	return Script(sources, cfg.Adapter, scripts.AdapterName, scripts.Adapter)
}

// Session is the host side of one compilation.
type Session struct {
	entry   string
	sources ports.SourceFactory

	mu          sync.Mutex
	diagnostics []string
	readErr     error
}

// NewSession starts a compilation of entry that resolves files through sources.
func NewSession(entry string, sources ports.SourceFactory) *Session {
	return &Session{entry: entry, sources: sources}
}

// Entry resolves the entry file. A missing entry fails the compilation
// before any script runs.
func (s *Session) Entry() (*domain.Source, error) {
	src, err := s.sources.GetSource(s.entry)
	if err != nil {
		return nil, &domain.CompileError{Filename: s.entry, Err: err}
	}
	return src, nil
}

// GetSource resolves name for script code.
func (s *Session) GetSource(name string) Result {
	src, err := Resolve(s.sources, s.entry, name)
	if err != nil {
		if errors.Is(err, domain.ErrSourceNotFound) {
			return Result{Filename: name}
		}
		s.mu.Lock()
		if s.readErr == nil {
			s.readErr = err
		}
		s.mu.Unlock()
		return Result{Filename: name, Error: err.Error()}
	}
	return Result{
		Found:    true,
		Filename: src.Filename(),
		Contents: src.Contents(),
	}
}

// ReportDiagnostic records one compiler diagnostic.
func (s *Session) ReportDiagnostic(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnostics = append(s.diagnostics, strings.TrimRight(text, "\n"))
}

// Diagnostics returns the recorded diagnostics, one per line.
func (s *Session) Diagnostics() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.diagnostics) == 0 {
		return ""
	}
	return strings.Join(s.diagnostics, "\n") + "\n"
}

// Fail converts a script failure into a CompileError carrying the diagnostics.
func (s *Session) Fail(err error) error {
	s.mu.Lock()
	readErr := s.readErr
	s.mu.Unlock()

	if readErr != nil {
		err = errors.Join(err, readErr)
	}
	return &domain.CompileError{
		Filename: s.entry,
		Output:   s.Diagnostics(),
		Err:      err,
	}
}
