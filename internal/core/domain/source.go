package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"sync"

	"go.trai.ch/zerr"
)

// Source is an immutable named unit of text.
// Identity is content based: two sources are equal when both filename and
// contents match, and the digest depends on the contents alone.
type Source struct {
	filename string
	contents string

	digestOnce sync.Once
	digest     string
}

// SourceKey is the comparable identity of a Source.
type SourceKey struct {
	Filename string
	Contents string
}

// NewSource creates a Source from a filename and its contents.
func NewSource(filename, contents string) *Source {
	return &Source{
		filename: filename,
		contents: contents,
	}
}

// SourceFromFile reads a Source from the local filesystem.
func SourceFromFile(name string) (*Source, error) {
	// #nosec G304 -- names come from the loader's resolution chain
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, sourceReadError(name, err)
	}
	return NewSource(name, string(data)), nil
}

// SourceFromFS reads a Source from fsys.
func SourceFromFS(fsys fs.FS, name string) (*Source, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, sourceReadError(name, err)
	}
	return NewSource(name, string(data)), nil
}

// Filename returns the logical path presented to the compiler.
func (s *Source) Filename() string {
	return s.filename
}

// Contents returns the source text.
func (s *Source) Contents() string {
	return s.contents
}

// String returns the source text.
func (s *Source) String() string {
	return s.contents
}

// Key returns the comparable identity of the source.
func (s *Source) Key() SourceKey {
	return SourceKey{Filename: s.filename, Contents: s.contents}
}

// Equal reports whether s and other have the same filename and contents.
func (s *Source) Equal(other *Source) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.filename == other.filename && s.contents == other.contents
}

// Digest returns the SHA-256 of the contents as unpadded base64url.
// It is computed once and is safe to use as a file name.
func (s *Source) Digest() string {
	s.digestOnce.Do(func() {
		sum := sha256.Sum256([]byte(s.contents))
		s.digest = base64.RawURLEncoding.EncodeToString(sum[:])
	})
	return s.digest
}

// NotFoundError builds the error returned when name cannot be resolved.
func NotFoundError(name string, cause error) error {
	if cause == nil {
		return zerr.With(zerr.Wrap(ErrSourceNotFound, "resolve source"), "filename", name)
	}
	return errors.Join(ErrSourceNotFound, zerr.With(cause, "filename", name))
}

func sourceReadError(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return NotFoundError(name, err)
	}
	return errors.Join(ErrSourceReadFailed, zerr.With(err, "filename", name))
}
