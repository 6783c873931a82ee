package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/tsload/internal/core/domain"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Cache = (*Disk)(nil)

// Disk persists compiled output as one file per source digest.
// A Memory cache in front of it serves repeated lookups.
type Disk struct {
	dir    string
	memory *Memory
	logger ports.Logger

	mu sync.Mutex
}

// NewDisk creates a Disk cache rooted at dir with an L1 tier of memorySize entries.
// The directory is created on first write.
func NewDisk(dir string, memorySize int, logger ports.Logger) (*Disk, error) {
	memory, err := NewMemory(memorySize)
	if err != nil {
		return nil, err
	}
	return &Disk{
		dir:    dir,
		memory: memory,
		logger: logger,
	}, nil
}

// Dir returns the cache directory.
func (d *Disk) Dir() string {
	return d.dir
}

// Get returns the compiled text for src from memory or disk.
// Read failures are treated as misses.
func (d *Disk) Get(src *domain.Source) (string, bool) {
	if compiled, ok := d.memory.Get(src); ok {
		return compiled, true
	}

	path := d.path(src)
	//nolint:gosec // The file name is a base64url digest inside the cache directory.
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			d.warn(zerr.With(zerr.Wrap(err, "read cache entry"), "path", path))
		}
		return "", false
	}

	compiled := string(data)
	d.memory.Put(src, compiled)
	return compiled, true
}

// Put stores the compiled text in memory and on disk.
// Write failures are logged and otherwise ignored.
func (d *Disk) Put(src *domain.Source, compiled string) {
	d.memory.Put(src, compiled)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.write(d.path(src), compiled); err != nil {
		d.warn(err)
	}
}

func (d *Disk) write(path, compiled string) error {
	if err := os.MkdirAll(d.dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "create cache directory"), "dir", d.dir)
	}

	tmp, err := os.CreateTemp(d.dir, ".entry-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "create cache entry"), "path", path)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.WriteString(compiled)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "write cache entry"), "path", path)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "write cache entry"), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "write cache entry"), "path", path)
	}
	return nil
}

func (d *Disk) path(src *domain.Source) string {
	return filepath.Join(d.dir, src.Digest())
}

func (d *Disk) warn(err error) {
	if d.logger != nil {
		d.logger.Warn(fmt.Sprintf("disk cache: %v", err))
	}
}
