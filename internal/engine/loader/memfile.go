package loader

import (
	"io/fs"
	"path"
	"strings"
	"time"
)

// memFile serves compiled output as a read-only fs.File.
type memFile struct {
	*strings.Reader
	info memInfo
}

func newMemFile(name, contents string) *memFile {
	return &memFile{
		Reader: strings.NewReader(contents),
		info:   memInfo{name: path.Base(name), size: int64(len(contents))},
	}
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f.info, nil }

func (f *memFile) Close() error { return nil }

type memInfo struct {
	name string
	size int64
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return 0o444 }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return false }
func (i memInfo) Sys() any           { return nil }
