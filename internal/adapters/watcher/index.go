package watcher

import (
	"path/filepath"
	"slices"
	"sync"
	"unique"
)

// Index maps watched entry files to the sources their last compilation read,
// so a changed dependency can be traced back to the entries that need a
// recompile.
type Index struct {
	mu         sync.RWMutex
	deps       map[unique.Handle[string]][]unique.Handle[string]
	dependents map[unique.Handle[string]]map[unique.Handle[string]]struct{}
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		deps:       make(map[unique.Handle[string]][]unique.Handle[string]),
		dependents: make(map[unique.Handle[string]]map[unique.Handle[string]]struct{}),
	}
}

func key(path string) unique.Handle[string] {
	return unique.Make(filepath.Clean(path))
}

// Update replaces the recorded sources of entry. The entry always depends on
// itself.
func (i *Index) Update(entry string, sources []string) {
	e := key(entry)

	i.mu.Lock()
	defer i.mu.Unlock()

	i.removeLocked(e)

	handles := []unique.Handle[string]{e}
	for _, src := range sources {
		if h := key(src); h != e && !slices.Contains(handles, h) {
			handles = append(handles, h)
		}
	}
	i.deps[e] = handles
	for _, h := range handles {
		set, ok := i.dependents[h]
		if !ok {
			set = make(map[unique.Handle[string]]struct{})
			i.dependents[h] = set
		}
		set[e] = struct{}{}
	}
}

// Remove forgets entry.
func (i *Index) Remove(entry string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.removeLocked(key(entry))
}

func (i *Index) removeLocked(e unique.Handle[string]) {
	for _, h := range i.deps[e] {
		set := i.dependents[h]
		delete(set, e)
		if len(set) == 0 {
			delete(i.dependents, h)
		}
	}
	delete(i.deps, e)
}

// Affected returns the entries that read any of paths, sorted.
func (i *Index) Affected(paths []string) []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	seen := make(map[unique.Handle[string]]struct{})
	for _, path := range paths {
		for e := range i.dependents[key(path)] {
			seen[e] = struct{}{}
		}
	}

	entries := make([]string, 0, len(seen))
	for e := range seen {
		entries = append(entries, e.Value())
	}
	slices.Sort(entries)
	return entries
}

// Sources returns the recorded sources of entry, entry first.
func (i *Index) Sources(entry string) []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	handles := i.deps[key(entry)]
	out := make([]string, len(handles))
	for n, h := range handles {
		out[n] = h.Value()
	}
	return out
}
