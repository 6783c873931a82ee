// Package watcher reports changes to TypeScript sources and batches them for
// recompilation.
package watcher

import (
	"slices"
	"sync"
	"time"
	"unique"
)

// Debouncer coalesces rapid file system events into sorted batches.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]struct{}
	timer    *time.Timer
	gen      uint64
	window   time.Duration
	callback func(paths []string)

	// inflight counts armed timers and running batches.
	inflight sync.WaitGroup
}

// NewDebouncer creates a new debouncer with the given time window and callback.
func NewDebouncer(window time.Duration, callback func(paths []string)) *Debouncer {
	return &Debouncer{
		pending:  make(map[unique.Handle[string]]struct{}),
		window:   window,
		callback: callback,
	}
}

// Add adds a file path to the pending set and restarts the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[unique.Make(path)] = struct{}{}

	// A stopped timer hands its inflight slot to the new one.
	if d.timer == nil || !d.timer.Stop() {
		d.inflight.Add(1)
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() { d.fire(gen) })
}

// drain returns the pending paths in sorted order and clears the set.
// The caller must hold d.mu.
func (d *Debouncer) drain() []string {
	paths := make([]string, 0, len(d.pending))
	for handle := range d.pending {
		paths = append(paths, handle.Value())
	}
	slices.Sort(paths)
	d.pending = make(map[unique.Handle[string]]struct{})
	return paths
}

func (d *Debouncer) fire(gen uint64) {
	defer d.inflight.Done()

	d.mu.Lock()
	if gen != d.gen {
		// A later Add rearmed the window after this timer had already fired.
		d.mu.Unlock()
		return
	}
	d.timer = nil
	paths := d.drain()
	d.mu.Unlock()

	if len(paths) > 0 && d.callback != nil {
		d.callback(paths)
	}
}

// Flush immediately runs the callback with all pending paths and blocks until
// it returns.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// The timer already fired and owns the batch.
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.inflight.Done()
	}
	paths := d.drain()
	d.mu.Unlock()

	if len(paths) > 0 && d.callback != nil {
		d.callback(paths)
	}
}

// Close runs the pending batch and waits for batches already running.
// Paths added after Close are not guaranteed to be delivered.
func (d *Debouncer) Close() {
	d.Flush()
	d.inflight.Wait()
}
