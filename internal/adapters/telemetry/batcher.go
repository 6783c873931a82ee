// Package telemetry provides tracing adapters built on OpenTelemetry.
package telemetry

import (
	"bytes"
	"sync"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultSizeLimit is the buffered byte count that forces a flush.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the longest buffered lines wait before a flush.
	DefaultTimeLimit = 50 * time.Millisecond
)

var errBatcherClosed = zerr.New("line batcher is closed")

// LineBatcher buffers writes and hands complete lines to a callback once a
// size or time limit is reached. A partial trailing line is held back until
// it is completed or the batcher is closed.
type LineBatcher struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu     sync.Mutex
	buffer bytes.Buffer
	ticker *time.Ticker
	stopCh chan struct{}
	closed bool
}

// NewLineBatcher starts a batcher. Non-positive limits select the defaults.
// Close stops the background ticker.
func NewLineBatcher(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *LineBatcher {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	b := &LineBatcher{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
		ticker:    time.NewTicker(timeLimit),
		stopCh:    make(chan struct{}),
	}
	go b.run()
	return b
}

// Write buffers p, flushing complete lines when the size limit is reached.
func (b *LineBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errBatcherClosed
	}

	n, _ := b.buffer.Write(p)
	if b.buffer.Len() >= b.sizeLimit {
		b.flushLocked(false)
		b.ticker.Reset(b.timeLimit)
	}
	return n, nil
}

// Flush hands every complete buffered line to the callback.
func (b *LineBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.flushLocked(false)
	}
}

// Close stops the ticker and flushes everything, including a partial line.
func (b *LineBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.stopCh)
	b.flushLocked(true)
	return nil
}

func (b *LineBatcher) run() {
	for {
		select {
		case <-b.ticker.C:
			b.Flush()
		case <-b.stopCh:
			b.ticker.Stop()
			return
		}
	}
}

// flushLocked must be called with mu held.
func (b *LineBatcher) flushLocked(all bool) {
	data := b.buffer.Bytes()
	end := len(data)
	if !all {
		end = bytes.LastIndexByte(data, '\n') + 1
	}
	if end == 0 {
		return
	}

	out := make([]byte, end)
	copy(out, data[:end])
	b.buffer.Next(end)

	if b.onFlush != nil {
		b.onFlush(out)
	}
}
