package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tsload/internal/adapters/watcher"
	"go.trai.ch/tsload/internal/core/ports"
	"go.trai.ch/tsload/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestConvertEvent(t *testing.T) {
	tests := []struct {
		name   string
		event  fsnotify.Event
		want   ports.WatchOp
		wantOK bool
	}{
		{"write", fsnotify.Event{Name: "a.ts", Op: fsnotify.Write}, ports.OpWrite, true},
		{"create", fsnotify.Event{Name: "a.ts", Op: fsnotify.Create}, ports.OpCreate, true},
		{"remove", fsnotify.Event{Name: "a.ts", Op: fsnotify.Remove}, ports.OpRemove, true},
		{"rename", fsnotify.Event{Name: "a.ts", Op: fsnotify.Rename}, ports.OpRename, true},
		{"upper case extension", fsnotify.Event{Name: "A.TS", Op: fsnotify.Write}, ports.OpWrite, true},
		{"chmod ignored", fsnotify.Event{Name: "a.ts", Op: fsnotify.Chmod}, 0, false},
		{"javascript ignored", fsnotify.Event{Name: "a.js", Op: fsnotify.Write}, 0, false},
		{"directory ignored", fsnotify.Event{Name: "src", Op: fsnotify.Create}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := watcher.ConvertEvent(tt.event)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got.Operation)
				assert.Equal(t, tt.event.Name, got.Path)
			}
		})
	}
}

func TestWatcher_SkipsDirectories(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"src/nested", "node_modules/pkg", ".git", "typescript_code_cache", "out"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o750))
	}

	ctrl := gomock.NewController(t)
	w, err := watcher.NewWatcher(mocks.NewMockLogger(ctrl), watcher.WithSkipDir("out"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "src"),
		filepath.Join(root, "src", "nested"),
	}, w.Directories(root))
}

func TestWatcher_ReportsTypeScriptChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o750))

	ctrl := gomock.NewController(t)
	w, err := watcher.NewWatcher(mocks.NewMockLogger(ctrl))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, w.Start(ctx, root))
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "notes.txt"), []byte("x"), 0o600))
	target := filepath.Join(root, "src", "main.ts")
	require.NoError(t, os.WriteFile(target, []byte("var i: number = 5;"), 0o600))

	found := false
	for event := range w.Events() {
		assert.True(t, watcher.IsSource(event.Path), event.Path)
		if event.Path == target {
			found = true
			break
		}
	}
	assert.True(t, found, "no event for %s", target)
}
