package watcher

import (
	"github.com/fsnotify/fsnotify"
	"go.trai.ch/tsload/internal/core/ports"
)

func ConvertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	return convertEvent(event)
}

func (w *Watcher) Directories(root string) []string {
	var dirs []string
	for dir := range w.watchRecursively(root) {
		dirs = append(dirs, dir)
	}
	return dirs
}
