package devserver

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/floe-build/floe/internal/mount"
)

// Watcher watches every mounted directory and reports file changes.
type Watcher struct {
	inner   *fsnotify.Watcher
	onEvent func(path string)
	done    chan struct{}
}

// NewWatcher starts watching the mount table's directories (recursively)
// under cwd. onEvent receives the changed path.
func NewWatcher(table *mount.Table, cwd string, onEvent func(path string)) (*Watcher, error) {
	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{inner: inner, onEvent: onEvent, done: make(chan struct{})}

	for _, entry := range table.Entries() {
		root := filepath.Join(cwd, filepath.FromSlash(entry.DiskPrefix))
		if err := w.addRecursive(root); err != nil {
			log.Warn().Str("dir", root).Err(err).Msg("Cannot watch mounted directory")
		}
	}

	go w.run()
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules" {
			return filepath.SkipDir
		}
		return w.inner.Add(path)
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.inner.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need their own watch.
			if event.Op&fsnotify.Create != 0 {
				if err := w.addRecursive(event.Name); err == nil {
					log.Debug().Str("dir", event.Name).Msg("Watching new path")
				}
			}
			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("File changed")
			w.onEvent(event.Name)
		case err, ok := <-w.inner.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Watcher error")
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.inner.Close()
}
