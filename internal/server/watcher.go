package server

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docsite/internal/logfields"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDuration = 500 * time.Millisecond

// watcher follows every directory of a source tree. The output directory and
// hidden entries are ignored so builds do not trigger themselves.
type watcher struct {
	fs        *fsnotify.Watcher
	outputDir string
	logger    *zap.Logger
	// Use a map to track watched directories and avoid duplicates.
	watched map[string]bool
}

func newWatcher(sourceRoot, outputDir string, logger *zap.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if outputDir != "" {
		if abs, err := filepath.Abs(outputDir); err == nil {
			outputDir = abs
		}
	}
	w := &watcher{fs: fsw, outputDir: outputDir, logger: logger, watched: make(map[string]bool)}
	if err := w.addTree(sourceRoot); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *watcher) Close() error { return w.fs.Close() }

// addTree watches dir and all its subdirectories.
func (w *watcher) addTree(dir string) error {
	return filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if p != dir && w.ignored(p) {
			return filepath.SkipDir
		}
		w.add(p)
		return nil
	})
}

func (w *watcher) add(dir string) {
	// Clean the path to have a consistent map key.
	dir = filepath.Clean(dir)
	if w.watched[dir] {
		return
	}
	if err := w.fs.Add(dir); err != nil {
		w.logger.Warn("Error adding watch", logfields.Path(dir), logfields.Error(err))
		return
	}
	w.logger.Debug("Watching directory", logfields.Path(dir))
	w.watched[dir] = true
}

func (w *watcher) ignored(p string) bool {
	if strings.HasPrefix(filepath.Base(p), ".") {
		return true
	}
	if w.outputDir == "" {
		return false
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	return abs == w.outputDir || strings.HasPrefix(abs, w.outputDir+string(filepath.Separator))
}

// run invalidates on every relevant event and calls rebuild once the tree
// has been quiet for debounceDuration. It returns when ctx is done or the
// watcher is closed.
func (w *watcher) run(ctx context.Context, invalidate, rebuild func()) {
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			// Create, write, remove and rename cover every editor save strategy.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("Error watching new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			w.logger.Debug("Change detected", logfields.Path(event.Name))
			invalidate()
			pending = time.After(debounceDuration)
		case <-pending:
			pending = nil
			rebuild()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}
