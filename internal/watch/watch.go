// Package watch re-runs an analysis when watched CSS or config files change.
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/muffinresearch/arewedesigntokensyet/internal/log"
)

// debounceWindow coalesces bursts of filesystem events into one rerun
const debounceWindow = 250 * time.Millisecond

// watchedExtensions are the file types whose changes trigger a rerun
var watchedExtensions = map[string]bool{
	".css":   true,
	".json":  true,
	".jsonc": true,
	".yaml":  true,
	".yml":   true,
}

// Watch watches root recursively and calls rerun after each debounced batch
// of relevant changes. It blocks until ctx is cancelled.
func Watch(ctx context.Context, root string, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root); err != nil {
		return err
	}
	log.Info("watching %s for changes", root)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories need their own watches
			if event.Op.Has(fsnotify.Create) {
				if err := addRecursive(watcher, event.Name); err == nil {
					log.Debug("watching new path %s", event.Name)
				}
			}
			if !watchedExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			log.Debug("change detected: %s (%s)", event.Name, event.Op)
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerC = timer.C
			} else {
				timer.Reset(debounceWindow)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error: %v", err)

		case <-timerC:
			timer = nil
			timerC = nil
			rerun()
		}
	}
}

// addRecursive watches path and, when it is a directory, every directory
// under it except node_modules and dot-directories
func addRecursive(watcher *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		name := d.Name()
		if p != path && (name == "node_modules" || strings.HasPrefix(name, ".")) {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}
