package incremental

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last filesystem event
// before a watch-mode refresh fires, avoiding a refresh per keystroke
// during a save-heavy edit burst.
const DefaultDebounce = 500 * time.Millisecond

// Watch recursively watches the project tree and triggers a mtime-based
// refresh after each debounced burst of filesystem activity. It blocks
// until ctx is cancelled. This is an optional supplement to the three
// on-demand refresh strategies, for long-running `codeindex watch` style
// invocations.
func (e *Engine) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursively(w, e.root, e.ignore); err != nil {
		return err
	}

	var mu sync.Mutex
	var timer *time.Timer
	fire := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			counters, err := e.RefreshByMtime(ctx)
			if err != nil {
				log.Printf("watch refresh failed: %v", err)
				return
			}
			if counters.Mutations() > 0 {
				log.Printf("watch refresh: +%d ~%d -%d files", counters.FilesAdded, counters.FilesUpdated, counters.FilesDeleted)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			rel := e.relPath(event.Name)
			if e.ignore != nil && e.ignore.IsIgnored(rel) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.Add(event.Name)
				}
			}
			fire()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}

type ignorePredicate interface {
	IsIgnored(relPath string) bool
}

func addDirsRecursively(w *fsnotify.Watcher, root string, ignoreFilter ignorePredicate) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel != "." && ignoreFilter != nil && ignoreFilter.IsIgnored(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
