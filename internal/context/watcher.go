package context

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pointer/internal/logging"
)

const watchDebounce = 500 * time.Millisecond

// Watcher marks a cache stale when the workspace changes on disk. Events are
// debounced so a burst of writes triggers a single invalidation.
type Watcher struct {
	cache   *Cache
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher starts watching the cache's root and its first-level
// subdirectories. Close releases the watcher.
func NewWatcher(cache *Cache) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		cache:   cache,
		watcher: fw,
		done:    make(chan struct{}),
	}

	if err := fw.Add(cache.Root()); err != nil {
		fw.Close()
		return nil, err
	}
	for _, f := range cache.Files() {
		dir := filepath.Dir(f.Path)
		if dir != cache.Root() {
			// Best effort; a missing or unreadable directory just goes
			// unwatched.
			fw.Add(dir)
		}
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ignorable(event.Name) {
				continue
			}
			w.scheduleInvalidate()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Debug("watch error", "error", err)
		}
	}
}

func (w *Watcher) scheduleInvalidate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounce, w.cache.MarkStale)
}

// ignorable filters editor droppings and hidden paths out of the event
// stream.
func ignorable(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".tmp")
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
