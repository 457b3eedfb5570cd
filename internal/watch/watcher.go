// Package watch re-reads HTML fixtures when they change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"vsr/internal/logging"
)

// Handler is called with the path of a fixture whose changes have settled.
type Handler func(ctx context.Context, path string)

// Stats tracks watcher activity.
type Stats struct {
	Created       int
	Modified      int
	Removed       int
	Reloads       int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
	LastEventType string
}

// Watcher watches fixture files, or every .html/.htm file in watched
// directories, and calls its handler once per burst of writes.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	handler     Handler
	files       map[string]bool
	dirs        []string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stats       Stats
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must be quiet before it is reloaded.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceDur = d
		}
	}
}

// New creates a watcher over paths. A path naming a directory watches every
// HTML file inside it; a file path watches that file only.
func New(paths []string, handler Handler, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watch: nil handler")
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("watch: no paths")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:     fw,
		handler:     handler,
		files:       make(map[string]bool),
		debounceMap: make(map[string]time.Time),
		debounceDur: 300 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	seen := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, err
		}
		dir := abs
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			w.files[abs] = true
			dir = filepath.Dir(abs)
		}
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// Start begins watching. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, dir := range w.dirs {
		// Editors replace files on save, so directories are watched
		// rather than the files themselves.
		if err := w.watcher.Add(dir); err != nil {
			logging.WatchWarn("failed to watch %s: %v", dir, err)
			continue
		}
		logging.Watch("watching directory: %s", dir)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.WatchWarn("error closing watcher: %v", err)
	}
	logging.Watch("stopped")
}

// Stats returns a copy of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// Dirs returns the watched directories.
func (w *Watcher) Dirs() []string {
	return append([]string(nil), w.dirs...)
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := 100 * time.Millisecond
	if w.debounceDur < tick {
		tick = w.debounceDur
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("context cancelled")
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchWarn("watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *Watcher) relevant(path string) bool {
	if len(w.files) > 0 && w.files[path] {
		return true
	}
	for _, dir := range w.dirs {
		if filepath.Dir(path) != dir || w.hasFilesIn(dir) {
			continue
		}
		ext := strings.ToLower(filepath.Ext(path))
		return ext == ".html" || ext == ".htm"
	}
	return false
}

// hasFilesIn reports whether dir was added for explicit files only.
func (w *Watcher) hasFilesIn(dir string) bool {
	for f := range w.files {
		if filepath.Dir(f) == dir {
			return true
		}
	}
	return false
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if !w.relevant(path) {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}
	logging.WatchDebug("%s event for %s", eventType, path)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = path
	w.stats.LastEventType = eventType
	switch eventType {
	case "create":
		w.stats.Created++
	case "modify":
		w.stats.Modified++
	default:
		w.stats.Removed++
	}
	w.debounceMap[path] = time.Now()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		if _, err := os.Stat(path); err != nil {
			logging.WatchDebug("skipping %s: %v", path, err)
			continue
		}
		w.mu.Lock()
		w.stats.Reloads++
		w.mu.Unlock()
		w.handler(ctx, path)
	}
}
