// Package watcher monitors a workspace for surface edits and re-runs sync
// automatically. Used by `kin watch`.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mikesturm/kinetic/internal/engine"
)

// Watcher watches a workspace's markdown surfaces and triggers a full sync
// after edits settle. Sync is idempotent, so the writes a sync itself makes
// only ever cost one extra no-op run.
type Watcher struct {
	root   string
	engine *engine.Engine

	debounceDelay time.Duration
	debug         bool

	fsWatcher *fsnotify.Watcher
	mu        sync.Mutex
	pendingAt time.Time
	pending   bool
	syncing   bool

	onSync func(*engine.Result, error)
}

// Config holds configuration options for the Watcher.
type Config struct {
	Root          string
	Engine        *engine.Engine
	DebounceDelay time.Duration // Default: 250ms
	Debug         bool
	OnSync        func(*engine.Result, error) // Optional callback
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("workspace root is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = 250 * time.Millisecond
	}

	return &Watcher{
		root:          cfg.Root,
		engine:        cfg.Engine,
		debounceDelay: debounce,
		debug:         cfg.Debug,
		onSync:        cfg.OnSync,
	}, nil
}

// Start begins watching the workspace. It blocks until the context is
// cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	if err := w.addWatchRecursive(w.root); err != nil {
		return fmt.Errorf("failed to watch workspace: %w", err)
	}

	w.logDebug("Watching workspace: %s", w.root)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logDebug("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if !strings.HasSuffix(path, ".md") {
		// Watch new directories as they appear.
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				w.addWatchRecursive(path)
			}
		}
		return
	}
	if w.shouldIgnore(path) {
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.logDebug("Event: %s %s", event.Op, path)

	w.mu.Lock()
	w.pending = true
	w.pendingAt = time.Now()
	w.mu.Unlock()
}

// processDebounced runs a sync once events stop arriving for the debounce
// window.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.maybeSync()
		}
	}
}

func (w *Watcher) maybeSync() {
	w.mu.Lock()
	ready := w.pending && !w.syncing && time.Since(w.pendingAt) >= w.debounceDelay
	if ready {
		w.pending = false
		w.syncing = true
	}
	w.mu.Unlock()

	if !ready {
		return
	}

	res, err := w.engine.Sync()
	if w.onSync != nil {
		w.onSync(res, err)
	}
	if err != nil {
		w.logDebug("Sync failed: %v", err)
	} else {
		w.logDebug("Synced: %d documents, %d created, %d updated",
			res.Documents, res.Created, res.Updated)
	}

	w.mu.Lock()
	w.syncing = false
	w.mu.Unlock()
}

// addWatchRecursive adds a directory and all subdirectories to the watcher.
func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			if w.shouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			if err := w.fsWatcher.Add(path); err != nil {
				w.logDebug("Failed to watch %s: %v", path, err)
			}
		}
		return nil
	})
}

// shouldIgnore returns true if the path should not trigger a sync. Generated
// views are excluded so regeneration does not feed back into the watcher.
func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}

	parts := strings.Split(rel, string(filepath.Separator))
	for _, part := range parts {
		if part == ".kinetic" || part == ".git" || part == "Views" {
			return true
		}
	}
	return false
}

// shouldIgnoreDir returns true if the directory should not be watched.
func (w *Watcher) shouldIgnoreDir(path string) bool {
	base := filepath.Base(path)
	return base == ".kinetic" || base == ".git" || base == "Views"
}

// logDebug logs a debug message if debug mode is enabled.
func (w *Watcher) logDebug(format string, args ...interface{}) {
	if w.debug {
		fmt.Fprintf(os.Stderr, "[kin-watch] "+format+"\n", args...)
	}
}
