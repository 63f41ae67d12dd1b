// Package watch reruns the suite whenever a registered source file
// changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"vrt/internal/registry"
)

// Watcher monitors the directories of all registered source units and
// invokes a callback once a burst of changes has settled.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	log         *zap.Logger
	onChange    func()
	sources     map[string]struct{}
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// New creates a watcher over the source units currently registered.
// onChange runs on the watcher goroutine after changes settle.
func New(reg *registry.Registry, log *zap.Logger, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	sources := make(map[string]struct{})
	dirs := make(map[string]struct{})
	for u := range reg.Units() {
		abs, err := filepath.Abs(u.Path)
		if err != nil {
			abs = u.Path
		}
		sources[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	w := &Watcher{
		watcher:     fsw,
		log:         log,
		onChange:    onChange,
		sources:     sources,
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			log.Warn("watch: cannot watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		log.Debug("watch: watching directory", zap.String("dir", dir))
	}

	return w, nil
}

// Start begins watching. Non-blocking; events are handled on a
// dedicated goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
}

// Stop stops the watcher and waits for the event loop to exit.
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
		w.log.Error("watch: error closing watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
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
			w.log.Error("watch: filesystem error", zap.Error(err))

		case <-debounceTicker.C:
			w.processDebouncedEvents()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		abs = event.Name
	}
	if _, ok := w.sources[abs]; !ok {
		return
	}

	w.log.Debug("watch: source changed", zap.String("path", abs))
	w.mu.Lock()
	w.debounceMap[abs] = time.Now()
	w.mu.Unlock()
}

// processDebouncedEvents fires the callback once per settled burst.
func (w *Watcher) processDebouncedEvents() {
	w.mu.Lock()
	now := time.Now()
	settled := 0
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			settled++
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	if settled > 0 {
		w.onChange()
	}
}
