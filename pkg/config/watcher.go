package config

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/bvtime/reconciler/engine/core"
)

// Watcher watches the on-disk config file for changes and invokes
// registered callbacks on write events, grounded on the teacher's
// fsnotify-backed watcher contract (pkg/config/watcher_test.go). The
// `schedule` daemon uses it to log config-file changes; it does not reload
// the configuration itself.
type Watcher struct {
	fsw *fsnotify.Watcher

	mu        sync.Mutex
	callbacks []func()
	closed    bool
}

func NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, core.NewError(err, core.KindIOError, nil)
	}
	return &Watcher{fsw: fsw}, nil
}

func (w *Watcher) OnChange(cb func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Watch adds path to the watch set and starts a background goroutine
// dispatching Write events to every registered callback until ctx is
// cancelled or Close is called.
func (w *Watcher) Watch(ctx context.Context, path string) error {
	if err := w.fsw.Add(path); err != nil {
		return core.NewError(err, core.KindIOError, map[string]any{"path": path})
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					w.notify()
				}
			case _, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

func (w *Watcher) notify() {
	w.mu.Lock()
	callbacks := make([]func(), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}
