package dataset

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/seglab/segfeed/pkg/log"
)

// Watcher monitors dataset directories and flips a dirty flag when files
// are added, removed or renamed. The loader checks the flag on StartEpoch
// and rescans the root before the new epoch begins. Changes never interrupt
// a running epoch.
type Watcher struct {
	fsw    *fsnotify.Watcher
	logger log.Logger
	dirty  atomic.Bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher over the given directories.
func NewWatcher(dirs []string, logger log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return &Watcher{fsw: fsw, logger: logger}, nil
}

// Start launches the watch loop. It runs until the context is canceled or
// Close is called.
func (w *Watcher) Start(ctx context.Context) {
	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.loop(watchCtx)
}

// Dirty reports whether the dataset changed since the last ClearDirty.
func (w *Watcher) Dirty() bool { return w.dirty.Load() }

// ClearDirty resets the change flag, typically right after a rescan.
func (w *Watcher) ClearDirty() { w.dirty.Store(false) }

// Close stops the watch loop and releases the underlying watcher.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.dirty.CompareAndSwap(false, true) {
				w.logger.Debug("dataset changed, rescan scheduled for next epoch",
					log.String("path", event.Name))
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("dataset watcher error", log.Err(err))
		}
	}
}
