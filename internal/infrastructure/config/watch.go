package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"vawter.tech/stopper"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// DefaultDebounce coalesces bursts of writes from editors
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a Store whenever its file changes
type Watcher struct {
	store    *Store
	log      *zap.Logger
	debounce time.Duration
	onChange func(types.ControlRoomConfig)
	onError  func(error)

	sctx *stopper.Context
}

// Watch starts watching the store's file. The directory is watched so
// that atomic replacements by editors are observed. onChange receives
// every successfully reloaded configuration; onError receives reload and
// watch failures.
func Watch(ctx context.Context, store *Store, debounce time.Duration, onChange func(types.ControlRoomConfig), onError func(error)) (*Watcher, error) {
	if store.Path() == "" {
		return nil, ErrNoConfigFile
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	dir := filepath.Dir(store.Path())
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		store:    store,
		log:      store.log.Named("watch"),
		debounce: debounce,
		onChange: onChange,
		onError:  onError,
		sctx:     stopper.WithContext(ctx),
	}
	w.sctx.Defer(func() {
		_ = fw.Close()
	})

	w.sctx.Go(func(sctx *stopper.Context) error {
		return w.loop(sctx, fw)
	})

	w.log.Debug("watching control room config", zap.String("path", store.Path()))
	return w, nil
}

func (w *Watcher) loop(sctx *stopper.Context, fw *fsnotify.Watcher) error {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	sctx.Defer(func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	})

	target := filepath.Base(w.store.Path())
	for !sctx.IsStopping() {
		select {
		case <-sctx.Stopping():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() { w.reload(sctx) })
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			if err != nil && !sctx.IsStopping() {
				w.log.Warn("config watch error", zap.Error(err))
				w.report(err)
			}
		}
	}
	return nil
}

func (w *Watcher) reload(sctx *stopper.Context) {
	if sctx.IsStopping() {
		return
	}
	cfg, err := w.store.Reload()
	if err != nil {
		w.report(err)
		return
	}
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

func (w *Watcher) report(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}

// Close stops watching and waits for the watch goroutine
func (w *Watcher) Close() error {
	w.sctx.Stop(100 * time.Millisecond)
	return w.sctx.Wait()
}
