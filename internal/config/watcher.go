// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/projeval/evalctl/internal/logger"
)

// StoreWatcher reloads a Resolver when the persisted store file changes on
// disk, so edits made by another evalctl process (or by hand) reach a
// long-running serve session without a restart. Events are debounced: a
// burst of writes triggers a single reload.
type StoreWatcher struct {
	resolver *Resolver
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *logger.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
}

// NewStoreWatcher constructs a watcher for resolver. Returns an error only
// when the underlying file-system notifier cannot be created.
func NewStoreWatcher(resolver *Resolver, log *logger.Logger) (*StoreWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	return &StoreWatcher{
		resolver: resolver,
		watcher:  fsWatcher,
		debounce: 500 * time.Millisecond,
		logger:   log,
	}, nil
}

// SetDebounce overrides the debounce window. Must be called before Watch.
func (w *StoreWatcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Watch starts watching path until ctx is canceled or Close is called.
func (w *StoreWatcher) Watch(ctx context.Context, path string) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	if err := w.watcher.Add(path); err != nil {
		return err
	}

	go w.loop(ctx)
	return nil
}

// Close stops the watcher and releases the notifier.
func (w *StoreWatcher) Close() error {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *StoreWatcher) loop(ctx context.Context) {
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			pending = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("store watcher error")
		case <-pending:
			pending = nil
			w.logger.Debug().Msg("persisted settings changed on disk, reloading")
			w.resolver.Reload(ctx)
		}
	}
}
