// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/projeval/evalctl/internal/config"
	"github.com/projeval/evalctl/internal/logger"
	"github.com/projeval/evalctl/internal/probe"
)

// ConnectionChecker is the probe dependency of the refresh worker.
type ConnectionChecker interface {
	Check(ctx context.Context) probe.Result
}

// RefreshWorker re-probes the backend on the configured
// autoRefreshInterval so a long-running serve session notices the backend
// coming or going. An interval of zero disables probing; the worker
// subscribes to the resolver, so changing the interval at runtime takes
// effect without a restart.
type RefreshWorker struct {
	checker ConnectionChecker
	logger  *logger.Logger

	mu       sync.Mutex
	interval time.Duration

	bump chan struct{}
	stop chan struct{}
	once sync.Once
}

// NewRefreshWorker constructs the worker and registers it with resolver.
func NewRefreshWorker(resolver *config.Resolver, checker ConnectionChecker, log *logger.Logger) *RefreshWorker {
	if log == nil {
		log = logger.Nop()
	}

	w := &RefreshWorker{
		checker: checker,
		logger:  log,
		bump:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
	w.setInterval(resolver.Snapshot().AutoRefreshInterval)

	resolver.Subscribe(func(s config.Settings) {
		w.setInterval(s.AutoRefreshInterval)
	})

	return w
}

func (w *RefreshWorker) setInterval(millis int) {
	w.mu.Lock()
	w.interval = time.Duration(millis) * time.Millisecond
	w.mu.Unlock()

	select {
	case w.bump <- struct{}{}:
	default:
	}
}

func (w *RefreshWorker) currentInterval() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.interval
}

// Run implements Worker. It spawns the probe loop and returns immediately.
func (w *RefreshWorker) Run() {
	go w.loop()
}

// Stop terminates the probe loop. Safe to call more than once.
func (w *RefreshWorker) Stop() {
	w.once.Do(func() { close(w.stop) })
}

func (w *RefreshWorker) loop() {
	for {
		interval := w.currentInterval()
		if interval <= 0 {
			select {
			case <-w.bump:
				continue
			case <-w.stop:
				return
			}
		}

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
			result := w.checker.Check(context.Background())
			w.logger.Info().
				Bool("success", result.Success).
				Int("status", result.Status).
				Msg("auto refresh probe")
		case <-w.bump:
			timer.Stop()
		case <-w.stop:
			timer.Stop()
			return
		}
	}
}
