// internal/app/system/workers/loginprune.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LoginPruner deletes sign-in history older than a cutoff.
type LoginPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// LoginPrune is a background worker that trims the sign-in history to the
// configured retention.
type LoginPrune struct {
	logins    LoginPruner
	log       *zap.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewLoginPrune creates a new pruning worker.
//
// Parameters:
//   - logins: the sign-in history store
//   - logger: zap logger for logging
//   - interval: how often to prune (e.g., 1 hour)
//   - retention: how long a record is kept (e.g., 90 days)
func NewLoginPrune(logins LoginPruner, logger *zap.Logger, interval, retention time.Duration) *LoginPrune {
	return &LoginPrune{
		logins:    logins,
		log:       logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start prunes once and then on every interval until Stop.
func (w *LoginPrune) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("login history pruning started",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *LoginPrune) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

func (w *LoginPrune) run() {
	defer w.wg.Done()

	w.PruneOnce()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.PruneOnce()
		}
	}
}

// PruneOnce runs a single pass and returns the number of records removed.
func (w *LoginPrune) PruneOnce() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := w.now().UTC().Add(-w.retention)
	count, err := w.logins.DeleteBefore(ctx, cutoff)
	if err != nil {
		w.log.Error("failed to prune login history", zap.Error(err))
		return 0
	}
	if count > 0 {
		w.log.Info("pruned login history", zap.Int64("count", count), zap.Time("cutoff", cutoff))
	}
	return count
}
