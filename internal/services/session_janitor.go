package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionSweeper drops sessions that expired before the given instant.
type SessionSweeper interface {
	Cleanup(olderThan time.Time) (int, error)
}

// SessionJanitor periodically purges expired UI sessions from the local session store.
type SessionJanitor struct {
	store  SessionSweeper
	logger *zap.Logger
	cron   *cron.Cron
	now    func() time.Time
	swept  atomic.Int64
}

func NewSessionJanitor(store SessionSweeper, interval time.Duration, logger *zap.Logger) (*SessionJanitor, error) {
	if store == nil {
		return nil, fmt.Errorf("session janitor: store is required")
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	j := &SessionJanitor{
		store:  store,
		logger: logger,
		cron:   cron.New(cron.WithSeconds()),
		now:    time.Now,
	}

	schedule := fmt.Sprintf("@every %s", interval)
	if _, err := j.cron.AddFunc(schedule, func() { _, _ = j.Sweep() }); err != nil {
		return nil, fmt.Errorf("session janitor schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start launches the cron scheduler.
func (j *SessionJanitor) Start() {
	j.cron.Start()
	j.logger.Info("session janitor started")
}

// Stop waits for a running sweep to finish or for ctx to expire.
func (j *SessionJanitor) Stop(ctx context.Context) error {
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	j.logger.Info("session janitor stopped", zap.Int64("swept_total", j.swept.Load()))
	return nil
}

// Sweep removes expired sessions once.
func (j *SessionJanitor) Sweep() (int, error) {
	removed, err := j.store.Cleanup(j.now())
	if err != nil {
		j.logger.Error("session cleanup failed", zap.Error(err))
		return removed, err
	}
	if removed > 0 {
		j.swept.Add(int64(removed))
		j.logger.Info("expired sessions removed", zap.Int("count", removed))
	}
	return removed, nil
}
