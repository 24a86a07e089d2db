// Package scheduler drives the periodic yields refresh.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"brother-yield/internal/logger"
)

// Scheduler runs the refresh function on a cron spec.
type Scheduler struct {
	cron        *cron.Cron
	spec        string
	ctx         context.Context
	cancel      context.CancelFunc
	refreshFunc func(ctx context.Context) error
}

// New creates a scheduler for the given cron spec (standard 5-field syntax,
// UTC).
func New(spec string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetRefreshFunc sets the function invoked on every tick.
func (s *Scheduler) SetRefreshFunc(f func(ctx context.Context) error) {
	s.refreshFunc = f
}

// Start registers the cron entry and starts ticking.
func (s *Scheduler) Start() error {
	if s.refreshFunc == nil {
		logger.L().Warn("refresh function not set, scheduler will not run")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		logger.L().Infow("triggered scheduled yields refresh", "spec", s.spec)
		if err := s.refreshFunc(s.ctx); err != nil {
			logger.L().Errorw("scheduled yields refresh failed", "err", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.L().Infow("scheduler started", "spec", s.spec)
	return nil
}

// Stop halts the cron loop and waits for a running refresh entry to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	logger.L().Info("scheduler stopped")
}

// IsRunning reports whether any entries are registered.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
