// Package main provides the expired-access sweeper.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Sweeper removes accesses whose expiry has passed.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// Scheduler runs a Sweeper on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	schedule string
	sweeper  Sweeper
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewScheduler(schedule string, sweeper Sweeper, logger *slog.Logger) (*Scheduler, error) {
	scheduler := &Scheduler{
		schedule: schedule,
		sweeper:  sweeper,
		logger:   logger.With("module", "access_sweep_scheduler", "schedule", schedule),
	}

	if err := scheduler.Validate(); err != nil {
		return nil, err
	}

	return scheduler, nil
}

func (s *Scheduler) Validate() error {
	if s.schedule == "" {
		return errors.New("sweep schedule is required")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	return nil
}

// Start registers the sweep job and starts the cron loop. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelInfo))

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))

	id, err := s.cron.AddFunc(s.schedule, func() { s.run(ctx) })
	if err != nil {
		return fmt.Errorf("failed to add sweep job: %w", err)
	}

	s.logger.InfoContext(ctx, "Starting access sweeper", "entry_id", id)
	s.cron.Start()

	return nil
}

// Stop stops the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Stopped waiting for running sweep", "error", ctx.Err())
	}

	s.logger.InfoContext(ctx, "Access sweeper stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	deleted, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Access sweep failed", "error", err)

		return
	}

	s.logger.InfoContext(ctx, "Access sweep finished", "deleted", deleted)
}
