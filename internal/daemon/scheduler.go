package daemon

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-co-op/gocron/v2"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/logfields"
)

// Scheduler wraps a gocron scheduler running full generations on a cron
// expression. Runs never overlap: a tick that fires while a generation is still
// running is rescheduled.
type Scheduler struct {
	scheduler gocron.Scheduler
	runner    *Runner
	logger    *slog.Logger
}

// NewScheduler creates a scheduler driving runner.
func NewScheduler(runner *Runner, logger *slog.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, errors.ValidationError("runner is required").Build()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "create scheduler").Build()
	}
	return &Scheduler{scheduler: s, runner: runner, logger: logger}, nil
}

// Add schedules a generation on expr. Five fields are standard cron; six fields
// carry a leading seconds field.
func (s *Scheduler) Add(ctx context.Context, expr string) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return errors.ConfigError("schedule expression is required").
			WithContext("key", "build.schedule").
			Build()
	}
	withSeconds := len(strings.Fields(expr)) == 6
	_, err := s.scheduler.NewJob(
		gocron.CronJob(expr, withSeconds),
		gocron.NewTask(func() { s.runner.Trigger(ctx, "schedule") }),
		gocron.WithName("scheduled-generation"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid schedule expression").
			WithContext("schedule", expr).
			Build()
	}
	s.logger.Info("Generation scheduled", logfields.Schedule(expr))
	return nil
}

// Run starts the scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.scheduler.Start()
	<-ctx.Done()
	s.logger.Info("Stopping scheduler")
	if err := s.scheduler.Shutdown(); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "stop scheduler").Build()
	}
	return nil
}
