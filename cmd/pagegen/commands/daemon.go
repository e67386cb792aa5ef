package commands

import (
	"context"
	"log/slog"

	"github.com/claimpilot/pagegen/internal/config"
	"github.com/claimpilot/pagegen/internal/daemon"
)

// ScheduleCmd implements the 'schedule' command.
type ScheduleCmd struct {
	BuildOverrides `embed:""`
	Cron string `help:"Cron expression (overrides build.schedule)"`
	Now  bool   `help:"Run one generation immediately before waiting for the schedule"`
}

func (s *ScheduleCmd) Run(ctx context.Context, root *CLI) error {
	cfg, logger, err := loadForDaemon(root, s.BuildOverrides)
	if err != nil {
		return err
	}
	if s.Cron != "" {
		cfg.Build.Schedule = s.Cron
	}

	runner := daemon.NewRunner(generationFunc(cfg, logger), logger)
	sched, err := daemon.NewScheduler(runner, logger)
	if err != nil {
		return err
	}
	if err := sched.Add(ctx, cfg.Build.Schedule); err != nil {
		return err
	}
	if s.Now {
		go runner.Trigger(ctx, "startup")
	}
	return sched.Run(ctx)
}

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	BuildOverrides `embed:""`
}

func (w *WatchCmd) Run(ctx context.Context, root *CLI) error {
	cfg, logger, err := loadForDaemon(root, w.BuildOverrides)
	if err != nil {
		return err
	}

	runner := daemon.NewRunner(generationFunc(cfg, logger), logger)
	var dirs []string
	if cfg.Site.DefinitionsDir != "" {
		dirs = append(dirs, cfg.Site.DefinitionsDir)
	}
	watcher, err := daemon.NewWatcher(runner, logger, []string{cfg.Site.ShellPath}, dirs,
		daemon.WithOutputDir(cfg.Output.Directory))
	if err != nil {
		return err
	}
	go runner.Trigger(ctx, "startup")
	return watcher.Run(ctx)
}

func loadForDaemon(root *CLI, o BuildOverrides) (*config.Config, *slog.Logger, error) {
	cfg, err := LoadConfig(root.Config)
	if err != nil {
		return nil, nil, err
	}
	o.Apply(cfg)
	logger := NewLogger(cfg.Logging, root.Verbose)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// generationFunc adapts RunGeneration for the daemon runner. Cancellation by
// shutdown is not reported as a failure.
func generationFunc(cfg *config.Config, logger *slog.Logger) daemon.BuildFunc {
	return func(ctx context.Context) error {
		report, err := RunGeneration(ctx, cfg, logger)
		if interrupted(ctx, err) {
			return nil
		}
		if err == nil && report != nil {
			logger.Info(report.SummaryLine())
		}
		return err
	}
}
