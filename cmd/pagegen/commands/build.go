package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claimpilot/pagegen/internal/config"
	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/logfields"
	"github.com/claimpilot/pagegen/internal/metrics"
	"github.com/claimpilot/pagegen/internal/notify"
	"github.com/claimpilot/pagegen/internal/records"
	"github.com/claimpilot/pagegen/internal/site"
	"github.com/claimpilot/pagegen/internal/site/models"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	BuildOverrides `embed:""`
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := LoadConfig(root.Config)
	if err != nil {
		return err
	}
	b.Apply(cfg)
	logger := NewLogger(cfg.Logging, root.Verbose)
	slog.SetDefault(logger)

	report, err := RunGeneration(ctx, cfg, logger)
	if report != nil {
		_, _ = fmt.Fprintln(g.Stdout, report.SummaryLine())
	}
	return err
}

// RunGeneration performs one complete generation: it opens the record store,
// runs every stage, exports metrics and publishes the run notification. In
// strict mode any failed page turns into a build error.
func RunGeneration(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*models.BuildReport, error) {
	reg, err := LoadRegistry(cfg)
	if err != nil {
		return nil, err
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if cfg.Monitoring.MetricsTextfile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	conn, err := records.Open(ctx, cfg.Records, recorder, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			logger.Warn("Failed to close record store", logfields.Error(cerr))
		}
	}()

	opts := []site.Option{site.WithLogger(logger), site.WithRecorder(recorder)}
	notifier, err := notify.Connect(cfg.Notify, logger)
	if err != nil {
		logger.Warn("Run notifications disabled", logfields.Error(err))
	} else if notifier != nil {
		defer notifier.Close()
		opts = append(opts, site.WithObserver(notifier))
	}

	gen, err := site.NewGenerator(cfg, reg, conn, opts...)
	if err != nil {
		return nil, err
	}
	report, runErr := gen.RunWithReport(ctx)

	if prom != nil {
		if err := prom.WriteTextfile(cfg.Monitoring.MetricsTextfile); err != nil {
			logger.Warn("Failed to write metrics textfile", logfields.Path(cfg.Monitoring.MetricsTextfile), logfields.Error(err))
		}
	}
	if runErr != nil {
		return report, runErr
	}

	if s := report.Summary; cfg.Build.FailOnItemError && s.TotalError > 0 {
		return report, errors.BuildError(fmt.Sprintf("%d page(s) failed", s.TotalError)).
			WithContext("run_id", report.RunID).
			WithContext("failed", s.TotalError).
			Build()
	}
	return report, nil
}
