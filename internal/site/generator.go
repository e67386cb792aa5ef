// Package site drives a generation run: it wires the registry, record provider,
// synthesizer, renderer, metadata builder, assembler and sink into the fixed
// stage sequence and aggregates per-page results.
package site

import (
	"context"
	stdErrors "errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/claimpilot/pagegen/internal/config"
	"github.com/claimpilot/pagegen/internal/content"
	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/logfields"
	"github.com/claimpilot/pagegen/internal/metrics"
	"github.com/claimpilot/pagegen/internal/records"
	"github.com/claimpilot/pagegen/internal/registry"
	"github.com/claimpilot/pagegen/internal/render"
	"github.com/claimpilot/pagegen/internal/seo"
	"github.com/claimpilot/pagegen/internal/site/models"
	"github.com/claimpilot/pagegen/internal/site/stages"
	"github.com/claimpilot/pagegen/internal/sink"
)

// Generator produces the full page tree for one configuration.
type Generator struct {
	config   *config.Config
	registry *registry.Registry
	provider records.Provider
	synth    *content.Synthesizer
	renderer *render.Renderer
	seo      *seo.Builder
	sink     models.Sink
	recorder metrics.Recorder
	logger   *slog.Logger
	observer models.BuildObserver
	extra    []models.BuildObserver
	newRunID func() string
}

// Option customizes a Generator.
type Option func(*Generator)

func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithSink replaces the file system sink rooted at output.directory.
func WithSink(s models.Sink) Option {
	return func(g *Generator) {
		if s != nil {
			g.sink = s
		}
	}
}

// WithObserver adds an observer notified alongside the metrics observer.
func WithObserver(o models.BuildObserver) Option {
	return func(g *Generator) {
		if o != nil {
			g.extra = append(g.extra, o)
		}
	}
}

// WithRunID overrides run identifier generation.
func WithRunID(fn func() string) Option {
	return func(g *Generator) {
		if fn != nil {
			g.newRunID = fn
		}
	}
}

// NewGenerator creates a generator. The sink defaults to a FileSystemSink rooted
// at cfg.Output.Directory.
func NewGenerator(cfg *config.Config, reg *registry.Registry, provider records.Provider, opts ...Option) (*Generator, error) {
	if cfg == nil {
		return nil, errors.ConfigError("configuration is required").Build()
	}
	renderer, err := render.New()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "load block templates").Fatal().Build()
	}
	g := &Generator{
		config:   cfg,
		registry: reg,
		provider: provider,
		synth:    content.NewSynthesizer(cfg.Site.Name),
		renderer: renderer,
		seo:      seo.NewBuilder(cfg.Site),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.sink == nil {
		g.sink = sink.NewFileSystemSink(cfg.Output.Directory)
	}
	g.observer = append(models.MultiObserver{models.RecorderObserver{Recorder: g.recorder}}, g.extra...)
	return g, nil
}

func (g *Generator) Config() *config.Config            { return g.config }
func (g *Generator) Registry() *registry.Registry      { return g.registry }
func (g *Generator) Provider() records.Provider        { return g.provider }
func (g *Generator) Synthesizer() *content.Synthesizer { return g.synth }
func (g *Generator) Renderer() *render.Renderer        { return g.renderer }
func (g *Generator) SEO() *seo.Builder                 { return g.seo }
func (g *Generator) Sink() models.Sink                 { return g.sink }
func (g *Generator) Recorder() metrics.Recorder        { return g.recorder }
func (g *Generator) Logger() *slog.Logger              { return g.logger }

// Pipeline returns the stage sequence of a run.
func Pipeline() []models.StageDef {
	return models.NewPipeline().
		Add(models.StageLoadShell, stages.LoadShell).
		Add(models.StageCheckProvider, stages.CheckProvider).
		Add(models.StageStates, stages.States).
		Add(models.StageCities, stages.Cities).
		Add(models.StageServices, stages.Services).
		Add(models.StageSpecialties, stages.Specialties).
		Add(models.StageStatic, stages.Static).
		Add(models.StageResources, stages.Resources).
		Add(models.StageIntegrations, stages.Integrations).
		Add(models.StageIntegrationIndex, stages.IntegrationIndex).
		Build()
}

// Run executes one full generation and returns the per-page summary.
func (g *Generator) Run(ctx context.Context) (*models.Summary, error) {
	report, err := g.RunWithReport(ctx)
	return report.Summary, err
}

// RunWithReport executes one full generation and returns the build report. The
// report is always returned, also when the run aborts. The error is non-nil
// only for a fatal precondition or cancellation; page failures are reported in
// the summary.
func (g *Generator) RunWithReport(ctx context.Context) (*models.BuildReport, error) {
	runID := g.newRunID()
	report := models.NewBuildReport(runID)
	logger := g.logger.With(logfields.RunID(runID))
	gl := *g
	gl.logger = logger
	bs := models.NewBuildState(&gl, report)

	logger.Info("Generation started", "concurrency", g.config.Build.Concurrency)
	runErr := runStages(ctx, bs, Pipeline(), g.observer)

	report.Finish()
	report.DeriveOutcome()
	g.observer.OnBuildComplete(report)

	s := report.Summary
	logger.Info("Generation finished",
		"outcome", string(report.Outcome),
		"total_success", s.TotalSuccess,
		"total_error", s.TotalError,
		"total_skipped", s.TotalSkipped,
		"total_canceled", s.TotalCanceled,
		"routes", bs.Routes(),
		logfields.DurationMS(float64(report.End.Sub(report.Start).Microseconds())/1000))

	if dir := g.config.Output.ReportDir; dir != "" {
		if err := report.Persist(dir); err != nil {
			logger.Warn("Failed to persist build report", logfields.Path(dir), logfields.Error(err))
		}
	}

	if runErr == nil {
		return report, nil
	}
	var se *models.StageError
	if stdErrors.As(runErr, &se) && se.Kind == models.StageErrorCanceled {
		return report, errors.WrapError(runErr, errors.CategoryCanceled, "generation canceled").Build()
	}
	return report, runErr
}
