package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/claimpilot/pagegen/internal/config"
	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/registry"
)

// Global carries state shared by all subcommands.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (defaults apply when absent)" default:"pagegen.yaml" env:"PAGEGEN_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" default:"withargs" help:"Generate every page into the output directory (default)"`
	Audit    AuditCmd    `cmd:"" help:"Verify the head tags of a generated output tree"`
	Schedule ScheduleCmd `cmd:"" help:"Regenerate on a cron schedule until interrupted"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate whenever the shell or page definitions change"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; sets up a default logger until the
// configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// BuildOverrides are flags shared by the commands that run generations. Empty
// or zero values keep the configured setting.
type BuildOverrides struct {
	Output      string `short:"o" help:"Output directory (overrides output.directory)"`
	Shell       string `help:"Base HTML shell (overrides site.shell_path)"`
	Concurrency int    `help:"Number of pages produced concurrently (overrides build.concurrency)"`
	Strict      bool   `help:"Exit with code 3 when any page fails (build.fail_on_item_error)"`
	ReportDir   string `name:"report-dir" help:"Write build-report.json/txt here (overrides output.report_dir)"`
}

// Apply copies the overrides onto cfg.
func (o BuildOverrides) Apply(cfg *config.Config) {
	if o.Output != "" {
		cfg.Output.Directory = o.Output
	}
	if o.Shell != "" {
		cfg.Site.ShellPath = o.Shell
	}
	if o.Concurrency > 0 {
		cfg.Build.Concurrency = o.Concurrency
	}
	if o.Strict {
		cfg.Build.FailOnItemError = true
	}
	if o.ReportDir != "" {
		cfg.Output.ReportDir = o.ReportDir
	}
}

// LoadConfig loads the configuration file, falling back to defaults when it
// does not exist.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "load configuration").
			WithContext("path", path).
			Fatal().
			Build()
	}
	return cfg, nil
}

// NewLogger builds the process logger from the logging section. --verbose wins
// over the configured level.
func NewLogger(lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch lc.Level {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// LoadRegistry reads page definitions from site.definitions_dir, or the
// definitions compiled into the binary when it is unset.
func LoadRegistry(cfg *config.Config) (*registry.Registry, error) {
	var (
		reg *registry.Registry
		err error
	)
	if dir := cfg.Site.DefinitionsDir; dir != "" {
		reg, err = registry.LoadDir(dir)
	} else {
		reg, err = registry.LoadEmbedded()
	}
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.WithContext("path", cfg.Site.DefinitionsDir)
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "load page definitions").
			WithContext("path", cfg.Site.DefinitionsDir).
			Fatal().
			Build()
	}
	return reg, nil
}

// interrupted reports whether err came from ctx being canceled by a signal.
func interrupted(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil && errors.HasCategory(err, errors.CategoryCanceled)
}
