package stages

import (
	"context"
	"log/slog"
	"os"

	"github.com/claimpilot/pagegen/internal/assemble"
	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/logfields"
	"github.com/claimpilot/pagegen/internal/records"
	"github.com/claimpilot/pagegen/internal/site/models"
)

// LoadShell reads and parses the base shell. A missing or malformed shell is
// fatal: no page can be produced without it.
func LoadShell(_ context.Context, bs *models.BuildState) error {
	site := bs.Generator.Config().Site
	// #nosec G304 -- the shell path comes from trusted configuration.
	data, err := os.ReadFile(site.ShellPath)
	if err != nil {
		return models.NewFatalStageError(models.StageLoadShell,
			errors.WrapError(err, errors.CategoryPrecondition, "base shell not readable").
				WithContext("path", site.ShellPath).
				Fatal().
				Build())
	}
	shell, err := assemble.ParseShell(string(data), assemble.Options{RootID: site.RootID})
	if err != nil {
		return models.NewFatalStageError(models.StageLoadShell,
			errors.WrapError(err, errors.CategoryPrecondition, "base shell is missing required anchors").
				WithContext("path", site.ShellPath).
				Fatal().
				Build())
	}
	bs.Shell = shell
	bs.Generator.Logger().Info("Base shell loaded", logfields.Path(site.ShellPath), slog.Int("bytes", len(data)))
	return nil
}

// CheckProvider verifies the record store is reachable before any page is
// produced.
func CheckProvider(ctx context.Context, bs *models.BuildState) error {
	p := bs.Generator.Provider()
	if p == nil {
		return models.NewFatalStageError(models.StageCheckProvider,
			errors.PreconditionError("record store is not configured").Build())
	}
	pinger, ok := p.(records.Pinger)
	if !ok {
		return nil
	}
	if err := pinger.Ping(ctx); err != nil {
		if ctx.Err() != nil {
			return models.NewCanceledStageError(models.StageCheckProvider, ctx.Err())
		}
		return models.NewFatalStageError(models.StageCheckProvider,
			errors.WrapError(err, errors.CategoryPrecondition, "record store unreachable").Fatal().Build())
	}
	return nil
}
