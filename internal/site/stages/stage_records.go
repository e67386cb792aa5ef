package stages

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/claimpilot/pagegen/internal/content"
	"github.com/claimpilot/pagegen/internal/logfields"
	"github.com/claimpilot/pagegen/internal/records"
	"github.com/claimpilot/pagegen/internal/site/models"
)

// Category names used in results, logs and metrics.
const (
	CategoryState            = "state"
	CategoryCity             = "city"
	CategoryService          = "service"
	CategorySpecialty        = "specialty"
	CategoryStatic           = "static"
	CategoryResource         = "resource"
	CategoryIntegration      = "integration"
	CategoryIntegrationIndex = "integration_index"
)

// queryFailed records a table query failure. The category yields no pages and
// the run continues.
func queryFailed(ctx context.Context, bs *models.BuildState, stage models.StageName, table records.Table, err error) error {
	if ctx.Err() != nil {
		return models.NewCanceledStageError(stage, ctx.Err())
	}
	bs.Generator.Logger().Warn("Record query failed; category produces no pages",
		logfields.Stage(string(stage)), logfields.Table(string(table)), logfields.Error(err))
	return models.NewWarnStageError(stage, fmt.Errorf("%w: %s: %w", models.ErrQuery, table, err))
}

// States produces one page per state row and keeps the rows for the city join.
func States(ctx context.Context, bs *models.BuildState) error {
	rows, err := bs.Generator.Provider().StatePages(ctx)
	if err != nil {
		return queryFailed(ctx, bs, models.StageStates, records.TableStatePages, err)
	}
	synth := bs.Generator.Synthesizer()
	items := make([]Item, 0, len(rows))
	for _, st := range rows {
		bs.Records.States[st.Slug] = st
		items = append(items, Item{
			Category:   CategoryState,
			Slug:       st.Slug,
			Synthesize: func() (content.Record, error) { return synth.State(st) },
		})
	}
	return processItems(ctx, bs, models.StageStates, items)
}

// Cities produces one page per city whose parent state exists. A city without
// its state is skipped, not failed.
func Cities(ctx context.Context, bs *models.BuildState) error {
	rows, err := bs.Generator.Provider().CityPages(ctx)
	if err != nil {
		return queryFailed(ctx, bs, models.StageCities, records.TableCityPages, err)
	}
	synth := bs.Generator.Synthesizer()
	logger := bs.Generator.Logger()
	items := make([]Item, 0, len(rows))
	var skipped []models.ItemResult
	for _, city := range rows {
		st, ok := bs.Records.States[city.StateSlug]
		if !ok {
			logger.Debug("Skipping city without state",
				logfields.Slug(city.Slug), logfields.Category(CategoryCity))
			skipped = append(skipped, Skipped(CategoryCity, city.Slug, "state "+city.StateSlug+" not found"))
			continue
		}
		items = append(items, Item{
			Category:   CategoryCity,
			Slug:       city.Slug,
			Synthesize: func() (content.Record, error) { return synth.City(city, st) },
		})
	}
	if len(skipped) > 0 {
		if err := recordResults(ctx, bs, models.StageCities, skipped); err != nil {
			return err
		}
	}
	return processItems(ctx, bs, models.StageCities, items)
}

// Resources produces one page per code across all code tables. A failing table
// is reported and the remaining tables are still produced.
func Resources(ctx context.Context, bs *models.BuildState) error {
	p := bs.Generator.Provider()
	synth := bs.Generator.Synthesizer()
	var items []Item
	var queryErrs []error
	for _, table := range records.CodeTables {
		rows, err := records.Codes(ctx, p, table)
		if err != nil {
			queryErrs = append(queryErrs, queryFailed(ctx, bs, models.StageResources, table, err))
			if ctx.Err() != nil {
				return queryErrs[len(queryErrs)-1]
			}
			continue
		}
		for _, code := range rows {
			if code.System == "" {
				code.System = records.SystemFor(table)
			}
			items = append(items, Item{
				Category:   CategoryResource,
				Slug:       code.Slug,
				Synthesize: func() (content.Record, error) { return synth.Resource(code) },
			})
		}
	}
	itemErr := processItems(ctx, bs, models.StageResources, items)
	var se *models.StageError
	if itemErr != nil && stdErrors.As(itemErr, &se) && se.Kind == models.StageErrorCanceled {
		return itemErr
	}
	if len(queryErrs) == 0 {
		return itemErr
	}
	causes := make([]error, 0, len(queryErrs)+1)
	for _, e := range queryErrs {
		causes = append(causes, stdErrors.Unwrap(e))
	}
	if itemErr != nil {
		causes = append(causes, stdErrors.Unwrap(itemErr))
	}
	return models.NewWarnStageError(models.StageResources, stdErrors.Join(causes...))
}

// Integrations produces one page per EMR integration and keeps the rows for the
// index page.
func Integrations(ctx context.Context, bs *models.BuildState) error {
	rows, err := bs.Generator.Provider().EMRIntegrations(ctx)
	if err != nil {
		return queryFailed(ctx, bs, models.StageIntegrations, records.TableEMRIntegrations, err)
	}
	bs.Records.Integrations = rows
	synth := bs.Generator.Synthesizer()
	items := make([]Item, 0, len(rows))
	for _, in := range rows {
		items = append(items, Item{
			Category:   CategoryIntegration,
			Slug:       in.Slug,
			Synthesize: func() (content.Record, error) { return synth.Integration(in) },
		})
	}
	return processItems(ctx, bs, models.StageIntegrations, items)
}

// IntegrationIndex produces the page listing every integration. Without
// integrations the page is skipped.
func IntegrationIndex(ctx context.Context, bs *models.BuildState) error {
	list := bs.Records.Integrations
	if len(list) == 0 {
		return recordResults(ctx, bs, models.StageIntegrationIndex,
			[]models.ItemResult{Skipped(CategoryIntegrationIndex, "integrations", "no integrations")})
	}
	synth := bs.Generator.Synthesizer()
	return processItems(ctx, bs, models.StageIntegrationIndex, []Item{{
		Category:   CategoryIntegrationIndex,
		Slug:       "integrations",
		Synthesize: func() (content.Record, error) { return synth.IntegrationIndex(list) },
	}})
}
