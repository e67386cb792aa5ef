package stages

import (
	"context"

	"github.com/claimpilot/pagegen/internal/content"
	"github.com/claimpilot/pagegen/internal/registry"
	"github.com/claimpilot/pagegen/internal/site/models"
)

// Services produces the service pages from the definition registry.
func Services(ctx context.Context, bs *models.BuildState) error {
	return definitionStage(ctx, bs, models.StageServices, registry.CategoryService, CategoryService)
}

// Specialties produces the specialty pages from the definition registry.
func Specialties(ctx context.Context, bs *models.BuildState) error {
	return definitionStage(ctx, bs, models.StageSpecialties, registry.CategorySpecialty, CategorySpecialty)
}

// Static produces the hand-written pages, including the home and 404 pages.
func Static(ctx context.Context, bs *models.BuildState) error {
	return definitionStage(ctx, bs, models.StageStatic, registry.CategoryStatic, CategoryStatic)
}

func definitionStage(ctx context.Context, bs *models.BuildState, stage models.StageName, c registry.Category, category string) error {
	reg := bs.Generator.Registry()
	if reg == nil {
		return nil
	}
	synth := bs.Generator.Synthesizer()
	defs := reg.Definitions(c)
	items := make([]Item, 0, len(defs))
	for _, def := range defs {
		items = append(items, Item{
			Category:   category,
			Slug:       def.Slug,
			Synthesize: func() (content.Record, error) { return synth.Definition(def) },
		})
	}
	return processItems(ctx, bs, stage, items)
}
