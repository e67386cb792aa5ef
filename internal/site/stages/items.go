// Package stages implements the stages of a generation run. Each page category
// is one stage: its rows are read once, then its pages are produced by a bounded
// worker pool.
package stages

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/claimpilot/pagegen/internal/content"
	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/logfields"
	"github.com/claimpilot/pagegen/internal/metrics"
	"github.com/claimpilot/pagegen/internal/site/models"
	"github.com/claimpilot/pagegen/internal/sink"
)

// Item is one page to produce.
type Item struct {
	Category   string
	Slug       string
	Synthesize func() (content.Record, error)
}

// Skipped returns the result of an item that is not produced because a record
// it depends on is missing.
func Skipped(category, slug, reason string) models.ItemResult {
	return models.ItemResult{Category: category, Slug: slug, Status: models.ItemSkipped, Reason: reason}
}

type indexedResult struct {
	index  int
	result models.ItemResult
}

// processItems runs items through the worker pool and appends their results to
// the run summary in input order. Cancellation is honored between items: items
// not started when ctx is done are reported as canceled.
func processItems(ctx context.Context, bs *models.BuildState, stage models.StageName, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	g := bs.Generator
	logger := g.Logger()

	concurrency := g.Config().Build.Concurrency
	if concurrency > len(items) {
		concurrency = len(items)
	}
	if concurrency < 1 {
		concurrency = 1
	}
	g.Recorder().SetWorkerConcurrency(concurrency)

	type task struct {
		index int
		item  Item
	}
	tasks := make(chan task)
	perWorker := make([][]indexedResult, concurrency)
	var wg sync.WaitGroup

	worker := func(id int) {
		defer wg.Done()
		for t := range tasks {
			var res models.ItemResult
			select {
			case <-ctx.Done():
				res = canceledResult(t.item)
			default:
				res = processItem(bs, t.item, logger.With(logfields.Worker(id)))
			}
			perWorker[id] = append(perWorker[id], indexedResult{index: t.index, result: res})
		}
	}

	wg.Add(concurrency)
	for id := range concurrency {
		go worker(id)
	}
	dispatched := 0
dispatch:
	for i, it := range items {
		select {
		case <-ctx.Done():
			break dispatch
		case tasks <- task{index: i, item: it}:
			dispatched++
		}
	}
	close(tasks)
	wg.Wait()

	results := make([]models.ItemResult, len(items))
	for _, rs := range perWorker {
		for _, r := range rs {
			results[r.index] = r.result
		}
	}
	for i := dispatched; i < len(items); i++ {
		results[i] = canceledResult(items[i])
	}

	return recordResults(ctx, bs, stage, results)
}

// recordResults appends results to the summary, emits metrics and issues, and
// returns the stage error for the category.
func recordResults(ctx context.Context, bs *models.BuildState, stage models.StageName, results []models.ItemResult) error {
	recorder := bs.Generator.Recorder()
	failed := 0
	for _, r := range results {
		recorder.IncPageResult(r.Category, pageLabel(r.Status))
		if r.Status == models.ItemError {
			failed++
		}
		if r.DuplicateOf != "" {
			msg := fmt.Sprintf("%s/%s and %s share route %s", r.Category, r.Slug, r.DuplicateOf, r.URL)
			bs.Report.AddIssue(models.IssueDuplicateRoute, stage, models.SeverityWarning, msg, false, stdErrors.New(msg))
		}
	}
	bs.Summary().Add(results...)

	if ctx.Err() != nil {
		return models.NewCanceledStageError(stage, ctx.Err())
	}
	if failed > 0 {
		return models.NewWarnStageError(stage, fmt.Errorf("%w: %d of %d pages failed", models.ErrItemFailures, failed, len(results)))
	}
	return nil
}

func pageLabel(s models.ItemStatus) metrics.PageResultLabel {
	switch s {
	case models.ItemError:
		return metrics.PageError
	case models.ItemSkipped:
		return metrics.PageSkipped
	case models.ItemCanceled:
		return metrics.PageCanceled
	default:
		return metrics.PageSuccess
	}
}

func canceledResult(it Item) models.ItemResult {
	return models.ItemResult{Category: it.Category, Slug: it.Slug, Status: models.ItemCanceled}
}

// processItem produces one page: synthesize, render, build metadata, assemble
// and write. Any failure, including a panic, fails only this item.
func processItem(bs *models.BuildState, it Item, logger *slog.Logger) (res models.ItemResult) {
	g := bs.Generator
	start := time.Now()
	res = models.ItemResult{Category: it.Category, Slug: it.Slug}
	attrs := []any{logfields.Category(it.Category), logfields.Slug(it.Slug)}

	defer func() {
		if r := recover(); r != nil {
			err := errors.InternalError(fmt.Sprintf("panic while producing page: %v", r)).Build()
			logger.Error("Page panicked", append(attrs, logfields.Error(err), slog.String("stack", string(debug.Stack())))...)
			res.Status = models.ItemError
			res.Error = err.Error()
		}
		res.Duration = time.Since(start)
	}()

	fail := func(step string, err error) models.ItemResult {
		logger.Error("Page failed", append(attrs, slog.String("step", step), logfields.Error(err))...)
		res.Status = models.ItemError
		res.Error = err.Error()
		return res
	}

	rec, err := it.Synthesize()
	if err != nil {
		return fail("synthesize", err)
	}
	body, err := g.Renderer().Render(rec)
	if err != nil {
		return fail("render", err)
	}
	meta, route, err := g.SEO().Metadata(rec, body)
	if err != nil {
		return fail("metadata", err)
	}
	res.Path = route.File
	res.URL = meta.CanonicalURL

	owner := it.Category + "/" + it.Slug
	if prev, ok := bs.ClaimRoute(meta.CanonicalURL, owner); !ok {
		res.DuplicateOf = prev
		logger.Error("Duplicate route in page definitions; last writer wins",
			append(attrs, logfields.URL(meta.CanonicalURL), slog.String("previous", prev))...)
	}

	doc, err := bs.Shell.Fill(meta)
	if err != nil {
		return fail("assemble", err)
	}
	if err := g.Sink().Write(route.File, doc); err != nil && !stdErrors.Is(err, sink.ErrDuplicateWrite) {
		return fail("write", err)
	}

	res.Status = models.ItemSuccess
	logger.Debug("Page written", append(attrs, logfields.Path(route.File))...)
	return res
}
