package models

import (
	"log/slog"
	"sync"

	"github.com/claimpilot/pagegen/internal/assemble"
	"github.com/claimpilot/pagegen/internal/config"
	"github.com/claimpilot/pagegen/internal/content"
	"github.com/claimpilot/pagegen/internal/metrics"
	"github.com/claimpilot/pagegen/internal/records"
	"github.com/claimpilot/pagegen/internal/registry"
	"github.com/claimpilot/pagegen/internal/render"
	"github.com/claimpilot/pagegen/internal/seo"
)

// Sink receives assembled documents.
type Sink interface {
	Write(relPath, doc string) error
}

// Generator defines what stages need from the site generator.
type Generator interface {
	Config() *config.Config
	Registry() *registry.Registry
	Provider() records.Provider
	Synthesizer() *content.Synthesizer
	Renderer() *render.Renderer
	SEO() *seo.Builder
	Sink() Sink
	Recorder() metrics.Recorder
	Logger() *slog.Logger
}

// RecordState carries rows read by earlier stages for later joins.
type RecordState struct {
	States       map[string]records.State
	Integrations []records.Integration
}

// BuildState is the mutable state of one run, shared by its stages.
type BuildState struct {
	Generator Generator
	Report    *BuildReport
	Shell     *assemble.Shell
	Records   RecordState

	routesMu sync.Mutex
	routes   map[string]string
}

func NewBuildState(g Generator, report *BuildReport) *BuildState {
	return &BuildState{
		Generator: g,
		Report:    report,
		Records:   RecordState{States: make(map[string]records.State)},
		routes:    make(map[string]string),
	}
}

// Summary returns the item summary of the run.
func (bs *BuildState) Summary() *Summary { return bs.Report.Summary }

// ClaimRoute registers owner as the producer of url. When another item already
// claimed url it returns that item and false.
func (bs *BuildState) ClaimRoute(url, owner string) (string, bool) {
	bs.routesMu.Lock()
	defer bs.routesMu.Unlock()
	if prev, ok := bs.routes[url]; ok {
		bs.routes[url] = owner
		return prev, false
	}
	bs.routes[url] = owner
	return "", true
}

// Routes returns the number of distinct routes claimed.
func (bs *BuildState) Routes() int {
	bs.routesMu.Lock()
	defer bs.routesMu.Unlock()
	return len(bs.routes)
}
