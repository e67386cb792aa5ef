// Package daemon reruns full generations on a cron schedule or when the inputs
// on disk change.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/claimpilot/pagegen/internal/logfields"
)

// BuildFunc runs one full generation.
type BuildFunc func(ctx context.Context) error

// Runner serializes generations. A trigger that arrives while a generation is
// running queues exactly one follow-up run; further triggers coalesce into it.
type Runner struct {
	build  BuildFunc
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	pending bool
	runs    int
	failed  int
	after   []func()
}

func NewRunner(build BuildFunc, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{build: build, logger: logger}
}

// AfterEach registers fn to run after every generation, before the runner
// reports itself idle.
func (r *Runner) AfterEach(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.after = append(r.after, fn)
}

// Running reports whether a generation is in progress.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Trigger runs a generation and returns when it and any queued follow-up have
// finished. If another caller is already running one, Trigger only queues the
// follow-up and returns immediately.
func (r *Runner) Trigger(ctx context.Context, reason string) {
	r.mu.Lock()
	if r.running {
		r.pending = true
		r.mu.Unlock()
		r.logger.Debug("Generation running; follow-up queued", slog.String("reason", reason))
		return
	}
	r.running = true
	r.mu.Unlock()

	for {
		r.runOnce(ctx, reason)

		r.mu.Lock()
		if !r.pending || ctx.Err() != nil {
			r.running, r.pending = false, false
			r.mu.Unlock()
			return
		}
		r.pending = false
		r.mu.Unlock()
		reason = "follow-up"
	}
}

func (r *Runner) runOnce(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	r.logger.Info("Generation triggered", slog.String("reason", reason))
	t0 := time.Now()
	err := r.build(ctx)

	r.mu.Lock()
	r.runs++
	if err != nil {
		r.failed++
	}
	after := r.after
	r.mu.Unlock()
	for _, fn := range after {
		fn()
	}

	dur := logfields.DurationMS(float64(time.Since(t0).Microseconds()) / 1000)
	if err != nil {
		r.logger.Error("Triggered generation failed", slog.String("reason", reason), dur, logfields.Error(err))
		return
	}
	r.logger.Info("Triggered generation finished", slog.String("reason", reason), dur)
}

// Stats returns how many generations ran and how many of them failed.
func (r *Runner) Stats() (runs, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs, r.failed
}
