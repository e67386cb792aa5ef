package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// PageResultLabel enumerates per-page outcomes.
type PageResultLabel string

const (
	PageSuccess  PageResultLabel = "success"
	PageError    PageResultLabel = "error"
	PageSkipped  PageResultLabel = "skipped"
	PageCanceled PageResultLabel = "canceled"
)

// Recorder defines observability hooks for run, stage, page and store metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed|canceled
	IncPageResult(category string, result PageResultLabel)
	ObserveQueryDuration(table string, d time.Duration, success bool)
	IncQueryRetry(table string)
	SetWorkerConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)       {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)               {}
func (NoopRecorder) IncStageResult(string, ResultLabel)               {}
func (NoopRecorder) IncBuildOutcome(string)                           {}
func (NoopRecorder) IncPageResult(string, PageResultLabel)            {}
func (NoopRecorder) ObserveQueryDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncQueryRetry(string)                             {}
func (NoopRecorder) SetWorkerConcurrency(int)                         {}
