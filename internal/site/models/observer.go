package models

import (
	"time"

	"github.com/claimpilot/pagegen/internal/metrics"
)

// BuildObserver receives callbacks around stage execution and run lifecycle.
type BuildObserver interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, result StageResult)
	OnBuildComplete(report *BuildReport)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(_ StageName)                                    {}
func (NoopObserver) OnStageComplete(_ StageName, _ time.Duration, _ StageResult) {}
func (NoopObserver) OnBuildComplete(_ *BuildReport)                              {}

// RecorderObserver adapts metrics.Recorder into a BuildObserver.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (r RecorderObserver) OnStageStart(_ StageName) {}

func (r RecorderObserver) OnStageComplete(stage StageName, d time.Duration, _ StageResult) {
	if r.Recorder != nil {
		r.Recorder.ObserveStageDuration(string(stage), d)
	}
}

func (r RecorderObserver) OnBuildComplete(report *BuildReport) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	r.Recorder.IncBuildOutcome(string(report.Outcome))
}

// MultiObserver fans callbacks out to several observers in order.
type MultiObserver []BuildObserver

func (m MultiObserver) OnStageStart(stage StageName) {
	for _, o := range m {
		o.OnStageStart(stage)
	}
}

func (m MultiObserver) OnStageComplete(stage StageName, d time.Duration, result StageResult) {
	for _, o := range m {
		o.OnStageComplete(stage, d, result)
	}
}

func (m MultiObserver) OnBuildComplete(report *BuildReport) {
	for _, o := range m {
		o.OnBuildComplete(report)
	}
}
