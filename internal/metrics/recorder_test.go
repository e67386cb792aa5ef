package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls; used to verify Recorder wiring in this package's tests.
type testRecorder struct {
	mu             sync.Mutex
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
	pageResults    map[string]map[PageResultLabel]int
	buildDurations int
	buildOutcomes  map[string]int
	concurrency    int
}

var _ Recorder = (*testRecorder)(nil)

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations: map[string]int{},
		stageResults:   map[string]map[ResultLabel]int{},
		pageResults:    map[string]map[PageResultLabel]int{},
		buildOutcomes:  map[string]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stageDurations[stage]++
}

func (t *testRecorder) ObserveBuildDuration(time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buildDurations++
}

func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}

func (t *testRecorder) IncBuildOutcome(outcome string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buildOutcomes[outcome]++
}

func (t *testRecorder) IncPageResult(category string, result PageResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.pageResults[category]
	if !ok {
		m = map[PageResultLabel]int{}
		t.pageResults[category] = m
	}
	m[result]++
}

func (t *testRecorder) ObserveQueryDuration(string, time.Duration, bool) {}
func (t *testRecorder) IncQueryRetry(string)                             {}

func (t *testRecorder) SetWorkerConcurrency(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.concurrency = n
}
