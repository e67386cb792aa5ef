package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "pagegen"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry          *prom.Registry
	stageDuration     *prom.HistogramVec
	buildDuration     prom.Histogram
	stageResults      *prom.CounterVec
	buildOutcome      *prom.CounterVec
	pageResults       *prom.CounterVec
	queryDuration     *prom.HistogramVec
	queryRetries      *prom.CounterVec
	workerConcurrency prom.Gauge
	lastRun           prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg
// (a fresh registry when reg is nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual pipeline stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "build_duration_seconds",
		Help:      "Total run duration",
		Buckets:   prom.DefBuckets,
	})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "stage_results_total",
		Help:      "Stage result counts by outcome",
	}, []string{"stage", "result"})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "build_outcomes_total",
		Help:      "Run outcomes by final status",
	}, []string{"outcome"})
	pr.pageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "page_results_total",
		Help:      "Generated page results by category and outcome",
	}, []string{"category", "result"})
	pr.queryDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "record_query_duration_seconds",
		Help:      "Duration of record store table queries",
		Buckets:   prom.DefBuckets,
	}, []string{"table", "result"})
	pr.queryRetries = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "record_query_retries_total",
		Help:      "Record store query retries after transient failures",
	}, []string{"table"})
	pr.workerConcurrency = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "worker_concurrency",
		Help:      "Configured page worker pool size for the last run",
	})
	pr.lastRun = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished",
	})
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.pageResults, pr.queryDuration, pr.queryRetries, pr.workerConcurrency, pr.lastRun)
	return pr
}

// Registry exposes the underlying registry.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
	p.lastRun.SetToCurrentTime()
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncPageResult(category string, result PageResultLabel) {
	if p == nil || p.pageResults == nil {
		return
	}
	p.pageResults.WithLabelValues(category, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveQueryDuration(table string, d time.Duration, success bool) {
	if p == nil || p.queryDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.queryDuration.WithLabelValues(table, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncQueryRetry(table string) {
	if p == nil || p.queryRetries == nil {
		return
	}
	p.queryRetries.WithLabelValues(table).Inc()
}

func (p *PrometheusRecorder) SetWorkerConcurrency(n int) {
	if p == nil || p.workerConcurrency == nil {
		return
	}
	p.workerConcurrency.Set(float64(n))
}

// WriteTextfile writes the registry in the text exposition format for the
// node-exporter textfile collector. The write is atomic.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
