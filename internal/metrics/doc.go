// Package metrics provides the observability hooks of a pagegen run.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	gen := site.NewGenerator(cfg, deps) // deps.Recorder defaults to metrics.NoopRecorder{}
//
// When monitoring.metrics_textfile is configured the CLI injects a
// PrometheusRecorder and writes its registry to the textfile after each run,
// where the node-exporter textfile collector picks it up. pagegen is a batch
// process, so no HTTP scrape endpoint is served.
package metrics
