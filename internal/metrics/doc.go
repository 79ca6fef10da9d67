// Package metrics provides observability hooks for configuration builds.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so callers never nil-check:
//
//	asm := site.NewAssembler(site.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its collectors on a caller-supplied registry.
// CLI runs are short-lived, so the registry is exported with WriteTextfile in
// the node-exporter textfile format rather than served over HTTP.
package metrics
