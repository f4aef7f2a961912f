// Package prometheus provides Prometheus collectors for token guard metrics.
//
// [NewPrometheusExporter] accepts a [tokenguard.Guard] and exposes an [http.Handler]
// that renders all guard counters and histograms in Prometheus text exposition format.
// Counter names are prefixed tokenguard_*_total; the single histogram is
// tokenguard_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate guard state.
package prometheus
