// Package prometheus provides Prometheus collectors for session manager
// metrics.
//
// [NewPrometheusExporter] accepts an [authcore.Manager] and exposes an
// [http.Handler] that renders all counters in Prometheus text exposition
// format. Counter names are prefixed authcore_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the
//     Handler.
//   - Mutate manager state.
package prometheus
