// Package otel provides OpenTelemetry metric exporter bindings for session
// manager counters.
//
// [NewOTelExporter] registers an Int64ObservableCounter instrument for each
// core metric. A single callback reads [authcore.Manager.MetricsSnapshot]
// on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate manager state.
package otel
