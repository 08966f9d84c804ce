// Package metrics provides lock-free counters for session lifecycle
// observability.
//
// # Design
//
// Counters are incremented atomically and are allocation-free on the write
// path. Snapshot deep-copies so exporters never observe torn reads.
//
// # Architecture boundaries
//
// This package owns metric storage and snapshot creation. Metric export
// (Prometheus, OTel) lives in metrics/export/ and reads Snapshot values.
//
// # What this package must NOT do
//
//   - Perform I/O or network calls.
//   - Import authcore or any sibling package.
//   - Expose global metric registries.
package metrics
