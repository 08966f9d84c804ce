// Package internal contains helpers that are intentionally private to
// authcore.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - metrics — lock-free lifecycle counters
//
// # What this package must NOT do
//
//   - Export types that appear in the public authcore API (the root package
//     re-exports aliases instead).
//   - Be imported by any package outside the authcore module.
package internal
