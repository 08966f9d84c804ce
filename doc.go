// Package authcore is the multi-session credential core of a password
// manager client: it keeps the session table (API tokens plus locally
// derived secret material, keyed by session ID), persists it through an
// encrypted keychain after every mutation, and fans session-invalidation
// events out to the transport and account layers.
//
// The package is designed for concurrent client workloads: Manager methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build]. A single internal mutex serializes each mutation with the
// persist-and-notify sequence that follows it, so delegates always observe
// a table state that subsequent reads agree with.
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Manager], [Builder], [Config],
// and value types (Credential, AuthCredential, InvalidatedSession, etc.).
// Table bookkeeping and the persisted wire format live in credential/,
// storage backends in keychain/, and audit dispatch under internal/; none
// of them leak through the public API.
//
// # What this package must NOT do
//
//   - Talk to an authentication server. Sessions are obtained, refreshed,
//     and invalidated by the transport layer; authcore only records the
//     outcome.
//   - Return errors from lifecycle callbacks. Persistence failures are
//     logged and counted while the in-memory table stays authoritative.
//   - Block lifecycle callbacks on slow consumers. Audit events and
//     invalidation-stream events are dropped under backpressure.
package authcore
