// Package audit implements the internal audit event model and the buffered
// asynchronous dispatcher used by the session manager.
//
// # Architecture boundaries
//
// Events describe credential lifecycle operations (obtain, update,
// invalidation, clear, persistence failures) without ever carrying token or
// key material. The root authcore package re-exports the sink types.
//
// # What this package must NOT do
//
//   - Import authcore, credential, or keychain (no upward imports).
//   - Block an emitting caller when the sink is slow and DropIfFull is set.
package audit
