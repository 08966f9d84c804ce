// Package credential provides the in-memory session table and the compact
// binary encoding used to persist it through secure storage.
//
// # Binary encoding
//
// The whole table is persisted as one blob: a schema version byte followed by
// uvarint-framed records in sessionID order. The encoder is append-only:
// new versions add fields but never reinterpret old ones (v1 predates the
// credential-less flag; v2 is current).
//
// # Architecture boundaries
//
// This package owns the [Table] and the [Record] model. It performs no
// locking, no I/O, and no notification; serialization and persistence
// belong to the authcore Manager.
//
// # What this package must NOT do
//
//   - Import authcore, keychain, or transport (no upward imports).
//   - Encrypt or decrypt blobs (the keychain wrappers do that).
//   - Decide which record is "active" for a user beyond deterministic lookup.
package credential
