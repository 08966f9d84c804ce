// Package keychain provides the secure byte stores that back credential
// persistence: an in-memory store, a Redis-backed store for shared backings,
// an AES-GCM encrypting wrapper, and argon2id passphrase key derivation.
//
// # Architecture boundaries
//
// This package knows nothing about sessions or credentials; it moves opaque
// bytes. The authcore Manager decides what is stored and under which key.
//
// # What this package must NOT do
//
//   - Import authcore or credential (no upward imports).
//   - Interpret, log, or cache stored values.
//   - Retry failed writes; the caller owns failure policy.
package keychain
