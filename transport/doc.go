// Package transport exposes HTTP client adapters that bind requests to
// sessions managed by authcore.
//
// [Authenticator] is an [http.RoundTripper] that injects the session's
// access token and session id into every request, re-reading the credential
// on each call so refreshes are picked up immediately. [TokenStale] lets
// callers schedule proactive refreshes for JWT access tokens.
//
// # Architecture boundaries
//
// This package translates wire events into manager calls. It does NOT
// implement credential storage or refresh logic itself; a 401 is reported
// to the manager and the refresh flow reacts through the manager's
// lifecycle callbacks.
//
// # What this package must NOT do
//
//   - Verify JWT signatures (the server is the verifier; clients only peek
//     at expiry).
//   - Cache credentials outside the manager.
//   - Retry requests (callers own retry policy).
package transport
