// Package gatehouse provides pluggable HTTP authentication: Basic-credential
// verification, server-side session strategies with optional expiration and a
// durable Redis mirror, and a credential service covering registration, login
// validation, session issuance, and one-time password-reset tokens.
//
// The package is designed for concurrent server workloads: Service methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build], and every strategy in the strategy subpackage guards its own
// state.
//
// # Architecture boundaries
//
// gatehouse is the public surface. It exposes [Service], [Builder], [Config],
// [User], and the [UserDirectory] and [Hasher] integration interfaces. Request
// gating lives in the strategy subpackage, HTTP plumbing in middleware, and
// durable session storage in session. Per-identity locking lives under
// internal/ and audit dispatch stays unexported in this package.
//
// # What this package must NOT do
//
//   - Expose Redis or Postgres clients, store internals, or token encodings in
//     its public API.
//   - Distinguish "unknown user", "bad password", and "malformed header" to the
//     caller: every authentication miss is the same absence.
//   - Mutate inbound *http.Request values.
//
// # Error model
//
// Two channels, never conflated. Authentication misses (missing or malformed
// headers, unknown or expired sessions, failed password checks) surface as a
// nil identity with a nil error. Typed errors ([ErrUserExists],
// [ErrUserNotFound], [ErrInvalidField]) are reserved for caller misuse and
// business-rule violations, and collaborator failures propagate as wrapped
// errors.
package gatehouse
