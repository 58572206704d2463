// Package authgate provides an embeddable token lifecycle and request gating
// engine: signed access/refresh token pairs, credential verification against a
// pluggable user store, and tiered fixed-window rate limiting in front of every
// operation.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (UserRecord, LoginResult, MetricsSnapshot, etc.). Flow
// orchestration and audit dispatch live under internal/ and are never exported.
// The token codec (jwt), password hashing (password), and the rate limiter
// (ratelimit) are public leaf packages so they can be reused and extended by
// callers.
//
// # What this package must NOT do
//
//   - Persist token state. Token validity is a pure function of signature and
//     expiry; there is no revocation table.
//   - Reach for configuration implicitly. The signing secret, TTLs, and tier
//     policies arrive through [Config] at Build time.
//   - Hold rate limiter locks across store or hasher calls.
//
// # Performance contract
//
// Authenticate is the hot path. It performs no I/O: one MAC verification over
// the token plus claim checks, allocating only the returned identity.
package authgate
