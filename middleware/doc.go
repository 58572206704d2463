// Package middleware exposes net/http adapters for the authgate request
// gate.
//
// # Guards
//
//   - [Guard] — validates the bearer access token in front of a handler.
//   - [ClientKey] — derives the per-client rate-limit key from proxy headers
//     and attaches it to the request context.
//
// Guard reads the Authorization header, calls Engine.Authenticate, and
// injects the subject's user ID into the request context. An expired access
// token is answered with a distinct error body so clients know to try a
// refresh instead of a fresh login.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication or throttling itself — all decisions are
// delegated to the Engine.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Touch the user store (Engine handles I/O).
//   - Invent status codes: mapping lives in [authgate.HTTPStatus].
package middleware
