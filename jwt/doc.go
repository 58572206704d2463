// Package jwt implements the authgate token codec: self-contained HS256
// tokens carrying a subject identity, a token kind (access or refresh), and
// expiry, signed with the single process-wide secret.
//
// # Decode contract
//
// [Codec.Decode] distinguishes exactly three failure modes so callers can map
// them to distinct outward statuses:
//
//   - [ErrTokenMalformed]: structurally invalid input.
//   - [ErrSignatureInvalid]: MAC mismatch (wrong secret or tampering).
//     Checked before expiry, so a forged token never reads as merely expired.
//   - [ErrTokenExpired]: correctly signed but past exp.
//
// # What this package must NOT do
//
//   - Perform I/O or keep state. Encode/Decode are pure functions of the
//     input, the secret, and the injected clock.
//   - Accept any algorithm other than HS256.
package jwt
