// Package password provides the default argon2id hasher behind the
// authgate.PasswordHasher interface.
//
// Hashes are stored in PHC string format
// ($argon2id$v=19$m=...,t=...,p=...$salt$hash) so parameters travel with the
// hash and verification never depends on the hasher's current configuration.
// Comparison is constant-time.
//
// Credential policy (minimum password length) is enforced by the request
// gate, not here: this package is a one-way primitive and hashes whatever
// bytes it is given.
package password
