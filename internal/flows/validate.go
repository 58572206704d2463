package flows

import "strings"

const maxEmailLength = 254

// NormalizeEmail lowercases and trims the address. Applied before every
// store lookup so email uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckEmail reports whether a normalized address is acceptable; on failure
// the returned reason is suitable for a validation error.
func CheckEmail(email string) (string, bool) {
	switch {
	case email == "":
		return "required", false
	case len(email) > maxEmailLength:
		return "too long", false
	case !strings.Contains(email, "@") || !strings.Contains(email, "."):
		return "not a valid email address", false
	case strings.ContainsAny(email, " \t"):
		return "must not contain whitespace", false
	}
	return "", true
}

// CheckPassword reports whether the password meets the minimum length
// policy. Length is measured in bytes, matching what the hasher consumes.
func CheckPassword(password string, minLength int) (string, bool) {
	switch {
	case password == "":
		return "required", false
	case len(password) < minLength:
		return "too short", false
	}
	return "", true
}
