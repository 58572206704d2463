package authgate

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrEngineNotReady is returned when an Engine method is invoked before
	// the engine was constructed through [Builder.Build].
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrValidation is the sentinel matched by [ValidationError] values.
	ErrValidation = errors.New("invalid input")
	// ErrDuplicateUser is returned by Register when the email is already taken.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrUserNotFound is returned by UserStore implementations for missing records.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned by Login for unknown emails and
	// password mismatches alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled is returned when the account exists but is deactivated.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrUnauthorized is returned for missing, malformed, or tampered tokens,
	// and for tokens presented with the wrong kind. The client must re-login.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAccessExpired is returned when an access token is structurally valid
	// and correctly signed but past its expiry. Distinct from ErrUnauthorized:
	// the client should attempt a refresh, not a re-login.
	ErrAccessExpired = errors.New("access token expired")
	// ErrSessionExpired is returned when the refresh token itself is past its
	// expiry. The client must re-login with credentials.
	ErrSessionExpired = errors.New("session expired")
	// ErrRateLimited is the sentinel matched by [RateLimitError] values.
	ErrRateLimited = errors.New("rate limited")
	// ErrStoreUnavailable is returned when the user store or counter backend
	// fails. Never retried inside the engine.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports a malformed register/login input field. It matches
// [ErrValidation] under [errors.Is].
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// RateLimitError reports a denied request along with the tier that denied it
// and the time remaining until the window boundary. It matches
// [ErrRateLimited] under [errors.Is].
type RateLimitError struct {
	Tier       string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited on tier %s, retry after %s", e.Tier, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// RetryAfterSeconds returns the retry delay rounded up to whole seconds,
// never less than 1. Suitable for a Retry-After header.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// HTTPStatus maps the engine error taxonomy to HTTP-equivalent status codes.
// ErrAccessExpired and ErrUnauthorized both map to 401; transports that need
// the refresh-vs-relogin distinction must inspect the error, not the status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicateUser):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrAccountDisabled),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrAccessExpired),
		errors.Is(err, ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
