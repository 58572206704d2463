package internaldefs

import (
	"github.com/ncastellan/authgate"
)

// CounterDef maps one core counter to its exported name.
type CounterDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// HistogramDef maps one core histogram to its exported name.
type HistogramDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: authgate.MetricRegisterSuccess, Name: "authgate_register_success_total", Help: "Successful account registrations."},
	{ID: authgate.MetricRegisterDuplicate, Name: "authgate_register_duplicate_total", Help: "Registrations rejected for an existing email."},
	{ID: authgate.MetricRegisterInvalid, Name: "authgate_register_invalid_total", Help: "Registrations rejected by input validation."},
	{ID: authgate.MetricRegisterRateLimited, Name: "authgate_register_rate_limited_total", Help: "Rate-limited registration attempts."},
	{ID: authgate.MetricLoginSuccess, Name: "authgate_login_success_total", Help: "Successful login attempts."},
	{ID: authgate.MetricLoginFailure, Name: "authgate_login_failure_total", Help: "Failed login attempts."},
	{ID: authgate.MetricLoginRateLimited, Name: "authgate_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: authgate.MetricRefreshSuccess, Name: "authgate_refresh_success_total", Help: "Refresh operations that minted a new access token."},
	{ID: authgate.MetricRefreshFailure, Name: "authgate_refresh_failure_total", Help: "Refresh operations rejected as unauthorized."},
	{ID: authgate.MetricSessionExpired, Name: "authgate_session_expired_total", Help: "Refresh operations rejected for an expired refresh token."},
	{ID: authgate.MetricRefreshRateLimited, Name: "authgate_refresh_rate_limited_total", Help: "Rate-limited refresh attempts."},
	{ID: authgate.MetricAuthenticateSuccess, Name: "authgate_authenticate_success_total", Help: "Validated access tokens."},
	{ID: authgate.MetricAccessExpired, Name: "authgate_access_expired_total", Help: "Access tokens rejected only for expiry."},
	{ID: authgate.MetricUnauthorized, Name: "authgate_unauthorized_total", Help: "Tokens rejected as malformed, tampered, or wrong-kind."},
	{ID: authgate.MetricProfileSuccess, Name: "authgate_profile_success_total", Help: "Successful profile fetches."},
	{ID: authgate.MetricProfileFailure, Name: "authgate_profile_failure_total", Help: "Failed profile fetches."},
	{ID: authgate.MetricProfileRateLimited, Name: "authgate_profile_rate_limited_total", Help: "Rate-limited profile fetches."},
	{ID: authgate.MetricHealthOK, Name: "authgate_health_ok_total", Help: "Health checks served."},
	{ID: authgate.MetricRateLimitHit, Name: "authgate_rate_limit_hit_total", Help: "Endpoint-tier rate limit denials."},
	{ID: authgate.MetricGlobalRateLimited, Name: "authgate_global_rate_limited_total", Help: "Global-ceiling rate limit denials."},
	{ID: authgate.MetricStoreUnavailable, Name: "authgate_store_unavailable_total", Help: "User store backend failures."},
}

// HistogramDefs lists every exported histogram in a stable order.
var HistogramDefs = []HistogramDef{
	{ID: authgate.MetricAuthenticateLatency, Name: "authgate_authenticate_latency_seconds", Help: "Access token validation latency histogram."},
}

// HistogramBounds are the bucket upper bounds in seconds, matching the core
// histogram layout.
var HistogramBounds = []string{
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"0.005",
	"0.025",
	"+Inf",
}

// HistogramBoundSuffix holds name-safe bucket suffixes for backends that
// cannot carry an le label.
var HistogramBoundSuffix = []string{
	"50us",
	"100us",
	"250us",
	"500us",
	"1ms",
	"5ms",
	"25ms",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed layout.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
