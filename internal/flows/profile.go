package flows

import (
	"context"
	"errors"
)

// AuthenticateFailureKind classifies token-guard outcomes.
type AuthenticateFailureKind int

const (
	AuthenticateFailureNone AuthenticateFailureKind = iota
	AuthenticateFailureExpired
	AuthenticateFailureWrongKind
	AuthenticateFailureUnauthorized
)

// AuthenticateResult reports the token-guard outcome.
type AuthenticateResult struct {
	Failure AuthenticateFailureKind
	Err     error
	UserID  string
}

// AuthenticateDeps captures the token-guard dependencies. Decode reports
// whether the token is of the access kind so a refresh token presented at a
// protected surface is rejected rather than honored.
type AuthenticateDeps struct {
	Decode func(token string) (userID string, isAccess bool, err error)

	// TokenExpired is matched against Decode errors to separate a stale
	// access token (recoverable through refresh) from a forged one.
	TokenExpired error

	MetricInc func(int)

	Metrics AuthenticateMetrics
}

// AuthenticateMetrics carries metric IDs needed by the token guard.
type AuthenticateMetrics struct {
	Success      int
	Expired      int
	Unauthorized int
}

// RunAuthenticate validates an access token and extracts its subject. It
// performs no I/O; the store lookup belongs to the calling flow.
func RunAuthenticate(token string, deps AuthenticateDeps) AuthenticateResult {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.Decode == nil {
		return AuthenticateResult{Failure: AuthenticateFailureUnauthorized}
	}

	userID, isAccess, err := deps.Decode(token)
	if err != nil {
		if deps.TokenExpired != nil && errors.Is(err, deps.TokenExpired) {
			deps.MetricInc(deps.Metrics.Expired)
			return AuthenticateResult{Failure: AuthenticateFailureExpired, Err: err}
		}
		deps.MetricInc(deps.Metrics.Unauthorized)
		return AuthenticateResult{Failure: AuthenticateFailureUnauthorized, Err: err}
	}
	if !isAccess {
		deps.MetricInc(deps.Metrics.Unauthorized)
		return AuthenticateResult{Failure: AuthenticateFailureWrongKind}
	}

	deps.MetricInc(deps.Metrics.Success)
	return AuthenticateResult{Failure: AuthenticateFailureNone, UserID: userID}
}

// ProfileMetrics carries metric IDs needed by the profile flow.
type ProfileMetrics struct {
	Success     int
	Failure     int
	RateLimited int
}

// ProfileEvents carries audit event names used by the profile flow.
type ProfileEvents struct {
	Success     string
	Failure     string
	RateLimited string
}

// ProfileErrors carries host-level sentinel errors used by the profile flow.
type ProfileErrors struct {
	EngineNotReady  error
	UserNotFound    error
	Unauthorized    error
	AccountDisabled error
}

// ProfileDeps captures profile flow dependencies.
type ProfileDeps struct {
	ClientKey    func(context.Context) string
	CheckRate    func(ctx context.Context, clientKey string) error
	Authenticate func(token string) AuthenticateResult
	GetUserByID  func(ctx context.Context, id string) (GateUser, error)

	MetricInc func(int)
	EmitAudit AuditFunc

	Metrics ProfileMetrics
	Events  ProfileEvents
	Errors  ProfileErrors
}

// RunProfile fetches the profile behind an access token: rate budget, token
// guard, store lookup. A subject deleted after token issue surfaces as
// Unauthorized, not as a store miss.
func RunProfile(ctx context.Context, token string, deps ProfileDeps) (GateUser, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noAudit
	}
	if deps.ClientKey == nil {
		deps.ClientKey = anonymousKey
	}
	if deps.Authenticate == nil || deps.GetUserByID == nil {
		return GateUser{}, deps.Errors.EngineNotReady
	}

	key := deps.ClientKey(ctx)

	if deps.CheckRate != nil {
		if err := deps.CheckRate(ctx, key); err != nil {
			deps.MetricInc(deps.Metrics.RateLimited)
			deps.EmitAudit(ctx, deps.Events.RateLimited, false, "", err, nil)
			return GateUser{}, err
		}
	}

	res := deps.Authenticate(token)
	if res.Failure != AuthenticateFailureNone {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, res.UserID, res.Err, nil)
		if res.Err != nil {
			return GateUser{}, res.Err
		}
		return GateUser{}, deps.Errors.Unauthorized
	}

	user, err := deps.GetUserByID(ctx, res.UserID)
	if err != nil {
		if errors.Is(err, deps.Errors.UserNotFound) {
			deps.MetricInc(deps.Metrics.Failure)
			deps.EmitAudit(ctx, deps.Events.Failure, false, res.UserID, deps.Errors.Unauthorized, func() map[string]string {
				return map[string]string{"reason": "subject_missing"}
			})
			return GateUser{}, deps.Errors.Unauthorized
		}
		return GateUser{}, err
	}

	if !user.Active {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, user.ID, deps.Errors.AccountDisabled, func() map[string]string {
			return map[string]string{"reason": "account_disabled"}
		})
		return GateUser{}, deps.Errors.AccountDisabled
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Success, true, user.ID, nil, nil)

	return user, nil
}
