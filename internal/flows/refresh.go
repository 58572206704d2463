package flows

import (
	"context"
	"errors"
)

// RefreshFailureKind classifies refresh outcomes so the host can attach its
// own sentinel errors and metrics without this package importing them.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureRateLimited
	RefreshFailureUnauthorized
	RefreshFailureSessionExpired
	RefreshFailureMint
)

// RefreshResult reports the refresh outcome. Err carries the cause for
// kinds that wrap a lower-level error (rate limit, mint).
type RefreshResult struct {
	Failure     RefreshFailureKind
	Err         error
	UserID      string
	AccessToken string
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	ClientKey     func(context.Context) string
	CheckRate     func(ctx context.Context, clientKey string) error
	DecodeRefresh func(token string) (userID string, err error)
	MintAccess    func(userID string) (string, error)

	// TokenExpired is matched against DecodeRefresh errors to separate an
	// expired session from a garbage or forged token.
	TokenExpired error

	MetricInc func(int)
	EmitAudit AuditFunc

	Metrics RefreshMetrics
	Events  RefreshEvents
}

// RefreshMetrics carries metric IDs needed by the refresh flow.
type RefreshMetrics struct {
	Success        int
	Failure        int
	SessionExpired int
	RateLimited    int
}

// RefreshEvents carries audit event names used by the refresh flow.
type RefreshEvents struct {
	Success        string
	Failure        string
	SessionExpired string
	RateLimited    string
}

// RunRefresh exchanges a refresh token for a fresh access token. The refresh
// token itself is not rotated; it stays valid until its own expiry.
func RunRefresh(ctx context.Context, token string, deps RefreshDeps) RefreshResult {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noAudit
	}
	if deps.ClientKey == nil {
		deps.ClientKey = anonymousKey
	}

	key := deps.ClientKey(ctx)

	if deps.CheckRate != nil {
		if err := deps.CheckRate(ctx, key); err != nil {
			deps.MetricInc(deps.Metrics.RateLimited)
			deps.EmitAudit(ctx, deps.Events.RateLimited, false, "", err, nil)
			return RefreshResult{Failure: RefreshFailureRateLimited, Err: err}
		}
	}

	userID, err := deps.DecodeRefresh(token)
	if err != nil {
		if deps.TokenExpired != nil && errors.Is(err, deps.TokenExpired) {
			deps.MetricInc(deps.Metrics.SessionExpired)
			deps.EmitAudit(ctx, deps.Events.SessionExpired, false, "", err, nil)
			return RefreshResult{Failure: RefreshFailureSessionExpired, Err: err}
		}
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, "", err, nil)
		return RefreshResult{Failure: RefreshFailureUnauthorized, Err: err}
	}

	access, err := deps.MintAccess(userID)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, userID, err, nil)
		return RefreshResult{Failure: RefreshFailureMint, Err: err, UserID: userID}
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Success, true, userID, nil, nil)

	return RefreshResult{Failure: RefreshFailureNone, UserID: userID, AccessToken: access}
}
