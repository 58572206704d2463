package authgate

import (
	"context"
	"errors"

	"github.com/ncastellan/authgate/internal/flows"
	"github.com/ncastellan/authgate/jwt"
)

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token is not rotated: it remains valid until its own expiry, at
// which point Refresh returns [ErrSessionExpired] and the caller must log in
// again. Any other defect in the presented token, including handing in an
// access token, returns [ErrUnauthorized]. Refresh pays the refresh tier.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}

	key := clientKeyFromContext(ctx)
	tier := e.config.RateLimit.Refresh

	res := flows.RunRefresh(ctx, refreshToken, flows.RefreshDeps{
		ClientKey: func(context.Context) string { return key },
		CheckRate: func(ctx context.Context, clientKey string) error {
			return e.checkRate(ctx, clientKey, tier)
		},
		DecodeRefresh: func(token string) (string, error) {
			claims, err := e.codec.Decode(token)
			if err != nil {
				return "", err
			}
			if claims.Kind != jwt.KindRefresh {
				return "", errors.New("not a refresh token")
			}
			return claims.Subject, nil
		},
		MintAccess: func(userID string) (string, error) {
			return e.codec.Encode(userID, jwt.KindAccess)
		},
		TokenExpired: jwt.ErrTokenExpired,

		MetricInc: func(id int) { e.metricInc(MetricID(id)) },
		EmitAudit: e.auditFunc(key, tier.Name),

		Metrics: flows.RefreshMetrics{
			Success:        int(MetricRefreshSuccess),
			Failure:        int(MetricRefreshFailure),
			SessionExpired: int(MetricSessionExpired),
			RateLimited:    int(MetricRefreshRateLimited),
		},
		Events: flows.RefreshEvents{
			Success:        "refresh",
			Failure:        "refresh_failure",
			SessionExpired: "session_expired",
			RateLimited:    "refresh_rate_limited",
		},
	})

	switch res.Failure {
	case flows.RefreshFailureNone:
		return res.AccessToken, nil
	case flows.RefreshFailureRateLimited:
		return "", res.Err
	case flows.RefreshFailureSessionExpired:
		return "", ErrSessionExpired
	case flows.RefreshFailureMint:
		return "", res.Err
	default:
		return "", ErrUnauthorized
	}
}
