package authgate

import (
	"context"
	"errors"

	"github.com/ncastellan/authgate/internal/flows"
	"github.com/ncastellan/authgate/jwt"
)

// Authenticate validates an access token and returns its subject's user ID.
// An expired but otherwise valid token returns [ErrAccessExpired] so the
// caller knows a refresh will succeed; anything else wrong with the token,
// including a refresh token presented here, returns [ErrUnauthorized].
//
// This is the hot path: it does no I/O and pays no rate budget. Guards that
// need per-client throttling wrap it with Profile or their own tier.
func (e *Engine) Authenticate(accessToken string) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}

	start := e.clock()
	res := flows.RunAuthenticate(accessToken, e.authenticateDeps())
	if e.metrics != nil {
		e.metrics.Observe(MetricAuthenticateLatency, e.clock().Sub(start))
	}

	switch res.Failure {
	case flows.AuthenticateFailureNone:
		return res.UserID, nil
	case flows.AuthenticateFailureExpired:
		return "", ErrAccessExpired
	default:
		return "", ErrUnauthorized
	}
}

func (e *Engine) authenticateDeps() flows.AuthenticateDeps {
	return flows.AuthenticateDeps{
		Decode: func(token string) (string, bool, error) {
			claims, err := e.codec.Decode(token)
			if err != nil {
				return "", false, err
			}
			return claims.Subject, claims.Kind == jwt.KindAccess, nil
		},
		TokenExpired: jwt.ErrTokenExpired,

		MetricInc: func(id int) { e.metricInc(MetricID(id)) },

		Metrics: flows.AuthenticateMetrics{
			Success:      int(MetricAuthenticateSuccess),
			Expired:      int(MetricAccessExpired),
			Unauthorized: int(MetricUnauthorized),
		},
	}
}

// Profile returns the account behind an access token. The token guard runs
// after the rate check; a deactivated account returns [ErrAccountDisabled]
// and a subject that no longer exists returns [ErrUnauthorized]. Profile
// pays the protected tier.
func (e *Engine) Profile(ctx context.Context, accessToken string) (UserRecord, error) {
	if !e.ready() {
		return UserRecord{}, ErrEngineNotReady
	}

	key := clientKeyFromContext(ctx)
	tier := e.config.RateLimit.Protected

	user, err := flows.RunProfile(ctx, accessToken, flows.ProfileDeps{
		ClientKey: func(context.Context) string { return key },
		CheckRate: func(ctx context.Context, clientKey string) error {
			return e.checkRate(ctx, clientKey, tier)
		},
		Authenticate: func(token string) flows.AuthenticateResult {
			start := e.clock()
			res := flows.RunAuthenticate(token, e.authenticateDeps())
			if e.metrics != nil {
				e.metrics.Observe(MetricAuthenticateLatency, e.clock().Sub(start))
			}
			if res.Err != nil {
				switch res.Failure {
				case flows.AuthenticateFailureExpired:
					res.Err = ErrAccessExpired
				default:
					res.Err = ErrUnauthorized
				}
			}
			return res
		},
		GetUserByID: func(ctx context.Context, id string) (flows.GateUser, error) {
			record, err := e.userStore.GetUserByID(ctx, id)
			if err != nil {
				if errors.Is(err, ErrUserNotFound) {
					return flows.GateUser{}, err
				}
				return flows.GateUser{}, e.storeErr("get user by id", err)
			}
			return recordToGateUser(record), nil
		},

		MetricInc: func(id int) { e.metricInc(MetricID(id)) },
		EmitAudit: e.auditFunc(key, tier.Name),

		Metrics: flows.ProfileMetrics{
			Success:     int(MetricProfileSuccess),
			Failure:     int(MetricProfileFailure),
			RateLimited: int(MetricProfileRateLimited),
		},
		Events: flows.ProfileEvents{
			Success:     "profile",
			Failure:     "profile_failure",
			RateLimited: "profile_rate_limited",
		},
		Errors: flows.ProfileErrors{
			EngineNotReady:  ErrEngineNotReady,
			UserNotFound:    ErrUserNotFound,
			Unauthorized:    ErrUnauthorized,
			AccountDisabled: ErrAccountDisabled,
		},
	})
	if err != nil {
		return UserRecord{}, err
	}

	return gateUserToRecord(user), nil
}
