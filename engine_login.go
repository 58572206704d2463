package authgate

import (
	"context"
	"errors"

	"github.com/ncastellan/authgate/internal/flows"
)

// Login verifies credentials and issues a fresh access/refresh token pair.
// Unknown emails and wrong passwords both return [ErrInvalidCredentials];
// deactivated accounts return [ErrAccountDisabled]. Login pays the auth
// tier.
func (e *Engine) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if !e.ready() {
		return LoginResult{}, ErrEngineNotReady
	}

	key := clientKeyFromContext(ctx)
	tier := e.config.RateLimit.Auth

	user, pair, err := flows.RunLogin(ctx, email, password, flows.LoginDeps{
		ClientKey: func(context.Context) string { return key },
		CheckRate: func(ctx context.Context, clientKey string) error {
			return e.checkRate(ctx, clientKey, tier)
		},
		GetUserByEmail: func(ctx context.Context, email string) (flows.GateUser, error) {
			record, err := e.userStore.GetUserByEmail(ctx, email)
			if err != nil {
				if errors.Is(err, ErrUserNotFound) {
					return flows.GateUser{}, err
				}
				return flows.GateUser{}, e.storeErr("get user by email", err)
			}
			return recordToGateUser(record), nil
		},
		VerifyPassword: func(hash, password string) (bool, error) {
			return e.hasher.Verify(password, hash)
		},
		IssuePair: func(userID string) (flows.TokenPair, error) {
			access, refresh, err := e.codec.IssuePair(userID)
			if err != nil {
				return flows.TokenPair{}, err
			}
			return flows.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
		},

		MetricInc: func(id int) { e.metricInc(MetricID(id)) },
		EmitAudit: e.auditFunc(key, tier.Name),

		Metrics: flows.LoginMetrics{
			Success:     int(MetricLoginSuccess),
			Failure:     int(MetricLoginFailure),
			RateLimited: int(MetricLoginRateLimited),
		},
		Events: flows.LoginEvents{
			Success:     "login",
			Failure:     "login_failure",
			RateLimited: "login_rate_limited",
		},
		Errors: flows.LoginErrors{
			EngineNotReady:     ErrEngineNotReady,
			UserNotFound:       ErrUserNotFound,
			InvalidCredentials: ErrInvalidCredentials,
			AccountDisabled:    ErrAccountDisabled,
		},
	})
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         gateUserToRecord(user),
	}, nil
}
