package flows

import (
	"context"
	"errors"
)

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	Success     int
	Failure     int
	RateLimited int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	Success     string
	Failure     string
	RateLimited string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady     error
	UserNotFound       error
	InvalidCredentials error
	AccountDisabled    error
}

// TokenPair is the flow-level result of a successful credential check.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	ClientKey      func(context.Context) string
	CheckRate      func(ctx context.Context, clientKey string) error
	GetUserByEmail func(ctx context.Context, email string) (GateUser, error)
	VerifyPassword func(hash, password string) (bool, error)
	IssuePair      func(userID string) (TokenPair, error)

	MetricInc func(int)
	EmitAudit AuditFunc

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin executes the credential flow: rate budget, lookup, password check,
// token mint. A missing user and a wrong password both surface as
// InvalidCredentials so callers cannot probe the store through timing of the
// error message alone.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) (GateUser, TokenPair, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noAudit
	}
	if deps.ClientKey == nil {
		deps.ClientKey = anonymousKey
	}
	if deps.GetUserByEmail == nil || deps.VerifyPassword == nil || deps.IssuePair == nil {
		return GateUser{}, TokenPair{}, deps.Errors.EngineNotReady
	}

	key := deps.ClientKey(ctx)

	if deps.CheckRate != nil {
		if err := deps.CheckRate(ctx, key); err != nil {
			deps.MetricInc(deps.Metrics.RateLimited)
			deps.EmitAudit(ctx, deps.Events.RateLimited, false, "", err, nil)
			return GateUser{}, TokenPair{}, err
		}
	}

	email = NormalizeEmail(email)

	user, err := deps.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, deps.Errors.UserNotFound) {
			deps.MetricInc(deps.Metrics.Failure)
			deps.EmitAudit(ctx, deps.Events.Failure, false, "", deps.Errors.InvalidCredentials, func() map[string]string {
				return map[string]string{"reason": "user_not_found"}
			})
			return GateUser{}, TokenPair{}, deps.Errors.InvalidCredentials
		}
		return GateUser{}, TokenPair{}, err
	}

	ok, err := deps.VerifyPassword(user.PasswordHash, password)
	password = ""
	if err != nil {
		return GateUser{}, TokenPair{}, err
	}
	if !ok {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, user.ID, deps.Errors.InvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "password_mismatch"}
		})
		return GateUser{}, TokenPair{}, deps.Errors.InvalidCredentials
	}

	if !user.Active {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, user.ID, deps.Errors.AccountDisabled, func() map[string]string {
			return map[string]string{"reason": "account_disabled"}
		})
		return GateUser{}, TokenPair{}, deps.Errors.AccountDisabled
	}

	pair, err := deps.IssuePair(user.ID)
	if err != nil {
		return GateUser{}, TokenPair{}, err
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Success, true, user.ID, nil, nil)

	return user, pair, nil
}
