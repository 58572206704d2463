package authgate

import (
	"context"
	"errors"

	"github.com/ncastellan/authgate/internal/flows"
)

// Register creates a new account. The email is normalized (lowercased,
// trimmed) before validation and storage; a duplicate email returns
// [ErrDuplicateUser]. Registration pays the auth tier.
func (e *Engine) Register(ctx context.Context, email, password string) (RegisterResult, error) {
	if !e.ready() {
		return RegisterResult{}, ErrEngineNotReady
	}

	key := clientKeyFromContext(ctx)
	tier := e.config.RateLimit.Auth

	user, err := flows.RunRegister(ctx, email, password, flows.RegisterDeps{
		MinPasswordLength: e.config.Password.MinLength,

		ClientKey: func(context.Context) string { return key },
		CheckRate: func(ctx context.Context, clientKey string) error {
			return e.checkRate(ctx, clientKey, tier)
		},
		HashPassword: e.hasher.Hash,
		CreateUser: func(ctx context.Context, email, passwordHash string) (flows.GateUser, error) {
			record, err := e.userStore.CreateUser(ctx, CreateUserInput{
				Email:        email,
				PasswordHash: passwordHash,
				CreatedAt:    e.clock(),
			})
			if err != nil {
				if errors.Is(err, ErrDuplicateUser) {
					return flows.GateUser{}, err
				}
				return flows.GateUser{}, e.storeErr("create user", err)
			}
			return recordToGateUser(record), nil
		},
		InvalidInput: func(field, reason string) error {
			return &ValidationError{Field: field, Reason: reason}
		},

		MetricInc: func(id int) { e.metricInc(MetricID(id)) },
		EmitAudit: e.auditFunc(key, tier.Name),

		Metrics: flows.RegisterMetrics{
			Success:     int(MetricRegisterSuccess),
			Duplicate:   int(MetricRegisterDuplicate),
			Invalid:     int(MetricRegisterInvalid),
			RateLimited: int(MetricRegisterRateLimited),
		},
		Events: flows.RegisterEvents{
			Success:     "register",
			Duplicate:   "register_duplicate",
			Invalid:     "register_invalid",
			RateLimited: "register_rate_limited",
		},
		Errors: flows.RegisterErrors{
			EngineNotReady: ErrEngineNotReady,
			Duplicate:      ErrDuplicateUser,
			RateLimited:    ErrRateLimited,
		},
	})
	if err != nil {
		return RegisterResult{}, err
	}

	return RegisterResult{UserID: user.ID}, nil
}
