package flows

import (
	"context"
	"errors"
)

// RegisterMetrics carries metric IDs needed by the register flow.
type RegisterMetrics struct {
	Success     int
	Duplicate   int
	Invalid     int
	RateLimited int
}

// RegisterEvents carries audit event names used by the register flow.
type RegisterEvents struct {
	Success     string
	Duplicate   string
	Invalid     string
	RateLimited string
}

// RegisterErrors carries host-level sentinel errors used by the register flow.
type RegisterErrors struct {
	EngineNotReady error
	Duplicate      error
	RateLimited    error
}

// RegisterDeps captures register flow dependencies.
type RegisterDeps struct {
	MinPasswordLength int

	ClientKey    func(context.Context) string
	CheckRate    func(ctx context.Context, clientKey string) error
	HashPassword func(string) (string, error)
	CreateUser   func(ctx context.Context, email, passwordHash string) (GateUser, error)
	InvalidInput func(field, reason string) error

	MetricInc func(int)
	EmitAudit AuditFunc

	Metrics RegisterMetrics
	Events  RegisterEvents
	Errors  RegisterErrors
}

// RunRegister executes the registration flow: rate budget, input validation,
// hash, insert. A duplicate email is a domain error, never a crash.
func RunRegister(ctx context.Context, email, password string, deps RegisterDeps) (GateUser, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noAudit
	}
	if deps.ClientKey == nil {
		deps.ClientKey = anonymousKey
	}
	if deps.HashPassword == nil || deps.CreateUser == nil || deps.InvalidInput == nil {
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

	email = NormalizeEmail(email)
	if reason, ok := CheckEmail(email); !ok {
		deps.MetricInc(deps.Metrics.Invalid)
		invalid := deps.InvalidInput("email", reason)
		deps.EmitAudit(ctx, deps.Events.Invalid, false, "", invalid, func() map[string]string {
			return map[string]string{"field": "email"}
		})
		return GateUser{}, invalid
	}
	if reason, ok := CheckPassword(password, deps.MinPasswordLength); !ok {
		deps.MetricInc(deps.Metrics.Invalid)
		invalid := deps.InvalidInput("password", reason)
		deps.EmitAudit(ctx, deps.Events.Invalid, false, "", invalid, func() map[string]string {
			return map[string]string{"field": "password"}
		})
		return GateUser{}, invalid
	}

	hash, err := deps.HashPassword(password)
	if err != nil {
		return GateUser{}, err
	}
	password = ""

	user, err := deps.CreateUser(ctx, email, hash)
	if err != nil {
		if errors.Is(err, deps.Errors.Duplicate) {
			deps.MetricInc(deps.Metrics.Duplicate)
			deps.EmitAudit(ctx, deps.Events.Duplicate, false, "", err, func() map[string]string {
				return map[string]string{"email": email}
			})
			return GateUser{}, err
		}
		return GateUser{}, err
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Success, true, user.ID, nil, func() map[string]string {
		return map[string]string{"email": email}
	})

	return user, nil
}
