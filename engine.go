package authgate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ncastellan/authgate/internal/flows"
	"github.com/ncastellan/authgate/jwt"
	"github.com/ncastellan/authgate/ratelimit"
)

// Engine is the request gate. It owns the token codec, the password hasher,
// the tiered rate limiter, and the audit/metrics plumbing; the credential
// store and the transport stay outside, injected through the [Builder].
//
// All methods are safe for concurrent use. A zero or nil Engine returns
// [ErrEngineNotReady] from every operation.
type Engine struct {
	config    Config
	userStore UserStore
	hasher    PasswordHasher
	codec     *jwt.Codec
	clock     func() time.Time

	limiter           *ratelimit.Limiter
	ownedCounterStore *ratelimit.MemoryStore

	audit   *auditDispatcher
	metrics *Metrics

	closeOnce sync.Once
}

// Close shuts down the background machinery: the audit dispatcher drains its
// buffer and the owned counter-store janitor stops. Counter stores supplied
// via [Builder.WithCounterStore] are not closed. Idempotent.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		if e.audit != nil {
			e.audit.Close()
		}
		if e.ownedCounterStore != nil {
			e.ownedCounterStore.Close()
		}
	})
}

// MetricsSnapshot returns a point-in-time copy of all counters and
// histograms. Nil maps when metrics are disabled.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{}
	}
	return e.metrics.Snapshot()
}

// AuditDropped returns the number of audit events shed because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) ready() bool {
	return e != nil && e.userStore != nil && e.codec != nil && e.hasher != nil
}

func (e *Engine) metricInc(id MetricID) {
	if e.metrics != nil {
		e.metrics.Inc(id)
	}
}

// checkRate charges both budgets for one operation: the global ceiling
// first, then the endpoint tier. A global denial does not consume an
// endpoint slot.
func (e *Engine) checkRate(ctx context.Context, clientKey string, tier TierPolicy) error {
	if e.limiter == nil {
		return nil
	}

	global := e.config.RateLimit.Global
	if global.Limit > 0 {
		decision, err := e.limiter.Check(ctx, clientKey, ratelimit.Tier{
			Name:   global.Name,
			Limit:  global.Limit,
			Window: global.Window,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if !decision.Allowed {
			e.metricInc(MetricGlobalRateLimited)
			return &RateLimitError{Tier: global.Name, RetryAfter: decision.RetryAfter}
		}
	}

	decision, err := e.limiter.Check(ctx, clientKey, ratelimit.Tier{
		Name:   tier.Name,
		Limit:  tier.Limit,
		Window: tier.Window,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !decision.Allowed {
		e.metricInc(MetricRateLimitHit)
		return &RateLimitError{Tier: tier.Name, RetryAfter: decision.RetryAfter}
	}

	return nil
}

// Health reports liveness. It pays the public tier and the global ceiling
// like any other operation, so an abusive poller cannot starve the gate.
func (e *Engine) Health(ctx context.Context) (HealthStatus, error) {
	if !e.ready() {
		return HealthStatus{}, ErrEngineNotReady
	}

	key := clientKeyFromContext(ctx)
	if err := e.checkRate(ctx, key, e.config.RateLimit.Public); err != nil {
		return HealthStatus{}, err
	}

	e.metricInc(MetricHealthOK)
	return HealthStatus{Status: "ok", CheckedAt: e.clock()}, nil
}

func (e *Engine) emitAudit(ctx context.Context, event string, success bool, userID, clientKey, tier string, cause error, meta func() map[string]string) {
	if e.audit == nil {
		return
	}
	ev := AuditEvent{
		Timestamp: e.clock(),
		EventType: event,
		UserID:    userID,
		ClientKey: clientKey,
		Tier:      tier,
		Success:   success,
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	if meta != nil {
		ev.Metadata = meta()
	}
	e.audit.Emit(ctx, ev)
}

// auditFunc adapts emitAudit to the flow-level [flows.AuditFunc] shape with
// the client key and tier pre-bound.
func (e *Engine) auditFunc(clientKey, tier string) flows.AuditFunc {
	if e.audit == nil {
		return nil
	}
	return func(ctx context.Context, event string, success bool, userID string, cause error, meta func() map[string]string) {
		e.emitAudit(ctx, event, success, userID, clientKey, tier, cause, meta)
	}
}

func gateUserToRecord(u flows.GateUser) UserRecord {
	return UserRecord{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		Active:       u.Active,
	}
}

func recordToGateUser(r UserRecord) flows.GateUser {
	return flows.GateUser{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		Active:       r.Active,
	}
}

// storeErr normalizes unexpected backend failures. Adapters that already
// classify their failures as ErrStoreUnavailable pass through unchanged.
func (e *Engine) storeErr(op string, err error) error {
	e.metricInc(MetricStoreUnavailable)
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
