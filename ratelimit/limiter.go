package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable wraps counter backend failures.
var ErrStoreUnavailable = errors.New("counter store unavailable")

// Tier is a named rate-limit policy applied to a class of endpoints.
// Immutable once the limiter is constructed.
type Tier struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Decision is the outcome of a limiter check. RetryAfter is only meaningful
// when Allowed is false: it is the time remaining until the window boundary.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// CounterStore is the window counter backend. Incr records one hit for key,
// creating a window anchored at now when none exists or the previous one has
// elapsed, and returns the post-increment count together with the window
// start. Implementations must be safe for concurrent use and must not lose
// concurrent increments on the same key.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration, now time.Time) (count int64, windowStart time.Time, err error)
}

// Config carries limiter construction options.
type Config struct {
	// Now is the clock; defaults to time.Now. Injected for deterministic
	// window-expiry tests.
	Now func() time.Time
}

// Limiter evaluates tier policies against a [CounterStore]. Safe for
// concurrent use when the store is.
type Limiter struct {
	store CounterStore
	now   func() time.Time
}

// New creates a Limiter backed by the given store.
func New(store CounterStore, cfg Config) *Limiter {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Limiter{store: store, now: now}
}

// Check records a hit for (key, tier) and reports whether it is within the
// tier budget. Tiers with a non-positive limit or window never deny.
func (l *Limiter) Check(ctx context.Context, key string, tier Tier) (Decision, error) {
	if tier.Limit <= 0 || tier.Window <= 0 {
		return Decision{Allowed: true}, nil
	}

	now := l.now()
	count, start, err := l.store.Incr(ctx, tier.Name+":"+key, tier.Window, now)
	if err != nil {
		return Decision{}, err
	}

	if count > int64(tier.Limit) {
		retry := start.Add(tier.Window).Sub(now)
		if retry < 0 {
			retry = 0
		}
		return Decision{RetryAfter: retry}, nil
	}

	return Decision{
		Allowed:   true,
		Remaining: tier.Limit - int(count),
	}, nil
}
