package authgate

import (
	"errors"
	"time"
)

// Config is the explicit process configuration handed to [Builder.WithConfig].
// Nothing here is read from the environment: secrets, lifetimes, and tier
// policies all arrive through this struct so tests can run with deterministic
// values. Treated as immutable after Build (Build deep-clones it).
type Config struct {
	JWT       JWTConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig carries the single process-wide signing secret and the per-kind
// token lifetimes.
type JWTConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	Leeway     time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig carries the argon2id cost parameters for the default hasher
// and the minimum accepted password length (a gate policy, enforced before
// hashing).
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// TierPolicy is one named (limit, window) pair. A non-positive limit or
// window disables the tier.
type TierPolicy struct {
	Name   string
	Limit  int
	Window time.Duration
}

// RateLimitConfig holds the per-endpoint tier table plus the global ceiling
// that every operation pays in addition to its own tier.
type RateLimitConfig struct {
	Enabled bool

	Auth      TierPolicy // register, login
	Refresh   TierPolicy
	Protected TierPolicy // profile
	Public    TierPolicy // health
	Global    TierPolicy

	// SweepInterval is how often the in-memory counter store evicts idle
	// windows. Ignored when a custom counter store is supplied.
	SweepInterval time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds events instead of blocking flows when the buffer is
	// full; drops are counted and visible via [Engine.AuditDropped].
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults: 2h access tokens, 30d
// refresh tokens, and the standard tier table (auth 5/min, refresh 10/min,
// protected 100/min, public 200/min, global 1000/hour). The signing secret
// has no default and must be set by the caller.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  2 * time.Hour,
			RefreshTTL: 30 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   6,
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			Auth:          TierPolicy{Name: "auth", Limit: 5, Window: time.Minute},
			Refresh:       TierPolicy{Name: "refresh", Limit: 10, Window: time.Minute},
			Protected:     TierPolicy{Name: "protected", Limit: 100, Window: time.Minute},
			Public:        TierPolicy{Name: "public", Limit: 200, Window: time.Minute},
			Global:        TierPolicy{Name: "global", Limit: 1000, Window: time.Hour},
			SweepInterval: time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for construction-time errors.
func (c Config) Validate() error {
	if len(c.JWT.Secret) == 0 {
		return errors.New("JWT signing secret required")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	if c.Password.MinLength < 1 {
		return errors.New("password minimum length must be >= 1")
	}

	if c.RateLimit.Enabled {
		for _, tier := range []TierPolicy{
			c.RateLimit.Auth,
			c.RateLimit.Refresh,
			c.RateLimit.Protected,
			c.RateLimit.Public,
			c.RateLimit.Global,
		} {
			if tier.Name == "" {
				return errors.New("rate limit tier missing name")
			}
			if tier.Limit > 0 && tier.Window <= 0 {
				return errors.New("rate limit tier " + tier.Name + " has a limit but no window")
			}
		}
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	return out
}

func cloneBytes(in []byte) []byte {
	if in == nil {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
