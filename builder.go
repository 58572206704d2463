package authgate

import (
	"errors"
	"time"

	"github.com/ncastellan/authgate/jwt"
	"github.com/ncastellan/authgate/password"
	"github.com/ncastellan/authgate/ratelimit"
)

// Builder assembles an [Engine]. Construction is allocation-only until
// [Builder.Build]; a builder is single-use.
type Builder struct {
	config Config

	userStore    UserStore
	hasher       PasswordHasher
	auditSink    AuditSink
	counterStore ratelimit.CounterStore
	clock        func() time.Time

	built bool
}

// New creates a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithUserStore sets the credential store adapter. Required.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.userStore = store
	return b
}

// WithPasswordHasher overrides the default argon2id hasher, e.g. for stores
// holding bcrypt hashes.
func (b *Builder) WithPasswordHasher(h PasswordHasher) *Builder {
	b.hasher = h
	return b
}

// WithAuditSink sets the destination for audit events. Ignored when auditing
// is disabled in the config.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithCounterStore overrides the in-memory rate-limit counter backend, e.g.
// with a distributed implementation. The engine does not Close custom stores.
func (b *Builder) WithCounterStore(store ratelimit.CounterStore) *Builder {
	b.counterStore = store
	return b
}

// WithClock overrides the engine clock for deterministic expiry and window
// tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration, wires the codec, hasher, limiter,
// metrics, and audit dispatcher, and returns the ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.userStore == nil {
		return nil, errors.New("user store required")
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	hasher := b.hasher
	if hasher == nil {
		ph, err := password.NewArgon2(password.Config{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		})
		if err != nil {
			return nil, err
		}
		hasher = ph
	}

	codec, err := jwt.NewCodec(jwt.Config{
		Secret:     cloneBytes(cfg.JWT.Secret),
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
		Issuer:     cfg.JWT.Issuer,
		Leeway:     cfg.JWT.Leeway,
		Now:        clock,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:    cfg,
		userStore: b.userStore,
		hasher:    hasher,
		codec:     codec,
		clock:     clock,
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:   NewMetrics(cfg.Metrics),
	}

	if cfg.RateLimit.Enabled {
		store := b.counterStore
		if store == nil {
			mem := ratelimit.NewMemoryStore(ratelimit.MemoryStoreConfig{
				SweepInterval: cfg.RateLimit.SweepInterval,
				Now:           clock,
			})
			store = mem
			engine.ownedCounterStore = mem
		}
		engine.limiter = ratelimit.New(store, ratelimit.Config{Now: clock})
	}

	b.built = true

	return engine, nil
}
