package authgate

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"
)

type fakeStore struct {
	mu      sync.Mutex
	byEmail map[string]UserRecord
	byID    map[string]UserRecord
	nextID  int
	failAll bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byEmail: make(map[string]UserRecord),
		byID:    make(map[string]UserRecord),
	}
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return UserRecord{}, errors.New("backend down")
	}
	record, ok := s.byEmail[email]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return record, nil
}

func (s *fakeStore) GetUserByID(_ context.Context, id string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return UserRecord{}, errors.New("backend down")
	}
	record, ok := s.byID[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return record, nil
}

func (s *fakeStore) CreateUser(_ context.Context, in CreateUserInput) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return UserRecord{}, errors.New("backend down")
	}
	if _, exists := s.byEmail[in.Email]; exists {
		return UserRecord{}, ErrDuplicateUser
	}
	s.nextID++
	record := UserRecord{
		ID:           "u-" + strconv.Itoa(s.nextID),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		CreatedAt:    in.CreatedAt,
		Active:       true,
	}
	s.byEmail[in.Email] = record
	s.byID[record.ID] = record
	return record, nil
}

func (s *fakeStore) setActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := s.byID[id]
	record.Active = active
	s.byID[id] = record
	s.byEmail[record.Email] = record
}

func (s *fakeStore) setFailAll(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAll = fail
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0).UTC()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte("engine-test-secret-engine-test!!")
	cfg.RateLimit.Enabled = false
	cfg.Audit.Enabled = false
	// Cheap argon2 shape so the suite stays fast.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, store *fakeStore, clock *testClock) *Engine {
	t.Helper()
	engine, err := New().
		WithConfig(cfg).
		WithUserStore(store).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func TestRegisterLoginLifecycle(t *testing.T) {
	clock := newTestClock()
	store := newFakeStore()
	engine := newTestEngine(t, testConfig(), store, clock)
	ctx := context.Background()

	reg, err := engine.Register(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.UserID == "" {
		t.Fatal("expected user ID")
	}

	if _, err := engine.Register(ctx, "alice@example.com", "other-pass"); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("duplicate register err = %v, want ErrDuplicateUser", err)
	}

	res, err := engine.Login(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if res.AccessToken == res.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}
	if res.User.ID != reg.UserID {
		t.Fatalf("login user ID = %q, want %q", res.User.ID, reg.UserID)
	}

	userID, err := engine.Authenticate(res.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if userID != reg.UserID {
		t.Fatalf("Authenticate subject = %q, want %q", userID, reg.UserID)
	}

	profile, err := engine.Profile(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.Email != "alice@example.com" {
		t.Fatalf("profile email = %q", profile.Email)
	}
	if profile.PasswordHash == "hunter22" {
		t.Fatal("profile leaked the raw password")
	}
}

func TestLoginFailuresDoNotLeakExistence(t *testing.T) {
	clock := newTestClock()
	store := newFakeStore()
	engine := newTestEngine(t, testConfig(), store, clock)
	ctx := context.Background()

	if _, err := engine.Register(ctx, "bob@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, unknownErr := engine.Login(ctx, "nobody@example.com", "hunter22")
	_, wrongPassErr := engine.Login(ctx, "bob@example.com", "wrong-pass")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v, want ErrInvalidCredentials", unknownErr)
	}
	if !errors.Is(wrongPassErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", wrongPassErr)
	}
	if unknownErr.Error() != wrongPassErr.Error() {
		t.Fatalf("error text differs: %q vs %q", unknownErr, wrongPassErr)
	}
}

func TestRegisterValidation(t *testing.T) {
	clock := newTestClock()
	engine := newTestEngine(t, testConfig(), newFakeStore(), clock)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "hunter22"},
		{"no at sign", "alice.example.com", "hunter22"},
		{"no dot", "alice@examplecom", "hunter22"},
		{"empty password", "alice@example.com", ""},
		{"short password", "alice@example.com", "abc"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Register(ctx, tc.email, tc.password)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err = %T, want *ValidationError", err)
			}
			if vErr.Field == "" || vErr.Reason == "" {
				t.Fatalf("validation error missing detail: %+v", vErr)
			}
			if got := HTTPStatus(err); got != http.StatusBadRequest {
				t.Fatalf("HTTPStatus = %d, want 400", got)
			}
		})
	}
}

func TestEmailNormalization(t *testing.T) {
	clock := newTestClock()
	engine := newTestEngine(t, testConfig(), newFakeStore(), clock)
	ctx := context.Background()

	if _, err := engine.Register(ctx, "  Alice@Example.COM ", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Same address in a different case is the same account.
	if _, err := engine.Register(ctx, "alice@example.com", "hunter22"); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("case-variant register err = %v, want ErrDuplicateUser", err)
	}

	res, err := engine.Login(ctx, "ALICE@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login with case variant: %v", err)
	}
	if res.User.Email != "alice@example.com" {
		t.Fatalf("stored email = %q, want normalized form", res.User.Email)
	}
}

func TestAccessExpiryAndRefresh(t *testing.T) {
	clock := newTestClock()
	store := newFakeStore()
	engine := newTestEngine(t, testConfig(), store, clock)
	ctx := context.Background()

	if _, err := engine.Register(ctx, "carol@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, err := engine.Login(ctx, "carol@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Just inside the access lifetime.
	clock.Advance(2*time.Hour - time.Minute)
	if _, err := engine.Authenticate(res.AccessToken); err != nil {
		t.Fatalf("Authenticate before expiry: %v", err)
	}

	// Past it: expired is distinct from unauthorized so clients know a
	// refresh will work.
	clock.Advance(2 * time.Minute)
	_, err = engine.Authenticate(res.AccessToken)
	if !errors.Is(err, ErrAccessExpired) {
		t.Fatalf("expired Authenticate err = %v, want ErrAccessExpired", err)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatal("expired access token must not map to ErrUnauthorized")
	}
	if _, err := engine.Profile(ctx, res.AccessToken); !errors.Is(err, ErrAccessExpired) {
		t.Fatalf("expired Profile err = %v, want ErrAccessExpired", err)
	}

	newAccess, err := engine.Refresh(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := engine.Authenticate(newAccess); err != nil {
		t.Fatalf("Authenticate after refresh: %v", err)
	}

	// No rotation: the original refresh token keeps working.
	if _, err := engine.Refresh(ctx, res.RefreshToken); err != nil {
		t.Fatalf("second Refresh with same token: %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	clock := newTestClock()
	engine := newTestEngine(t, testConfig(), newFakeStore(), clock)
	ctx := context.Background()

	if _, err := engine.Register(ctx, "dave@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, err := engine.Login(ctx, "dave@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	clock.Advance(30*24*time.Hour + time.Minute)

	_, err = engine.Refresh(ctx, res.RefreshToken)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Refresh err = %v, want ErrSessionExpired", err)
	}
	if errors.Is(err, ErrAccessExpired) {
		t.Fatal("session expiry must not map to ErrAccessExpired")
	}
}

func TestTokenKindSeparation(t *testing.T) {
	clock := newTestClock()
	engine := newTestEngine(t, testConfig(), newFakeStore(), clock)
	ctx := context.Background()

	if _, err := engine.Register(ctx, "erin@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, err := engine.Login(ctx, "erin@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := engine.Authenticate(res.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Authenticate(refresh token) err = %v, want ErrUnauthorized", err)
	}
	if _, err := engine.Refresh(ctx, res.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Refresh(access token) err = %v, want ErrUnauthorized", err)
	}
}

func TestTamperedAndGarbageTokens(t *testing.T) {
	clock := newTestClock()
	engine := newTestEngine(t, testConfig(), newFakeStore(), clock)
	ctx := context.Background()

	if _, err := engine.Register(ctx, "frank@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, err := engine.Login(ctx, "frank@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	tampered := res.AccessToken[:len(res.AccessToken)-2] + "xx"
	for _, token := range []string{"", "garbage", "a.b.c", tampered} {
		if _, err := engine.Authenticate(token); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Authenticate(%q) err = %v, want ErrUnauthorized", token, err)
		}
	}
}

func TestInactiveAccount(t *testing.T) {
	clock := newTestClock()
	store := newFakeStore()
	engine := newTestEngine(t, testConfig(), store, clock)
	ctx := context.Background()

	reg, err := engine.Register(ctx, "grace@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, err := engine.Login(ctx, "grace@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	store.setActive(reg.UserID, false)

	if _, err := engine.Login(ctx, "grace@example.com", "hunter22"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("Login err = %v, want ErrAccountDisabled", err)
	}
	if _, err := engine.Profile(ctx, res.AccessToken); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("Profile err = %v, want ErrAccountDisabled", err)
	}
}

func TestDeletedSubjectIsUnauthorized(t *testing.T) {
	clock := newTestClock()
	store := newFakeStore()
	engine := newTestEngine(t, testConfig(), store, clock)
	ctx := context.Background()

	reg, err := engine.Register(ctx, "heidi@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, err := engine.Login(ctx, "heidi@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	store.mu.Lock()
	delete(store.byID, reg.UserID)
	delete(store.byEmail, "heidi@example.com")
	store.mu.Unlock()

	if _, err := engine.Profile(ctx, res.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Profile err = %v, want ErrUnauthorized", err)
	}
}

func TestAuthTierRateLimit(t *testing.T) {
	clock := newTestClock()
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Auth = TierPolicy{Name: "auth", Limit: 3, Window: time.Minute}
	engine := newTestEngine(t, cfg, newFakeStore(), clock)
	ctx := WithClientKey(context.Background(), "203.0.113.9")

	if _, err := engine.Register(ctx, "ivan@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := engine.Login(ctx, "ivan@example.com", "hunter22"); err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
	}

	// Fourth auth-tier hit inside the window.
	_, err := engine.Login(ctx, "ivan@example.com", "hunter22")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("err = %T, want *RateLimitError", err)
	}
	if rateErr.Tier != "auth" {
		t.Fatalf("Tier = %q, want auth", rateErr.Tier)
	}
	if rateErr.RetryAfter <= 0 || rateErr.RetryAfter > time.Minute {
		t.Fatalf("RetryAfter = %v, want within (0, 1m]", rateErr.RetryAfter)
	}
	if rateErr.RetryAfterSeconds() < 1 {
		t.Fatalf("RetryAfterSeconds = %d, want >= 1", rateErr.RetryAfterSeconds())
	}
	if got := HTTPStatus(err); got != http.StatusTooManyRequests {
		t.Fatalf("HTTPStatus = %d, want 429", got)
	}

	// A different client has its own budget.
	otherCtx := WithClientKey(context.Background(), "198.51.100.7")
	if _, err := engine.Login(otherCtx, "ivan@example.com", "hunter22"); err != nil {
		t.Fatalf("other client login: %v", err)
	}

	// Budget resets at the window boundary.
	clock.Advance(time.Minute + time.Second)
	if _, err := engine.Login(ctx, "ivan@example.com", "hunter22"); err != nil {
		t.Fatalf("login after window reset: %v", err)
	}
}

func TestGlobalCeiling(t *testing.T) {
	clock := newTestClock()
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Global = TierPolicy{Name: "global", Limit: 2, Window: time.Hour}
	engine := newTestEngine(t, cfg, newFakeStore(), clock)
	ctx := WithClientKey(context.Background(), "203.0.113.9")

	for i := 0; i < 2; i++ {
		if _, err := engine.Health(ctx); err != nil {
			t.Fatalf("health %d: %v", i, err)
		}
	}

	// The public tier still has room; the global ceiling denies anyway.
	_, err := engine.Health(ctx)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("err = %T, want *RateLimitError", err)
	}
	if rateErr.Tier != "global" {
		t.Fatalf("Tier = %q, want global", rateErr.Tier)
	}
	if rateErr.RetryAfter <= 0 || rateErr.RetryAfter > time.Hour {
		t.Fatalf("RetryAfter = %v, want within (0, 1h]", rateErr.RetryAfter)
	}

	// Register is gated by the same ceiling.
	if _, err := engine.Register(ctx, "judy@example.com", "hunter22"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Register err = %v, want ErrRateLimited", err)
	}
}

func TestStoreUnavailable(t *testing.T) {
	clock := newTestClock()
	store := newFakeStore()
	engine := newTestEngine(t, testConfig(), store, clock)
	ctx := context.Background()

	if _, err := engine.Register(ctx, "ken@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, err := engine.Login(ctx, "ken@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	store.setFailAll(true)

	if _, err := engine.Login(ctx, "ken@example.com", "hunter22"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Login err = %v, want ErrStoreUnavailable", err)
	}
	if _, err := engine.Register(ctx, "new@example.com", "hunter22"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Register err = %v, want ErrStoreUnavailable", err)
	}
	if _, err := engine.Profile(ctx, res.AccessToken); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Profile err = %v, want ErrStoreUnavailable", err)
	}
	if got := HTTPStatus(ErrStoreUnavailable); got != http.StatusInternalServerError {
		t.Fatalf("HTTPStatus = %d, want 500", got)
	}
}

func TestNilEngine(t *testing.T) {
	var engine *Engine
	ctx := context.Background()

	if _, err := engine.Register(ctx, "a@b.c", "hunter22"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Register err = %v, want ErrEngineNotReady", err)
	}
	if _, err := engine.Login(ctx, "a@b.c", "hunter22"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Login err = %v, want ErrEngineNotReady", err)
	}
	if _, err := engine.Refresh(ctx, "tok"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Refresh err = %v, want ErrEngineNotReady", err)
	}
	if _, err := engine.Authenticate("tok"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Authenticate err = %v, want ErrEngineNotReady", err)
	}
	if _, err := engine.Profile(ctx, "tok"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Profile err = %v, want ErrEngineNotReady", err)
	}
	if _, err := engine.Health(ctx); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Health err = %v, want ErrEngineNotReady", err)
	}
	engine.Close()
}

func TestBuilderRejectsBadConfig(t *testing.T) {
	store := newFakeStore()

	if _, err := New().WithUserStore(store).Build(); err == nil {
		t.Fatal("expected error for missing secret")
	}

	cfg := testConfig()
	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected error for missing user store")
	}

	cfg.JWT.RefreshTTL = time.Hour // below accessTTL
	if _, err := New().WithConfig(cfg).WithUserStore(store).Build(); err == nil {
		t.Fatal("expected error for refresh TTL below access TTL")
	}

	b := New().WithConfig(testConfig()).WithUserStore(store)
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error on second Build of the same builder")
	}
}

func TestMetricsLifecycle(t *testing.T) {
	clock := newTestClock()
	cfg := testConfig()
	cfg.Metrics.EnableLatencyHistograms = true
	engine := newTestEngine(t, cfg, newFakeStore(), clock)
	ctx := context.Background()

	if _, err := engine.Register(ctx, "leo@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, err := engine.Login(ctx, "leo@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := engine.Login(ctx, "leo@example.com", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}
	if _, err := engine.Authenticate(res.AccessToken); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricRegisterSuccess] != 1 {
		t.Fatalf("register success = %d, want 1", snap.Counters[MetricRegisterSuccess])
	}
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("login success = %d, want 1", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLoginFailure] != 1 {
		t.Fatalf("login failure = %d, want 1", snap.Counters[MetricLoginFailure])
	}
	if snap.Counters[MetricAuthenticateSuccess] != 1 {
		t.Fatalf("authenticate success = %d, want 1", snap.Counters[MetricAuthenticateSuccess])
	}
	buckets := snap.Histograms[MetricAuthenticateLatency]
	var samples uint64
	for _, b := range buckets {
		samples += b
	}
	if samples != 1 {
		t.Fatalf("latency samples = %d, want 1", samples)
	}
}

func TestAuditEventsDelivered(t *testing.T) {
	clock := newTestClock()
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 64

	sink := NewChannelSink(64)
	store := newFakeStore()
	engine, err := New().
		WithConfig(cfg).
		WithUserStore(store).
		WithAuditSink(sink).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ctx := WithClientKey(context.Background(), "203.0.113.9")
	if _, err := engine.Register(ctx, "mia@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := engine.Login(ctx, "mia@example.com", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}

	// Close drains the dispatcher, so every emitted event is in the sink.
	engine.Close()

	events := make(map[string]AuditEvent)
	for {
		select {
		case ev := <-sink.Events():
			events[ev.EventType] = ev
			continue
		default:
		}
		break
	}

	reg, ok := events["register"]
	if !ok {
		t.Fatalf("missing register event, got %v", events)
	}
	if !reg.Success || reg.UserID == "" || reg.ClientKey != "203.0.113.9" {
		t.Fatalf("register event = %+v", reg)
	}
	fail, ok := events["login_failure"]
	if !ok {
		t.Fatalf("missing login_failure event, got %v", events)
	}
	if fail.Success || fail.Error == "" {
		t.Fatalf("login_failure event = %+v", fail)
	}
}
