package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind tags a token as access or refresh. Kind separation is enforced at
// decode call sites: a refresh token must never be accepted where an access
// token is required and vice versa.
type Kind string

const (
	// KindAccess marks short-lived tokens authorizing API calls.
	KindAccess Kind = "access"
	// KindRefresh marks long-lived tokens authorizing access re-issuance only.
	KindRefresh Kind = "refresh"
)

var (
	// ErrTokenMalformed reports structurally invalid token input.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrSignatureInvalid reports a MAC mismatch.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenExpired reports a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Config carries the process secret, per-kind lifetimes, and the clock.
// Codec instances treat it as immutable after [NewCodec].
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	Leeway     time.Duration
	Now        func() time.Time
}

// Claims is the decoded token payload.
type Claims struct {
	Subject   string
	Kind      Kind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type wireClaims struct {
	Kind string `json:"knd"`
	jwt.RegisteredClaims
}

// Codec encodes and decodes signed tokens. Safe for concurrent use.
type Codec struct {
	config Config
	now    func() time.Time
}

// NewCodec validates cfg and returns a ready codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("signing secret required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		return nil, errors.New("refresh TTL must exceed access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Codec{config: cfg, now: now}, nil
}

// Encode mints a signed token of the given kind for subject. The expiry is
// now plus the kind's configured TTL.
func (c *Codec) Encode(subject string, kind Kind) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}

	var ttl time.Duration
	switch kind {
	case KindAccess:
		ttl = c.config.AccessTTL
	case KindRefresh:
		ttl = c.config.RefreshTTL
	default:
		return "", fmt.Errorf("unknown token kind %q", kind)
	}

	// NumericDate serializes whole seconds; truncate so decode round-trips.
	issued := c.now().Truncate(time.Second)

	claims := wireClaims{
		Kind: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
		},
	}
	if c.config.Issuer != "" {
		claims.Issuer = c.config.Issuer
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.Secret)
}

// IssuePair mints a matched access and refresh token for subject.
func (c *Codec) IssuePair(subject string) (access, refresh string, err error) {
	access, err = c.Encode(subject, KindAccess)
	if err != nil {
		return "", "", err
	}
	refresh, err = c.Encode(subject, KindRefresh)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Decode verifies the token and returns its claims. Failures are reported
// through the three sentinel errors; see the package documentation.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &wireClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.config.Secret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	wire, ok := token.Claims.(*wireClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid claims", ErrTokenMalformed)
	}
	if wire.Subject == "" || wire.ExpiresAt == nil || wire.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing claims", ErrTokenMalformed)
	}

	kind := Kind(wire.Kind)
	if kind != KindAccess && kind != KindRefresh {
		return nil, fmt.Errorf("%w: unknown kind", ErrTokenMalformed)
	}

	return &Claims{
		Subject:   wire.Subject,
		Kind:      kind,
		IssuedAt:  wire.IssuedAt.Time,
		ExpiresAt: wire.ExpiresAt.Time,
	}, nil
}

// classifyParseError folds golang-jwt's joined errors into the codec's
// three-way split. The upstream parser rejects bad signatures before it
// validates claims, so a wrong-secret token maps to ErrSignatureInvalid even
// when it is also past expiry.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
