package authgate

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/ncastellan/authgate/internal/audit"
)

// UserRecord is the account record exchanged with [UserStore]. The engine
// reads ID, Email, PasswordHash, and Active; it never mutates a record.
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	Active       bool
}

// CreateUserInput is the input for [UserStore.CreateUser]. The email arrives
// already case-normalized and the password already hashed.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore is the interface callers implement to integrate authgate with
// their credential store. Implementations must return [ErrUserNotFound] for
// missing records and [ErrDuplicateUser] for email collisions; any other
// error is treated as a backend outage ([ErrStoreUnavailable]).
//
// The engine calls the store only after rate limiting has completed, so
// implementations may block on I/O freely.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	GetUserByID(ctx context.Context, id string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
}

// PasswordHasher is the one-way hashing primitive used for credential
// storage and verification. The default is argon2id from the password
// package; [Builder.WithPasswordHasher] swaps it (e.g. for bcrypt stores).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// RegisterResult is returned by [Engine.Register].
type RegisterResult struct {
	UserID string
}

// LoginResult is returned by [Engine.Login]. Both tokens are signed with the
// process secret; the access token expires first.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         UserRecord
}

// HealthStatus is returned by [Engine.Health].
type HealthStatus struct {
	Status    string
	CheckedAt time.Time
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
