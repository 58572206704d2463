package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ncastellan/authgate"
)

const defaultKeyPrefix = "ag"

// Store is a Redis-backed user store. Safe for concurrent use.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// Config carries store construction options.
type Config struct {
	// KeyPrefix namespaces all keys; defaults to "ag".
	KeyPrefix string
}

// New creates a Store on the given client. The client's lifecycle belongs to
// the caller.
func New(client redis.UniversalClient, cfg Config) *Store {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) userKey(id string) string {
	return s.prefix + ":user:" + id
}

func (s *Store) emailKey(email string) string {
	return s.prefix + ":email:" + email
}

// CreateUser inserts a new account. The email index is claimed with SetNX
// before the record is written, so a lost race returns
// [authgate.ErrDuplicateUser] without a partial record.
func (s *Store) CreateUser(ctx context.Context, in authgate.CreateUserInput) (authgate.UserRecord, error) {
	id := uuid.NewString()

	claimed, err := s.client.SetNX(ctx, s.emailKey(in.Email), id, 0).Result()
	if err != nil {
		return authgate.UserRecord{}, storeErr("claim email index", err)
	}
	if !claimed {
		return authgate.UserRecord{}, authgate.ErrDuplicateUser
	}

	record := authgate.UserRecord{
		ID:           id,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		CreatedAt:    in.CreatedAt,
		Active:       true,
	}

	err = s.client.HSet(ctx, s.userKey(id), map[string]any{
		"email":         record.Email,
		"password_hash": record.PasswordHash,
		"created_at":    record.CreatedAt.UnixNano(),
		"active":        boolField(record.Active),
	}).Err()
	if err != nil {
		// Roll back the index claim so the email is not orphaned.
		s.client.Del(ctx, s.emailKey(in.Email))
		return authgate.UserRecord{}, storeErr("write user record", err)
	}

	return record, nil
}

// GetUserByEmail resolves the email index then loads the record.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (authgate.UserRecord, error) {
	id, err := s.client.Get(ctx, s.emailKey(email)).Result()
	if err == redis.Nil {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	if err != nil {
		return authgate.UserRecord{}, storeErr("resolve email index", err)
	}
	return s.GetUserByID(ctx, id)
}

// GetUserByID loads the account hash.
func (s *Store) GetUserByID(ctx context.Context, id string) (authgate.UserRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.userKey(id)).Result()
	if err != nil {
		return authgate.UserRecord{}, storeErr("load user record", err)
	}
	if len(fields) == 0 {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	return decodeRecord(id, fields)
}

// SetActive flips the account's active flag, e.g. for an admin deactivation.
func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	exists, err := s.client.Exists(ctx, s.userKey(id)).Result()
	if err != nil {
		return storeErr("check user record", err)
	}
	if exists == 0 {
		return authgate.ErrUserNotFound
	}
	if err := s.client.HSet(ctx, s.userKey(id), "active", boolField(active)).Err(); err != nil {
		return storeErr("update active flag", err)
	}
	return nil
}

func decodeRecord(id string, fields map[string]string) (authgate.UserRecord, error) {
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return authgate.UserRecord{}, storeErr("decode created_at", err)
	}
	return authgate.UserRecord{
		ID:           id,
		Email:        fields["email"],
		PasswordHash: fields["password_hash"],
		CreatedAt:    time.Unix(0, createdAt).UTC(),
		Active:       fields["active"] == "1",
	}, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func storeErr(op string, err error) error {
	return fmt.Errorf("redisstore: %s: %w: %v", op, authgate.ErrStoreUnavailable, err)
}
