package flows

import (
	"context"
	"time"
)

// GateUser is the flow-local user model. The root package converts to and
// from its public UserRecord at the engine boundary.
type GateUser struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	Active       bool
}

// AuditFunc emits one audit event. Metadata is built lazily so disabled
// auditing costs nothing.
type AuditFunc func(ctx context.Context, event string, success bool, userID string, err error, meta func() map[string]string)

func noMetric(int)                 {}
func noAudit(context.Context, string, bool, string, error, func() map[string]string) {}
func anonymousKey(context.Context) string { return "anonymous" }
