package authgate

import "context"

type clientKeyContextKey struct{}

// WithClientKey attaches the caller's client identifier (usually the remote
// IP) to ctx. The engine keys its rate-limit windows on it and records it in
// audit events. Requests without a client key share the "anonymous" bucket.
func WithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, clientKeyContextKey{}, key)
}

func clientKeyFromContext(ctx context.Context) string {
	if ctx == nil {
		return "anonymous"
	}

	key, _ := ctx.Value(clientKeyContextKey{}).(string)
	if key == "" {
		return "anonymous"
	}

	return key
}
