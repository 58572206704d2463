package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ncastellan/authgate"
)

type userIDContextKey struct{}

// UserIDFromContext returns the authenticated user ID injected by [Guard].
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey{}).(string)
	return id, ok
}

// Guard returns middleware that requires a valid bearer access token. On
// success the subject's user ID is available to the wrapped handler via
// [UserIDFromContext]. An expired token is rejected with the body
// "access token expired" so clients can distinguish it from a bad token and
// attempt a refresh.
func Guard(engine *authgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			userID, err := engine.Authenticate(token)
			if err != nil {
				if errors.Is(err, authgate.ErrAccessExpired) {
					http.Error(w, "access token expired", authgate.HTTPStatus(err))
					return
				}
				http.Error(w, "unauthorized", authgate.HTTPStatus(err))
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
