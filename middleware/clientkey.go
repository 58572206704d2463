package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/ncastellan/authgate"
)

// ClientKey returns middleware that derives the per-client rate-limit key
// and attaches it to the request context for the Engine. Resolution order:
// first address in X-Forwarded-For, then X-Real-IP, then the connection's
// remote address. Only use the header paths behind a trusted proxy; both
// headers are client-forgeable on a directly exposed listener.
func ClientKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := authgate.WithClientKey(r.Context(), remoteKey(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func remoteKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the originating client.
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		if key := strings.TrimSpace(fwd); key != "" {
			return key
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
