package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/YassineIdiri/expense-tracker/pkg/slogx"
)

// Identity is the principal extracted from a verified access token.
type Identity struct {
	UserID string
	Email  string
}

// AccessVerifier validates a bearer access token and returns the principal.
type AccessVerifier interface {
	VerifyAccessToken(token string) (Identity, error)
}

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// AuthnMiddleware verifies the Authorization bearer token and injects the
// principal into the request context.
func AuthnMiddleware(v AccessVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			ident, err := v.VerifyAccessToken(raw)
			if err != nil {
				log.Warn("access token verification failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyIdentity, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the authenticated principal, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return ident, ok
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
