package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/aegis/pkg/cryptox"
	"github.com/aussiebroadwan/aegis/pkg/slogx"
)

// RequireBearerToken admits requests carrying "Authorization: Bearer <token>"
// and tags them with principal. An empty token disables the check.
func RequireBearerToken(token, principal string) Middleware {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			if !cryptox.TokensEqual(raw, token) {
				log.Warn("bearer token rejected", "path", r.URL.Path)
				writeBearerError(w, "invalid bearer token")
				return
			}

			ctx := contextWithPrincipal(r.Context(), principal)
			ctx = slogx.With(ctx, "principal", principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "unauthorized", desc)
}
