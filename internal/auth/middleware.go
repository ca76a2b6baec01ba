package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

// Middleware wires bearer-token authentication and scope checks for HTTP
// handlers.
type Middleware struct {
	Issuer      *TokenIssuer
	Revocations *RevocationList
	Logger      *slog.Logger
}

// RequireAuth validates the bearer token and stores its claims in the
// request context. Signature, expiry and revocation failures all map to 401.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		claims, err := m.Issuer.ParseAccess(raw)
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		revoked, err := m.Revocations.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("revocation lookup", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		if revoked {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// RequireScopes permits the request when the token holds at least one of the
// required scopes. Must run after RequireAuth.
func (m Middleware) RequireScopes(scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !HasAnyScope(claims.Scopes, scopes) {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HasAnyScope reports whether granted and required intersect. An empty
// required set permits everything.
func HasAnyScope(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, s := range granted {
		set[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
