package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gymtrack/gymtrack-api/internal/httputil"
	"github.com/gymtrack/gymtrack-api/internal/token"
	"github.com/gymtrack/gymtrack-api/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	// PrincipalContextKey holds the authenticated *user.User
	PrincipalContextKey ContextKey = "principal"
)

const bearerPrefix = "Bearer "

// Middleware is the authorization guard: it turns a bearer token into an
// authenticated principal and enforces caller-declared role gates. It holds
// no per-route policy; each route group declares its own requirement.
type Middleware struct {
	tokens token.Service
	users  UserStore
}

func NewMiddleware(tokens token.Service, users UserStore) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// RequireAuth validates the bearer token and resolves the principal.
// Missing or malformed headers fail before any token work; a token whose
// subject no longer exists does not authenticate.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			httputil.RespondError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.Verify(authHeader[len(bearerPrefix):])
		if err != nil {
			if errors.Is(err, token.ErrExpiredToken) {
				httputil.RespondError(w, "Token has expired", http.StatusUnauthorized)
				return
			}
			httputil.RespondError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		principal, err := m.users.GetByID(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				httputil.RespondError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			httputil.RespondError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		// The access token is stateless; deactivation takes effect here.
		if !principal.IsActive {
			httputil.RespondError(w, "Account disabled", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route group to the given roles. It must run after
// RequireAuth.
func (m *Middleware) RequireRole(roles ...user.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetUserFromContext(r.Context())
			if !ok {
				httputil.RespondError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			httputil.RespondError(w, "Forbidden", http.StatusForbidden)
		})
	}
}

// GetUserFromContext extracts the authenticated principal from the request context
func GetUserFromContext(ctx context.Context) (*user.User, bool) {
	principal, ok := ctx.Value(PrincipalContextKey).(*user.User)
	return principal, ok
}
