package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dropwishes/api/internal/api/response"
	"github.com/dropwishes/api/internal/core"
	"github.com/dropwishes/api/internal/model"
)

type contextKey string

const (
	userKey  contextKey = "current_user"
	tokenKey contextKey = "token_key"
)

// TokenFromRequest extracts the opaque token key from the request. The
// "Authorization: Token <key>" header wins; the auth_token cookie is a
// fallback for browser clients.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if key, ok := strings.CutPrefix(h, "Token "); ok {
			return strings.TrimSpace(key)
		}
		return ""
	}
	if c, err := r.Cookie("auth_token"); err == nil {
		return c.Value
	}
	return ""
}

// Auth returns a middleware that resolves the presented token to an active
// user and stores both on the request context.
func Auth(auth *core.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := TokenFromRequest(r)
			if key == "" {
				response.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			user, err := auth.UserForToken(r.Context(), key)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTokenKey(WithUser(r.Context(), user), key)))
		})
	}
}

// RequireStaff rejects non-staff users. It must run inside Auth.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil || !user.IsStaff {
			response.WriteError(w, http.StatusForbidden, "staff access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func WithTokenKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, tokenKey, key)
}

// CurrentUser returns the authenticated user, or nil outside Auth.
func CurrentUser(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey).(*model.User)
	return u
}

// TokenKey returns the raw token key the request authenticated with.
func TokenKey(ctx context.Context) string {
	key, _ := ctx.Value(tokenKey).(string)
	return key
}
