// Package auth resolves API tokens to user ids and guards HTTP handlers.
// Identity itself is issued elsewhere; lexdash only stores token hashes.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	applog "lexdash/internal/log"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

// CookieName carries the token for browser sessions.
const CookieName = "lexdash_token"

type userKey struct{}

// UserResolver resolves a user ID from a raw token.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (string, error)
}

// UserFromContext returns the authenticated user ID, if present.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userKey{}).(string)
	return userID, ok && userID != ""
}

// WithUser stores userID in ctx.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// Middleware enforces token authentication. Requests without a valid token
// are passed to unauthorized, or answered with a bare 401 when it is nil.
func Middleware(resolver UserResolver, unauthorized http.Handler) func(http.Handler) http.Handler {
	if unauthorized == nil {
		unauthorized = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				unauthorized.ServeHTTP(w, r)
				return
			}

			userID, err := resolver.ResolveUser(r.Context(), token)
			if err != nil || userID == "" {
				applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).
					WarnContext(r.Context(), "Rejected token", applog.FieldError, err)
				unauthorized.ServeHTTP(w, r)
				return
			}

			ctx := WithUser(r.Context(), userID)
			ctx = applog.WithLogger(ctx, applog.FromContext(ctx).With(applog.FieldUserID, userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
