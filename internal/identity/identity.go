// Package identity resolves the signed-in user from the session cookie.
package identity

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/ashureev/codexr/internal/domain"
)

// SessionCookieName holds the opaque login session token.
const SessionCookieName = "codexr_session"

type contextKey int

const (
	userKey contextKey = iota
	sessionTokenKey
)

// SessionResolver looks up the user behind a session token.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*domain.User, *domain.Session, error)
}

// UserFromContext returns the signed-in user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *domain.User {
	if v, ok := ctx.Value(userKey).(*domain.User); ok {
		return v
	}
	return nil
}

// SessionTokenFromContext returns the session token of the request, if any.
func SessionTokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionTokenKey).(string); ok {
		return v
	}
	return ""
}

// WithUser returns a context carrying user. Used by tests and the CLI.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// SetSessionCookie writes the session cookie for a new login.
func SetSessionCookie(w http.ResponseWriter, session *domain.Session, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// Middleware attaches the signed-in user to the request context. Requests
// without a valid session pass through anonymously.
func Middleware(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionTokenKey, c.Value)
			if user, _, err := resolver.ResolveSession(r.Context(), c.Value); err == nil && user != nil {
				ctx = context.WithValue(ctx, userKey, user)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Please log in first."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IPFromRequest returns a normalized remote IP for request logging.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
