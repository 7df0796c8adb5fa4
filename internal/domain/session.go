package domain

import (
	"time"
)

// Session is a server-side login session referenced by a cookie.
type Session struct {
	Token     string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TTL returns the time until the session expires.
// Returns 0 if the session has already expired.
func (s *Session) TTL() time.Duration {
	ttl := time.Until(s.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}
