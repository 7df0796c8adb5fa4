// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ashureev/codexr/internal/domain"
)

// ErrDuplicateUser is returned by CreateUser when the email is taken.
var ErrDuplicateUser = errors.New("user already exists")

// Repository defines the interface for persisting users and login sessions.
type Repository interface {
	// GetUser retrieves a user by email. Returns nil, nil if not found.
	GetUser(ctx context.Context, email string) (*domain.User, error)

	// CreateUser inserts a new user. Returns ErrDuplicateUser if the email exists.
	CreateUser(ctx context.Context, user *domain.User) error

	// UpsertUser creates a user or refreshes its name and provider.
	UpsertUser(ctx context.Context, user *domain.User) error

	// CreateSession stores a new login session.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by token. Returns nil, nil if not found.
	GetSession(ctx context.Context, token string) (*domain.Session, error)

	// DeleteSession removes a session. Deleting an unknown token is not an error.
	DeleteSession(ctx context.Context, token string) error

	// DeleteExpiredSessions removes sessions that expired before now.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
