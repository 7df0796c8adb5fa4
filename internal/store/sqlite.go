package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/codexr/internal/domain"
	"github.com/ashureev/codexr/internal/shared"
	_ "modernc.org/sqlite"
)

const (
	writeAttempts  = 3
	writeBaseDelay = 100 * time.Millisecond
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		email TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		email TEXT NOT NULL REFERENCES users(email) ON DELETE CASCADE,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetUser retrieves a user by email.
func (s *SQLiteStore) GetUser(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT email, name, password_hash, provider, created_at, updated_at
		FROM users WHERE email = ?`

	var user domain.User
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.Email, &user.Name, &user.PasswordHash, &user.Provider, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)
	return &user, nil
}

// CreateUser inserts a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (email, name, password_hash, provider, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	err := shared.RetryOnConflict(ctx, writeAttempts, writeBaseDelay, "create user", func() error {
		_, err := s.db.ExecContext(ctx, query,
			user.Email, user.Name, user.PasswordHash, user.Provider,
			user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
		)
		return err
	})
	if shared.IsSQLiteUniqueError(err) {
		return ErrDuplicateUser
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpsertUser creates or updates a user record. An existing password hash is
// kept so that a password account can also sign in with Google.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (email, name, password_hash, provider, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(email) DO UPDATE SET
		name = excluded.name,
		updated_at = excluded.updated_at`

	err := shared.RetryOnConflict(ctx, writeAttempts, writeBaseDelay, "upsert user", func() error {
		_, err := s.db.ExecContext(ctx, query,
			user.Email, user.Name, user.PasswordHash, user.Provider,
			user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// CreateSession stores a new login session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	query := `INSERT INTO sessions (token, email, created_at, expires_at) VALUES (?, ?, ?, ?)`
	err := shared.RetryOnConflict(ctx, writeAttempts, writeBaseDelay, "create session", func() error {
		_, err := s.db.ExecContext(ctx, query,
			session.Token, session.Email, session.CreatedAt.Unix(), session.ExpiresAt.Unix())
		return err
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by token.
func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	query := `SELECT token, email, created_at, expires_at FROM sessions WHERE token = ?`

	var session domain.Session
	var createdAt, expiresAt int64
	err := s.db.QueryRowContext(ctx, query, token).Scan(&session.Token, &session.Email, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	session.CreatedAt = time.Unix(createdAt, 0)
	session.ExpiresAt = time.Unix(expiresAt, 0)
	return &session, nil
}

// DeleteSession removes a session.
func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	err := shared.RetryOnConflict(ctx, writeAttempts, writeBaseDelay, "delete session", func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions whose expiry is not after now.
func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
