// Package auth implements signup, password and Google login, and login
// sessions on top of the credential store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashureev/codexr/internal/domain"
	"github.com/ashureev/codexr/internal/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Errors returned to users. Their messages are shown verbatim.
//
//nolint:staticcheck // capitalised user-facing messages.
var (
	ErrMissingFields     = errors.New("Email, name and password are required")
	ErrUserExists        = errors.New("User already exists")
	ErrUserNotFound      = errors.New("User not found")
	ErrIncorrectPassword = errors.New("Incorrect password")
	ErrSessionNotFound   = errors.New("session not found or expired")
)

// Service manages accounts and login sessions.
type Service struct {
	repo       store.Repository
	sessionTTL time.Duration
	now        func() time.Time
	cost       int
}

// NewService creates a Service. sessionTTL bounds each login session.
func NewService(repo store.Repository, sessionTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		sessionTTL: sessionTTL,
		now:        time.Now,
		cost:       bcrypt.DefaultCost,
	}
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a password user.
func (s *Service) Signup(ctx context.Context, email, name, password string) error {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" || password == "" {
		return ErrMissingFields
	}

	existing, err := s.repo.GetUser(ctx, email)
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if existing != nil {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	err = s.repo.CreateUser(ctx, &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Provider:     domain.ProviderPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, store.ErrDuplicateUser) {
		return ErrUserExists
	}
	return err
}

// Login checks a password and returns the user.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.HasPassword() {
		return nil, ErrIncorrectPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return user, nil
}

// LoginOAuth creates or refreshes a user verified by Google.
func (s *Service) LoginOAuth(ctx context.Context, email, name string) (*domain.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrMissingFields
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email
	}

	now := s.now()
	if err := s.repo.UpsertUser(ctx, &domain.User{
		Email:     email,
		Name:      name,
		Provider:  domain.ProviderGoogle,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CreateSession starts a login session for email.
func (s *Service) CreateSession(ctx context.Context, email string) (*domain.Session, error) {
	now := s.now()
	session := &domain.Session{
		Token:     uuid.NewString(),
		Email:     NormalizeEmail(email),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ResolveSession returns the user behind a session token.
func (s *Service) ResolveSession(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	if token == "" {
		return nil, nil, ErrSessionNotFound
	}
	session, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("look up session: %w", err)
	}
	if session == nil || session.Expired(s.now()) {
		return nil, nil, ErrSessionNotFound
	}

	user, err := s.repo.GetUser(ctx, session.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrSessionNotFound
	}
	return user, session, nil
}

// DeleteSession ends a login session.
func (s *Service) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, token)
}
