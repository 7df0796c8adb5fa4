package domain

import (
	"time"
)

// Login providers recorded on a user.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// User represents an account that can sign in and keep query history.
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword returns true if the user can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
