// Package user contains the account domain model. Accounts exist so that
// profiles and inference history can be attached to an authenticated
// identity; the verification mechanism itself lives in infrastructure.
package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Domain errors for the user package.
var (
	ErrEmptyEmail    = errors.New("user: email cannot be empty")
	ErrEmptyPassword = errors.New("user: password cannot be empty")
	ErrShortPassword = errors.New("user: password must be at least 8 characters")
)

// User is an account that owns a student profile and inference history.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Registration is the validated input for creating an account.
type Registration struct {
	Email    string
	Password string
	FullName string
}

// Validate checks registration input.
func (r *Registration) Validate() error {
	if strings.TrimSpace(r.Email) == "" || !strings.Contains(r.Email, "@") {
		return ErrEmptyEmail
	}
	if r.Password == "" {
		return ErrEmptyPassword
	}
	if len(r.Password) < 8 {
		return ErrShortPassword
	}
	return nil
}

// Repository defines the persistence contract for accounts.
type Repository interface {
	// GetByID returns an account, or shared.ErrUserNotFound.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail returns an account by email, or shared.ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Create stores a new account.
	Create(ctx context.Context, u *User) error

	// GetOrCreate looks up an account by ID, creating a placeholder with
	// the given email when it does not exist. Used by externally
	// authenticated flows where the identity provider owns credentials.
	GetOrCreate(ctx context.Context, id, email string) (*User, error)
}
