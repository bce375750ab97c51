// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"time"

	"github.com/unitrack/unitrack-api/internal/domain/shared"
	"github.com/unitrack/unitrack-api/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER COMMAND
// Creates an account with locally stored credentials and returns a bearer
// token so the client can call authenticated endpoints immediately.
// ══════════════════════════════════════════════════════════════════════════════

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// TokenIssuer issues bearer tokens for authenticated users.
type TokenIssuer interface {
	IssueFor(userID, email string) (string, error)
}

// RegisterUserCommand contains the data to create an account.
type RegisterUserCommand struct {
	// Email is the account email, unique across all accounts.
	Email string

	// Password is the plaintext password, at least 8 characters.
	Password string

	// FullName is the display name (optional).
	FullName string
}

// Validate validates the command.
func (c RegisterUserCommand) Validate() error {
	reg := user.Registration{Email: c.Email, Password: c.Password, FullName: c.FullName}
	return reg.Validate()
}

// RegisterUserResult contains the result of the registration.
type RegisterUserResult struct {
	UserID    string
	Email     string
	FullName  string
	Token     string
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserHandler handles the RegisterUserCommand.
type RegisterUserHandler struct {
	users  user.Repository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewRegisterUserHandler creates the handler.
func NewRegisterUserHandler(users user.Repository, hasher PasswordHasher, tokens TokenIssuer) *RegisterUserHandler {
	return &RegisterUserHandler{users: users, hasher: hasher, tokens: tokens}
}

// Handle executes the command.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.users.GetByEmail(ctx, cmd.Email); err == nil {
		return nil, shared.ErrEmailTaken
	} else if !shared.IsNotFound(err) {
		return nil, err
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Email:        cmd.Email,
		PasswordHash: hash,
		FullName:     cmd.FullName,
		IsActive:     true,
	}
	if err := h.users.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := h.tokens.IssueFor(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	return &RegisterUserResult{
		UserID:    u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Token:     token,
		CreatedAt: u.CreatedAt,
	}, nil
}
