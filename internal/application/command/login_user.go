package command

import (
	"context"
	"errors"
	"strings"

	"github.com/unitrack/unitrack-api/internal/domain/shared"
	"github.com/unitrack/unitrack-api/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN USER COMMAND
// Verifies credentials and returns a fresh bearer token. Lookup failures and
// bad passwords collapse into one error so the response does not reveal
// which accounts exist.
// ══════════════════════════════════════════════════════════════════════════════

// LoginUserCommand contains the credentials to verify.
type LoginUserCommand struct {
	Email    string
	Password string
}

// Validate validates the command.
func (c LoginUserCommand) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("login_user: email is required")
	}
	if c.Password == "" {
		return errors.New("login_user: password is required")
	}
	return nil
}

// LoginUserResult contains the result of a successful login.
type LoginUserResult struct {
	UserID   string
	Email    string
	FullName string
	Token    string
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// LoginUserHandler handles the LoginUserCommand.
type LoginUserHandler struct {
	users  user.Repository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewLoginUserHandler creates the handler.
func NewLoginUserHandler(users user.Repository, hasher PasswordHasher, tokens TokenIssuer) *LoginUserHandler {
	return &LoginUserHandler{users: users, hasher: hasher, tokens: tokens}
}

// Handle executes the command.
func (h *LoginUserHandler) Handle(ctx context.Context, cmd LoginUserCommand) (*LoginUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	u, err := h.users.GetByEmail(ctx, cmd.Email)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrBadCredentials
		}
		return nil, err
	}

	if err := h.hasher.Verify(u.PasswordHash, cmd.Password); err != nil {
		return nil, shared.ErrBadCredentials
	}

	if !u.IsActive {
		return nil, shared.ErrUserInactive
	}

	token, err := h.tokens.IssueFor(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	return &LoginUserResult{
		UserID:   u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Token:    token,
	}, nil
}
