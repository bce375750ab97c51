package command

import (
	"context"
	"time"

	"github.com/unitrack/unitrack-api/internal/domain/profile"
	"github.com/unitrack/unitrack-api/internal/domain/shared"
	"github.com/unitrack/unitrack-api/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// SAVE PROFILE COMMAND
// Stores or replaces the authenticated user's academic profile. The
// simplified write model is validated and expanded into the stored document;
// unknown fields a client may have stored previously are replaced wholesale.
// ══════════════════════════════════════════════════════════════════════════════

// SaveProfileCommand contains the profile to store.
type SaveProfileCommand struct {
	// UserID identifies the profile owner.
	UserID string

	// Email is used to create a placeholder account for externally
	// authenticated users who never registered locally.
	Email string

	// Profile is the validated write model.
	Profile profile.Simplified
}

// Validate validates the command.
func (c SaveProfileCommand) Validate() error {
	if c.UserID == "" {
		return shared.ErrValidation
	}
	return c.Profile.Validate()
}

// SaveProfileResult contains the stored profile.
type SaveProfileResult struct {
	ProfileID string
	UserID    string
	Data      profile.Document
	Created   bool
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SaveProfileHandler handles the SaveProfileCommand.
type SaveProfileHandler struct {
	users    user.Repository
	profiles profile.Repository
}

// NewSaveProfileHandler creates the handler.
func NewSaveProfileHandler(users user.Repository, profiles profile.Repository) *SaveProfileHandler {
	return &SaveProfileHandler{users: users, profiles: profiles}
}

// Handle executes the command.
func (h *SaveProfileHandler) Handle(ctx context.Context, cmd SaveProfileCommand) (*SaveProfileResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.users.GetOrCreate(ctx, cmd.UserID, cmd.Email); err != nil {
		return nil, err
	}

	doc := cmd.Profile.ToDocument()

	var (
		stored  *profile.Stored
		created bool
		err     error
	)
	if _, err = h.profiles.GetByUserID(ctx, cmd.UserID); err == nil {
		stored, err = h.profiles.Update(ctx, cmd.UserID, doc)
	} else if shared.IsNotFound(err) {
		stored, err = h.profiles.Create(ctx, cmd.UserID, doc)
		created = true
	}
	if err != nil {
		return nil, err
	}

	return &SaveProfileResult{
		ProfileID: stored.ID,
		UserID:    stored.UserID,
		Data:      stored.Data,
		Created:   created,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}
