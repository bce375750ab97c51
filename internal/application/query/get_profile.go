package query

import (
	"context"
	"errors"

	"github.com/unitrack/unitrack-api/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE QUERY
// Returns the caller's stored profile document.
// ══════════════════════════════════════════════════════════════════════════════

// GetProfileQuery contains the query parameters.
type GetProfileQuery struct {
	UserID string
}

// Validate validates the query.
func (q GetProfileQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_profile: user_id is required")
	}
	return nil
}

// GetProfileHandler handles the GetProfileQuery.
type GetProfileHandler struct {
	profiles profile.Repository
}

// NewGetProfileHandler creates the handler.
func NewGetProfileHandler(profiles profile.Repository) *GetProfileHandler {
	return &GetProfileHandler{profiles: profiles}
}

// Handle executes the query.
func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (*profile.Stored, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	return h.profiles.GetByUserID(ctx, q.UserID)
}
