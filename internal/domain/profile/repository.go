package profile

import "context"

// Repository defines the persistence contract for student profiles.
// Implementations live in the infrastructure layer.
type Repository interface {
	// GetByUserID returns the profile for a user, or shared.ErrProfileNotFound.
	GetByUserID(ctx context.Context, userID string) (*Stored, error)

	// Create stores a new profile document for a user.
	Create(ctx context.Context, userID string, data Document) (*Stored, error)

	// Update replaces the profile document for a user.
	Update(ctx context.Context, userID string, data Document) (*Stored, error)
}
