package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unitrack/unitrack-api/internal/domain/profile"
	"github.com/unitrack/unitrack-api/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProfileRepository implements profile.Repository for PostgreSQL. The
// profile document is stored as a single JSONB column so that callers can
// persist arbitrary academic fields without schema churn.
type ProfileRepository struct {
	conn *Connection
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

// GetByUserID returns the stored profile for a user.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*profile.Stored, error) {
	query := `
		SELECT id, user_id, data, created_at, updated_at
		FROM student_profiles
		WHERE user_id = $1
	`

	var (
		stored   profile.Stored
		dataJSON []byte
	)
	err := r.conn.QueryRow(ctx, query, userID).Scan(
		&stored.ID,
		&stored.UserID,
		&dataJSON,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}

	if err := json.Unmarshal(dataJSON, &stored.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile data: %w", err)
	}

	return &stored, nil
}

// Create stores a new profile document for a user.
func (r *ProfileRepository) Create(ctx context.Context, userID string, data profile.Document) (*profile.Stored, error) {
	query := `
		INSERT INTO student_profiles (id, user_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
	`

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile data: %w", err)
	}

	stored := &profile.Stored{
		ID:        uuid.NewString(),
		UserID:    userID,
		Data:      data.Clone(),
		CreatedAt: time.Now().UTC(),
	}
	stored.UpdatedAt = stored.CreatedAt

	_, err = r.conn.Exec(ctx, query, stored.ID, userID, dataJSON, stored.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			// One profile per user; a concurrent create becomes an update.
			return r.Update(ctx, userID, data)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return stored, nil
}

// Update replaces the profile document for a user.
func (r *ProfileRepository) Update(ctx context.Context, userID string, data profile.Document) (*profile.Stored, error) {
	query := `
		UPDATE student_profiles
		SET data = $1, updated_at = $2
		WHERE user_id = $3
		RETURNING id, created_at
	`

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile data: %w", err)
	}

	stored := &profile.Stored{
		UserID:    userID,
		Data:      data.Clone(),
		UpdatedAt: time.Now().UTC(),
	}

	err = r.conn.QueryRow(ctx, query, dataJSON, stored.UpdatedAt, userID).
		Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return stored, nil
}
