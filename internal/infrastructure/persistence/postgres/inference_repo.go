package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unitrack/unitrack-api/internal/domain/inference"
)

// ══════════════════════════════════════════════════════════════════════════════
// INFERENCE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// InferenceRepository implements inference.Repository for PostgreSQL.
type InferenceRepository struct {
	conn *Connection
}

// NewInferenceRepository creates a new InferenceRepository.
func NewInferenceRepository(conn *Connection) *InferenceRepository {
	return &InferenceRepository{conn: conn}
}

// Append stores a new inference record.
func (r *InferenceRepository) Append(ctx context.Context, rec *inference.Record) error {
	query := `
		INSERT INTO inferences (id, user_id, course_code, input, output, model_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	inputJSON, err := json.Marshal(orEmpty(rec.Input))
	if err != nil {
		return fmt.Errorf("failed to marshal inference input: %w", err)
	}
	outputJSON, err := json.Marshal(orEmpty(rec.Output))
	if err != nil {
		return fmt.Errorf("failed to marshal inference output: %w", err)
	}

	_, err = r.conn.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		rec.CourseCode,
		inputJSON,
		outputJSON,
		rec.Version,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append inference: %w", err)
	}

	return nil
}

// ListByUser returns a page of a user's inference records, newest first.
func (r *InferenceRepository) ListByUser(ctx context.Context, userID string, limit, offset int) (*inference.Page, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM inferences WHERE user_id = $1`
	if err := r.conn.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count inferences: %w", err)
	}

	query := `
		SELECT id, user_id, course_code, input, output, model_version, created_at
		FROM inferences
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.conn.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list inferences: %w", err)
	}
	defer rows.Close()

	items := make([]inference.Record, 0, limit)
	for rows.Next() {
		var (
			rec        inference.Record
			inputJSON  []byte
			outputJSON []byte
		)
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.CourseCode,
			&inputJSON,
			&outputJSON,
			&rec.Version,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inference: %w", err)
		}

		if err := json.Unmarshal(inputJSON, &rec.Input); err != nil {
			return nil, fmt.Errorf("failed to unmarshal inference input: %w", err)
		}
		if err := json.Unmarshal(outputJSON, &rec.Output); err != nil {
			return nil, fmt.Errorf("failed to unmarshal inference output: %w", err)
		}

		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &inference.Page{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
