package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/unitrack/unitrack-api/internal/domain/course"
	"github.com/unitrack/unitrack-api/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

const courseColumns = `code, name, semester, type, hours, credits, prerequisites, family, level`

// GetByCode returns a catalog entry by course code.
func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*course.Entry, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE code = $1`
	return r.scanEntry(r.conn.QueryRow(ctx, query, course.Normalize(code)))
}

// GetOrCreate returns the entry for a code, inserting a minimal placeholder
// (name = code, no prerequisites) when the catalog does not know it yet.
// Predictions must not fail just because a course was never loaded.
func (r *CourseRepository) GetOrCreate(ctx context.Context, code string) (*course.Entry, error) {
	code = course.Normalize(code)

	existing, err := r.GetByCode(ctx, code)
	if err == nil {
		return existing, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	entry := &course.Entry{
		Code:          code,
		Name:          code,
		Prerequisites: []string{},
	}
	if err := r.Upsert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Upsert inserts or replaces a catalog entry.
func (r *CourseRepository) Upsert(ctx context.Context, e *course.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO courses (code, name, semester, type, hours, credits, prerequisites, family, level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			semester = EXCLUDED.semester,
			type = EXCLUDED.type,
			hours = EXCLUDED.hours,
			credits = EXCLUDED.credits,
			prerequisites = EXCLUDED.prerequisites,
			family = EXCLUDED.family,
			level = EXCLUDED.level
	`

	prereqs := e.Prerequisites
	if prereqs == nil {
		prereqs = []string{}
	}
	prereqJSON, err := json.Marshal(prereqs)
	if err != nil {
		return fmt.Errorf("failed to marshal prerequisites: %w", err)
	}

	_, err = r.conn.Exec(ctx, query,
		course.Normalize(e.Code),
		e.Name,
		e.Semester,
		e.Type,
		e.Hours,
		e.Credits,
		prereqJSON,
		e.Family,
		e.Level,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert course: %w", err)
	}

	return nil
}

// List returns the whole catalog ordered by semester (NULLs first), then by
// course code.
func (r *CourseRepository) List(ctx context.Context) ([]course.Entry, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		ORDER BY semester ASC NULLS FIRST, code ASC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var entries []course.Entry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

func (r *CourseRepository) scanEntry(row interface{ Scan(dest ...any) error }) (*course.Entry, error) {
	var e course.Entry
	var prereqJSON []byte

	err := row.Scan(
		&e.Code,
		&e.Name,
		&e.Semester,
		&e.Type,
		&e.Hours,
		&e.Credits,
		&prereqJSON,
		&e.Family,
		&e.Level,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}

	if len(prereqJSON) > 0 {
		if err := json.Unmarshal(prereqJSON, &e.Prerequisites); err != nil {
			return nil, fmt.Errorf("failed to unmarshal prerequisites: %w", err)
		}
	}
	if e.Prerequisites == nil {
		e.Prerequisites = []string{}
	}

	return &e, nil
}
