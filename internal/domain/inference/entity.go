// Package inference contains the audit record written for every prediction.
// Records are append-only: created once per request, never mutated.
package inference

import (
	"context"
	"time"
)

// Record is one stored prediction, with the full input and output payloads
// for later inspection.
type Record struct {
	ID         string
	UserID     string
	CourseCode string
	Input      map[string]any
	Output     map[string]any
	Version    string
	CreatedAt  time.Time
}

// Page is one page of a user's inference history, newest first.
type Page struct {
	Items  []Record
	Total  int
	Limit  int
	Offset int
}

// Repository defines the persistence contract for inference records.
// Appending is best-effort from the caller's point of view: a failed write
// must never fail the prediction it records.
type Repository interface {
	// Append stores a new record.
	Append(ctx context.Context, rec *Record) error

	// ListByUser returns a page of records for a user, newest first,
	// together with the total count.
	ListByUser(ctx context.Context, userID string, limit, offset int) (*Page, error)
}
