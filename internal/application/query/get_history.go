package query

import (
	"context"
	"errors"

	"github.com/unitrack/unitrack-api/internal/domain/inference"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET HISTORY QUERY
// Returns a page of the caller's inference records, newest first.
// ══════════════════════════════════════════════════════════════════════════════

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// GetHistoryQuery contains the query parameters.
type GetHistoryQuery struct {
	UserID string
	Limit  int
	Offset int
}

// Validate validates the query and normalizes paging.
func (q *GetHistoryQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_history: user_id is required")
	}
	if q.Limit <= 0 {
		q.Limit = defaultHistoryLimit
	}
	if q.Limit > maxHistoryLimit {
		q.Limit = maxHistoryLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return nil
}

// GetHistoryHandler handles the GetHistoryQuery.
type GetHistoryHandler struct {
	inferences inference.Repository
}

// NewGetHistoryHandler creates the handler.
func NewGetHistoryHandler(inferences inference.Repository) *GetHistoryHandler {
	return &GetHistoryHandler{inferences: inferences}
}

// Handle executes the query.
func (h *GetHistoryHandler) Handle(ctx context.Context, q GetHistoryQuery) (*inference.Page, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	return h.inferences.ListByUser(ctx, q.UserID, q.Limit, q.Offset)
}
