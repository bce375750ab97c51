package query

import (
	"context"

	"github.com/unitrack/unitrack-api/internal/domain/course"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST COURSES QUERY
// Returns the whole course catalog, ordered by semester then code.
// ══════════════════════════════════════════════════════════════════════════════

// ListCoursesResult contains the full catalog.
type ListCoursesResult struct {
	Courses []course.Entry
	Total   int
}

// ListCoursesHandler handles the catalog listing.
type ListCoursesHandler struct {
	courses course.Repository
	cache   CatalogCache
}

// NewListCoursesHandler creates the handler. cache may be nil.
func NewListCoursesHandler(courses course.Repository, cache CatalogCache) *ListCoursesHandler {
	return &ListCoursesHandler{courses: courses, cache: cache}
}

// Handle executes the query.
func (h *ListCoursesHandler) Handle(ctx context.Context) (*ListCoursesResult, error) {
	entries, err := loadCatalog(ctx, h.courses, h.cache)
	if err != nil {
		return nil, err
	}

	return &ListCoursesResult{Courses: entries, Total: len(entries)}, nil
}
