package query

import (
	"context"
	"errors"

	"github.com/unitrack/unitrack-api/internal/domain/course"
	"github.com/unitrack/unitrack-api/internal/domain/profile"
	"github.com/unitrack/unitrack-api/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ELIGIBLE COURSES QUERY
// Returns the courses the student may enroll in next, given their declared
// progress and passed coursework. A student without a stored profile still
// gets an answer: only prerequisite-free courses inside the default window.
// ══════════════════════════════════════════════════════════════════════════════

// GetEligibleCoursesQuery contains the query parameters.
type GetEligibleCoursesQuery struct {
	// UserID is the authenticated caller.
	UserID string

	// Window is how many semesters past the student's level to include,
	// between 0 and 3.
	Window int
}

// Validate validates the query.
func (q GetEligibleCoursesQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_eligible_courses: user_id is required")
	}
	if q.Window < course.MinSemesterWindow || q.Window > course.MaxSemesterWindow {
		return course.ErrInvalidWindow
	}
	return nil
}

// GetEligibleCoursesResult contains the ordered eligible courses.
type GetEligibleCoursesResult struct {
	Courses    []course.Entry
	Total      int
	HasProfile bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetEligibleCoursesHandler handles the GetEligibleCoursesQuery.
type GetEligibleCoursesHandler struct {
	profiles profile.Repository
	courses  course.Repository
	cache    CatalogCache
}

// NewGetEligibleCoursesHandler creates the handler. cache may be nil.
func NewGetEligibleCoursesHandler(profiles profile.Repository, courses course.Repository, cache CatalogCache) *GetEligibleCoursesHandler {
	return &GetEligibleCoursesHandler{profiles: profiles, courses: courses, cache: cache}
}

// Handle executes the query.
func (h *GetEligibleCoursesHandler) Handle(ctx context.Context, q GetEligibleCoursesQuery) (*GetEligibleCoursesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	rec, err := h.studentRecord(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	catalog, err := loadCatalog(ctx, h.courses, h.cache)
	if err != nil {
		return nil, err
	}

	eligible, err := course.ResolveEligible(rec, catalog, q.Window)
	if err != nil {
		return nil, err
	}

	return &GetEligibleCoursesResult{
		Courses:    eligible,
		Total:      len(eligible),
		HasProfile: rec.HasProfile,
	}, nil
}

// studentRecord builds the eligibility view from the stored profile. A
// missing profile is not an error here; a present but non-numeric
// semesters-completed field is kept as "undeclared" so the resolver falls
// back to inferring the student's level from passed courses.
func (h *GetEligibleCoursesHandler) studentRecord(ctx context.Context, userID string) (course.StudentRecord, error) {
	stored, err := h.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return course.StudentRecord{}, nil
		}
		return course.StudentRecord{}, err
	}

	doc := stored.Data
	rec := course.StudentRecord{
		HasProfile:    true,
		ApprovedNames: doc.StringList("cursos_aprobados"),
		ApprovedCodes: doc.StringList("cursos_aprobados_codigos"),
	}

	if _, present := doc["semestres_cursados"]; !present {
		rec.SemestersDeclared = true
	} else if v, ok := doc.NumericField("semestres_cursados"); ok {
		rec.DeclaredSemesters = int(v)
		rec.SemestersDeclared = true
	}

	return rec, nil
}
