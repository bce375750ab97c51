package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitrack/unitrack-api/internal/domain/course"
	"github.com/unitrack/unitrack-api/internal/domain/profile"
	"github.com/unitrack/unitrack-api/internal/domain/shared"
)

type stubProfiles struct {
	stored *profile.Stored
}

func (s *stubProfiles) GetByUserID(_ context.Context, userID string) (*profile.Stored, error) {
	if s.stored == nil {
		return nil, shared.ErrProfileNotFound
	}
	return s.stored, nil
}

func (s *stubProfiles) Create(_ context.Context, userID string, data profile.Document) (*profile.Stored, error) {
	s.stored = &profile.Stored{UserID: userID, Data: data}
	return s.stored, nil
}

func (s *stubProfiles) Update(_ context.Context, userID string, data profile.Document) (*profile.Stored, error) {
	if s.stored == nil {
		return nil, shared.ErrProfileNotFound
	}
	s.stored.Data = data
	return s.stored, nil
}

type stubCourses struct {
	entries []course.Entry
	lists   int
}

func (s *stubCourses) GetByCode(_ context.Context, code string) (*course.Entry, error) {
	for i := range s.entries {
		if s.entries[i].Code == course.Normalize(code) {
			return &s.entries[i], nil
		}
	}
	return nil, shared.ErrCourseNotFound
}

func (s *stubCourses) GetOrCreate(_ context.Context, code string) (*course.Entry, error) {
	return s.GetByCode(context.Background(), code)
}

func (s *stubCourses) List(_ context.Context) ([]course.Entry, error) {
	s.lists++
	return s.entries, nil
}

type memoryCatalogCache struct {
	entries []course.Entry
	cached  bool
}

func (c *memoryCatalogCache) Get(_ context.Context) ([]course.Entry, bool) {
	return c.entries, c.cached
}

func (c *memoryCatalogCache) Put(_ context.Context, entries []course.Entry) {
	c.entries = entries
	c.cached = true
}

func intPtr(v int) *int { return &v }

func stubCatalog() []course.Entry {
	return []course.Entry{
		{Code: "CS1100", Name: "Introducción a la Computación", Semester: intPtr(1)},
		{Code: "CS2100", Name: "Programación II", Semester: intPtr(2),
			Prerequisites: []string{"Introducción a la Computación"}},
	}
}

func TestGetEligibleCourses_NoProfile(t *testing.T) {
	h := NewGetEligibleCoursesHandler(&stubProfiles{}, &stubCourses{entries: stubCatalog()}, nil)

	result, err := h.Handle(context.Background(), GetEligibleCoursesQuery{
		UserID: "u1",
		Window: course.DefaultSemesterWindow,
	})
	require.NoError(t, err)

	assert.False(t, result.HasProfile)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "CS1100", result.Courses[0].Code)
}

func TestGetEligibleCourses_ApprovedCoursesUnlockNextLevel(t *testing.T) {
	profiles := &stubProfiles{stored: &profile.Stored{
		UserID: "u1",
		Data: profile.Document{
			"semestres_cursados": 1.0,
			"cursos_aprobados":   []any{"Introducción a la Computación"},
		},
	}}
	h := NewGetEligibleCoursesHandler(profiles, &stubCourses{entries: stubCatalog()}, nil)

	result, err := h.Handle(context.Background(), GetEligibleCoursesQuery{
		UserID: "u1",
		Window: course.DefaultSemesterWindow,
	})
	require.NoError(t, err)

	assert.True(t, result.HasProfile)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "CS2100", result.Courses[0].Code)
}

func TestGetEligibleCourses_MalformedSemestersStillAnswers(t *testing.T) {
	profiles := &stubProfiles{stored: &profile.Stored{
		UserID: "u1",
		Data: profile.Document{
			"semestres_cursados": "muchos",
			"cursos_aprobados":   []any{"Introducción a la Computación"},
		},
	}}
	h := NewGetEligibleCoursesHandler(profiles, &stubCourses{entries: stubCatalog()}, nil)

	result, err := h.Handle(context.Background(), GetEligibleCoursesQuery{
		UserID: "u1",
		Window: course.DefaultSemesterWindow,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"CS2100"}, []string{result.Courses[0].Code})
}

func TestGetEligibleCourses_WindowValidation(t *testing.T) {
	h := NewGetEligibleCoursesHandler(&stubProfiles{}, &stubCourses{}, nil)

	_, err := h.Handle(context.Background(), GetEligibleCoursesQuery{UserID: "u1", Window: 7})
	assert.ErrorIs(t, err, course.ErrInvalidWindow)
}

func TestLoadCatalog_UsesCacheAfterFirstRead(t *testing.T) {
	repo := &stubCourses{entries: stubCatalog()}
	cache := &memoryCatalogCache{}

	first, err := loadCatalog(context.Background(), repo, cache)
	require.NoError(t, err)
	second, err := loadCatalog(context.Background(), repo, cache)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.lists)
}
