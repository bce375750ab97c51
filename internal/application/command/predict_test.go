package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitrack/unitrack-api/internal/domain/course"
	"github.com/unitrack/unitrack-api/internal/domain/features"
	"github.com/unitrack/unitrack-api/internal/domain/inference"
	"github.com/unitrack/unitrack-api/internal/domain/prediction"
	"github.com/unitrack/unitrack-api/internal/domain/profile"
	"github.com/unitrack/unitrack-api/internal/domain/shared"
	"github.com/unitrack/unitrack-api/internal/domain/user"
	"github.com/unitrack/unitrack-api/internal/infrastructure/ml"
)

// ──────────────────────────────────────────────────────────────────────────────
// In-memory fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeUsers struct {
	byID map[string]*user.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[string]*user.User{}} }

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, shared.ErrUserNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *user.User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetOrCreate(_ context.Context, id, email string) (*user.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	u := &user.User{ID: id, Email: email, IsActive: true}
	f.byID[id] = u
	return u, nil
}

type fakeCourses struct {
	entries map[string]*course.Entry
}

func newFakeCourses() *fakeCourses { return &fakeCourses{entries: map[string]*course.Entry{}} }

func (f *fakeCourses) GetByCode(_ context.Context, code string) (*course.Entry, error) {
	if e, ok := f.entries[course.Normalize(code)]; ok {
		return e, nil
	}
	return nil, shared.ErrCourseNotFound
}

func (f *fakeCourses) GetOrCreate(_ context.Context, code string) (*course.Entry, error) {
	code = course.Normalize(code)
	if e, ok := f.entries[code]; ok {
		return e, nil
	}
	e := &course.Entry{Code: code, Name: code}
	f.entries[code] = e
	return e, nil
}

func (f *fakeCourses) List(_ context.Context) ([]course.Entry, error) {
	out := make([]course.Entry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, *e)
	}
	course.SortEntries(out)
	return out, nil
}

type fakeProfiles struct {
	byUser map[string]*profile.Stored
}

func newFakeProfiles() *fakeProfiles { return &fakeProfiles{byUser: map[string]*profile.Stored{}} }

func (f *fakeProfiles) GetByUserID(_ context.Context, userID string) (*profile.Stored, error) {
	if p, ok := f.byUser[userID]; ok {
		return p, nil
	}
	return nil, shared.ErrProfileNotFound
}

func (f *fakeProfiles) Create(_ context.Context, userID string, data profile.Document) (*profile.Stored, error) {
	p := &profile.Stored{ID: "p-" + userID, UserID: userID, Data: data}
	f.byUser[userID] = p
	return p, nil
}

func (f *fakeProfiles) Update(_ context.Context, userID string, data profile.Document) (*profile.Stored, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return nil, shared.ErrProfileNotFound
	}
	p.Data = data
	return p, nil
}

type fakeInferences struct {
	records []inference.Record
}

func (f *fakeInferences) Append(_ context.Context, rec *inference.Record) error {
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeInferences) ListByUser(_ context.Context, userID string, limit, offset int) (*inference.Page, error) {
	var items []inference.Record
	for _, r := range f.records {
		if r.UserID == userID {
			items = append(items, r)
		}
	}
	return &inference.Page{Items: items, Total: len(items), Limit: limit, Offset: offset}, nil
}

func testEngine() *prediction.Engine {
	return prediction.NewEngine(ml.NewRegistry("", ml.MockVersion, nil))
}

func storedDocument() profile.Document {
	p := profile.Simplified{
		Sexo:              "M",
		FechaNacimiento:   "2002-03-15",
		TipoColegio:       "Privado",
		PromedioGeneral:   15,
		CreditosAprobados: 80,
		PuntajeIngreso:    85,
		SemestresCursados: 4,
		PeriodoIngreso:    "2021-1",
	}
	return p.ToDocument()
}

// ──────────────────────────────────────────────────────────────────────────────
// Predict
// ──────────────────────────────────────────────────────────────────────────────

func TestPredict_FromStoredProfile(t *testing.T) {
	users := newFakeUsers()
	courses := newFakeCourses()
	profiles := newFakeProfiles()
	audit := &fakeInferences{}
	profiles.byUser["u1"] = &profile.Stored{UserID: "u1", Data: storedDocument()}

	h := NewPredictHandler(users, courses, profiles, audit, features.NewMapper(), testEngine(), nil)

	result, err := h.Handle(context.Background(), PredictCommand{
		UserID:     "u1",
		Email:      "ana@example.com",
		CourseCode: "cs2b01",
	})
	require.NoError(t, err)

	assert.Equal(t, "CS2B01", result.CourseCode)
	assert.Contains(t, []string{prediction.LabelPass, prediction.LabelFail}, result.Prediction.Label)
	assert.Equal(t, ml.MockVersion, result.Prediction.Version)

	// The unknown course got a placeholder catalog entry.
	_, err = courses.GetByCode(context.Background(), "CS2B01")
	assert.NoError(t, err)

	// One audit record with the full feature payload.
	require.Len(t, audit.records, 1)
	assert.Equal(t, "u1", audit.records[0].UserID)
	assert.Len(t, audit.records[0].Input, features.FeatureCount)
	assert.Contains(t, audit.records[0].Output, "prediction_label")
}

func TestPredict_RawFeaturesBypassProfile(t *testing.T) {
	h := NewPredictHandler(newFakeUsers(), newFakeCourses(), newFakeProfiles(), &fakeInferences{}, features.NewMapper(), testEngine(), nil)

	result, err := h.Handle(context.Background(), PredictCommand{
		UserID:   "u1",
		Features: map[string]any{"PROM_POND_HIST": 14.0, "SEM": "3"},
	})
	require.NoError(t, err)
	assert.Empty(t, result.CourseCode)
	assert.NotNil(t, result.Prediction)
}

func TestPredict_NoProfileNoFeatures(t *testing.T) {
	h := NewPredictHandler(newFakeUsers(), newFakeCourses(), newFakeProfiles(), &fakeInferences{}, features.NewMapper(), testEngine(), nil)

	_, err := h.Handle(context.Background(), PredictCommand{UserID: "u1", CourseCode: "CS2B01"})
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)
}

func TestPredict_ValidateRejectsEmptyRequest(t *testing.T) {
	assert.Error(t, PredictCommand{}.Validate())
	assert.Error(t, PredictCommand{UserID: "u1"}.Validate())
	assert.NoError(t, PredictCommand{UserID: "u1", CourseCode: "CS2B01"}.Validate())
}

// ──────────────────────────────────────────────────────────────────────────────
// What-if
// ──────────────────────────────────────────────────────────────────────────────

func TestWhatIf_AdjustsStoredProfile(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.byUser["u1"] = &profile.Stored{UserID: "u1", Data: storedDocument()}
	audit := &fakeInferences{}
	adjuster := features.NewAdjuster(features.NewMapper())

	h := NewWhatIfHandler(newFakeUsers(), newFakeCourses(), profiles, audit, adjuster, testEngine(), nil)

	deltas := map[string]float64{"promedio_general": 2.0}
	result, err := h.Handle(context.Background(), WhatIfCommand{
		UserID:     "u1",
		CourseCode: "CS2B01",
		Deltas:     deltas,
	})
	require.NoError(t, err)

	assert.Equal(t, deltas, result.Deltas)
	assert.Equal(t, deltas, result.Prediction.Details.Deltas)

	// Stored profile stays untouched.
	assert.Equal(t, 15.0, profiles.byUser["u1"].Data.Float("promedio_general", 0))

	// The audit record carries the deltas alongside the features.
	require.Len(t, audit.records, 1)
	assert.Equal(t, deltas, audit.records[0].Input["deltas"])
}

func TestWhatIf_WithoutProfileRequiresFeatures(t *testing.T) {
	adjuster := features.NewAdjuster(features.NewMapper())
	h := NewWhatIfHandler(newFakeUsers(), newFakeCourses(), newFakeProfiles(), &fakeInferences{}, adjuster, testEngine(), nil)

	_, err := h.Handle(context.Background(), WhatIfCommand{
		UserID:     "u1",
		CourseCode: "CS2B01",
		Deltas:     map[string]float64{"promedio_general": 1},
	})
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)

	result, err := h.Handle(context.Background(), WhatIfCommand{
		UserID:     "u1",
		CourseCode: "CS2B01",
		Deltas:     map[string]float64{"PROM_POND_HIST": 1},
		Features:   map[string]any{"PROM_POND_HIST": 13.0},
	})
	require.NoError(t, err)
	assert.NotNil(t, result.Prediction)
}

func TestWhatIf_ValidateRequiresDeltas(t *testing.T) {
	cmd := WhatIfCommand{UserID: "u1", CourseCode: "CS2B01"}
	assert.Error(t, cmd.Validate())
}

// ──────────────────────────────────────────────────────────────────────────────
// Save profile
// ──────────────────────────────────────────────────────────────────────────────

func TestSaveProfile_CreateThenUpdate(t *testing.T) {
	profiles := newFakeProfiles()
	h := NewSaveProfileHandler(newFakeUsers(), profiles)

	p := profile.Simplified{
		Sexo:              "F",
		FechaNacimiento:   "2003-08-20",
		TipoColegio:       "Público",
		PromedioGeneral:   13.5,
		PuntajeIngreso:    72,
		SemestresCursados: 2,
		PeriodoIngreso:    "2022-2",
	}

	created, err := h.Handle(context.Background(), SaveProfileCommand{
		UserID: "u1", Email: "ana@example.com", Profile: p,
	})
	require.NoError(t, err)
	assert.True(t, created.Created)

	p.PromedioGeneral = 14.0
	updated, err := h.Handle(context.Background(), SaveProfileCommand{
		UserID: "u1", Email: "ana@example.com", Profile: p,
	})
	require.NoError(t, err)
	assert.False(t, updated.Created)
	assert.Equal(t, 14.0, profiles.byUser["u1"].Data.Float("promedio_general", 0))
}
