package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func testCatalog() []Entry {
	return []Entry{
		{Code: "CS1100", Name: "Introducción a la Computación", Semester: intPtr(1)},
		{Code: "MA1001", Name: "Cálculo I", Semester: intPtr(1)},
		{Code: "CS2100", Name: "Programación II", Semester: intPtr(2),
			Prerequisites: []string{"Introducción a la Computación"}},
		{Code: "CS3100", Name: "Sistemas Operativos", Semester: intPtr(4),
			Prerequisites: []string{"Programación II"}},
		{Code: "FG100", Name: "Taller de Redacción"},
	}
}

func codes(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Code
	}
	return out
}

func TestResolveEligible_WindowOutOfRange(t *testing.T) {
	rec := StudentRecord{HasProfile: true, SemestersDeclared: true}

	_, err := ResolveEligible(rec, testCatalog(), -1)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = ResolveEligible(rec, testCatalog(), MaxSemesterWindow+1)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestResolveEligible_NoProfileOffersPrereqFreeOnly(t *testing.T) {
	got, err := ResolveEligible(StudentRecord{}, testCatalog(), DefaultSemesterWindow)
	require.NoError(t, err)

	assert.Equal(t, []string{"FG100", "CS1100", "MA1001"}, codes(got))
}

func TestResolveEligible_PrerequisiteGate(t *testing.T) {
	rec := StudentRecord{
		HasProfile:        true,
		DeclaredSemesters: 1,
		SemestersDeclared: true,
		ApprovedNames:     []string{"Introducción a la Computación"},
	}

	got, err := ResolveEligible(rec, testCatalog(), DefaultSemesterWindow)
	require.NoError(t, err)

	// Semester limit 1+1=2: CS2100 unlocked, CS3100 both out of window
	// and missing its prerequisite.
	assert.Equal(t, []string{"FG100", "MA1001", "CS2100"}, codes(got))
}

func TestResolveEligible_TakenCoursesExcluded(t *testing.T) {
	rec := StudentRecord{
		HasProfile:        true,
		DeclaredSemesters: 2,
		SemestersDeclared: true,
		ApprovedNames:     []string{"Introducción a la Computación", "Programación II"},
		ApprovedCodes:     []string{"ma1001"},
	}

	got, err := ResolveEligible(rec, testCatalog(), DefaultSemesterWindow)
	require.NoError(t, err)

	// Matching is case-insensitive for both names and codes.
	assert.NotContains(t, codes(got), "CS1100")
	assert.NotContains(t, codes(got), "CS2100")
	assert.NotContains(t, codes(got), "MA1001")
	assert.Contains(t, codes(got), "FG100")
}

func TestResolveEligible_InfersProgressFromApproved(t *testing.T) {
	rec := StudentRecord{
		HasProfile:        true,
		DeclaredSemesters: 0,
		SemestersDeclared: true,
		ApprovedNames:     []string{"Introducción a la Computación", "Programación II"},
	}

	got, err := ResolveEligible(rec, testCatalog(), 2)
	require.NoError(t, err)

	// Highest approved semester is 2, so the limit becomes 2+2=4 and
	// Sistemas Operativos enters the window.
	assert.Contains(t, codes(got), "CS3100")
}

func TestResolveEligible_MalformedSemestersFallsBackToInference(t *testing.T) {
	rec := StudentRecord{
		HasProfile:        true,
		SemestersDeclared: false,
		ApprovedNames:     []string{"Introducción a la Computación"},
	}

	got, err := ResolveEligible(rec, testCatalog(), DefaultSemesterWindow)
	require.NoError(t, err)

	// Inferred limit 1+1=2.
	assert.Equal(t, []string{"FG100", "MA1001", "CS2100"}, codes(got))
}

func TestResolveEligible_ZeroWindowLocksCurrentSemester(t *testing.T) {
	rec := StudentRecord{
		HasProfile:        true,
		DeclaredSemesters: 1,
		SemestersDeclared: true,
		ApprovedNames:     []string{"Introducción a la Computación"},
	}

	got, err := ResolveEligible(rec, testCatalog(), 0)
	require.NoError(t, err)

	assert.NotContains(t, codes(got), "CS2100")
	assert.Contains(t, codes(got), "MA1001")
}

func TestSortEntries(t *testing.T) {
	entries := []Entry{
		{Code: "CS2100", Semester: intPtr(2)},
		{Code: "FG100"},
		{Code: "CS1100", Semester: intPtr(1)},
		{Code: "AA100", Semester: intPtr(1)},
	}

	SortEntries(entries)

	assert.Equal(t, []string{"FG100", "AA100", "CS1100", "CS2100"}, codes(entries))
}
