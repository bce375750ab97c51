package course

import (
	"errors"
	"sort"
)

// ══════════════════════════════════════════════════════════════════════════════
// ELIGIBILITY RULES
//
// A course is available to a student when:
//  1. it falls inside the student's semester window (declared semesters
//     completed plus a configurable look-ahead), and
//  2. all of its prerequisites appear in the student's approved-course
//     names, and
//  3. the student has not already passed the course itself.
//
// When the student declared no progress but listed approved courses, the
// semester window is inferred from the highest semester among those courses.
// Without any profile at all we cannot judge prerequisites, so only
// prerequisite-free courses are offered.
// ══════════════════════════════════════════════════════════════════════════════

// Semester window bounds. The window is how many semesters ahead of the
// student's current progress a course may be and still be offered.
const (
	MinSemesterWindow     = 0
	DefaultSemesterWindow = 1
	MaxSemesterWindow     = 3
)

// ErrInvalidWindow is returned when the semester window is out of range.
var ErrInvalidWindow = errors.New("course: semester window must be between 0 and 3")

// StudentRecord is the per-request view of a student used for eligibility.
// It is derived from the stored profile by the caller; a malformed
// semesters-completed field is represented as SemestersDeclared=false, never
// as an error.
type StudentRecord struct {
	// HasProfile is false when the student has no stored profile at all.
	HasProfile bool

	// DeclaredSemesters is the number of semesters the student reported
	// as completed. Meaningful only when SemestersDeclared is true.
	DeclaredSemesters int

	// SemestersDeclared is false when the profile field was malformed
	// (non-numeric); the resolver then falls back to inference.
	SemestersDeclared bool

	// ApprovedNames are course names the student has passed.
	ApprovedNames []string

	// ApprovedCodes are course codes the student has passed.
	ApprovedCodes []string
}

// HasApproved reports whether the student listed any passed coursework.
func (r StudentRecord) HasApproved() bool {
	return len(r.ApprovedNames) > 0 || len(r.ApprovedCodes) > 0
}

// ResolveEligible computes the ordered list of courses the student may
// enroll in. The catalog is not mutated; the result is a fresh slice ordered
// by semester (entries without a semester first), then by course code.
func ResolveEligible(rec StudentRecord, catalog []Entry, window int) ([]Entry, error) {
	if window < MinSemesterWindow || window > MaxSemesterWindow {
		return nil, ErrInvalidWindow
	}

	// Step 1: semester limit from declared progress.
	var limit *int
	if rec.HasProfile && rec.SemestersDeclared {
		l := rec.DeclaredSemesters + window
		limit = &l
	}

	// Step 2: normalized approved sets.
	names := normalizeSet(rec.ApprovedNames)
	codes := normalizeSet(rec.ApprovedCodes)

	// Step 3: infer progress from approved courses when the declared count
	// contributed nothing (unset, malformed, or zero).
	if (limit == nil || *limit == window) && (len(names) > 0 || len(codes) > 0) {
		maxSem := 0
		for i := range catalog {
			c := &catalog[i]
			if _, ok := names[c.NormalizedName()]; !ok {
				if _, ok := codes[c.NormalizedCode()]; !ok {
					continue
				}
			}
			if c.Semester != nil && *c.Semester > maxSem {
				maxSem = *c.Semester
			}
		}
		base := maxSem
		if rec.SemestersDeclared && rec.DeclaredSemesters > base {
			base = rec.DeclaredSemesters
		}
		l := base + window
		limit = &l
	}

	// Steps 4-5: filter. With no limit and no approved sets, only
	// prerequisite-free courses survive, which is the conservative
	// fallback for students without a profile.
	eligible := make([]Entry, 0, len(catalog))
	for _, c := range catalog {
		if limit != nil && c.Semester != nil && *c.Semester > *limit {
			continue
		}
		if !prerequisitesSatisfied(&c, names) {
			continue
		}
		if alreadyTaken(&c, names, codes) {
			continue
		}
		eligible = append(eligible, c)
	}

	// Step 6: deterministic ordering.
	SortEntries(eligible)
	return eligible, nil
}

// prerequisitesSatisfied reports whether every prerequisite name appears in
// the approved-name set. A course without prerequisites always passes; an
// empty approved set admits only such courses.
func prerequisitesSatisfied(c *Entry, approvedNames map[string]struct{}) bool {
	if !c.HasPrerequisites() {
		return true
	}
	if len(approvedNames) == 0 {
		return false
	}
	for _, p := range c.Prerequisites {
		if _, ok := approvedNames[Normalize(p)]; !ok {
			return false
		}
	}
	return true
}

// alreadyTaken reports whether the course itself appears in the approved
// sets, by name or by code.
func alreadyTaken(c *Entry, names, codes map[string]struct{}) bool {
	if _, ok := names[c.NormalizedName()]; ok {
		return true
	}
	if _, ok := codes[c.NormalizedCode()]; ok {
		return true
	}
	return false
}

// SortEntries orders entries ascending by semester with unset semesters
// first, ties broken by course code.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		si, sj := entries[i].Semester, entries[j].Semester
		switch {
		case si == nil && sj != nil:
			return true
		case si != nil && sj == nil:
			return false
		case si != nil && sj != nil && *si != *sj:
			return *si < *sj
		}
		return entries[i].Code < entries[j].Code
	})
}

// normalizeSet builds a set of normalized (upper-cased, trimmed) entries,
// dropping empties.
func normalizeSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		n := Normalize(item)
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return set
}
