// Package recordfilter selects records for the admin listing.
package recordfilter

import (
	"strings"

	"github.com/deptce/mentorship/internal/app/models"
)

// All disables a criterion, as does the empty string.
const All = "all"

// Criteria narrows a record list. Every enabled criterion must match.
type Criteria struct {
	Search   string
	Semester string
	Mentor   string
}

func enabled(v string) bool {
	return v != "" && v != All
}

// Match reports whether rec satisfies c.
func (c Criteria) Match(rec models.StudentRecord) bool {
	if enabled(c.Search) && !matchesSearch(rec, c.Search) {
		return false
	}
	if enabled(c.Semester) && !hasMentorForSemester(rec, c.Semester) {
		return false
	}
	if enabled(c.Mentor) && !hasMentor(rec, c.Mentor) {
		return false
	}
	return true
}

// Apply returns the items whose record matches c, in input order. record
// extracts the record from an item.
func Apply[T any](items []T, c Criteria, record func(T) models.StudentRecord) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if c.Match(record(it)) {
			out = append(out, it)
		}
	}
	return out
}

// Records is Apply over plain records.
func Records(records []models.StudentRecord, c Criteria) []models.StudentRecord {
	return Apply(records, c, func(r models.StudentRecord) models.StudentRecord { return r })
}

// MentorNames returns the distinct non-empty mentor names in first-seen order.
func MentorNames(records []models.StudentRecord) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, rec := range records {
		for _, m := range rec.Mentors {
			if m.MentorName == "" {
				continue
			}
			if _, ok := seen[m.MentorName]; ok {
				continue
			}
			seen[m.MentorName] = struct{}{}
			names = append(names, m.MentorName)
		}
	}
	return names
}

func matchesSearch(rec models.StudentRecord, term string) bool {
	term = strings.ToLower(term)
	p := rec.PersonalInfo
	for _, v := range []string{p.Name, p.EnrollmentNo, p.PersonalEmail, p.CollegeEmail} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

func hasMentorForSemester(rec models.StudentRecord, semester string) bool {
	for _, m := range rec.Mentors {
		if m.Semester == semester && m.MentorName != "" {
			return true
		}
	}
	return false
}

func hasMentor(rec models.StudentRecord, name string) bool {
	for _, m := range rec.Mentors {
		if m.MentorName == name {
			return true
		}
	}
	return false
}
