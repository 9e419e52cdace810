package models

import "time"

// Subject represents an academic subject taught to one or more classes.
type Subject struct {
	ID                string      `db:"id" json:"id"`
	Code              string      `db:"code" json:"code"`
	Name              string      `db:"name" json:"name"`
	Department        string      `db:"department" json:"department"`
	Type              SessionType `db:"type" json:"type"`
	HoursPerWeek      int         `db:"hours_per_week" json:"hours_per_week"`
	AssignedFacultyID *string     `db:"assigned_faculty_id" json:"assigned_faculty_id,omitempty"`
	Year              int         `db:"year" json:"year"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	Department string
	Type       string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// TaughtIn reports whether the subject belongs to the class's department/year
// pairing. Class-subject linkage is derived, not stored.
func (s Subject) TaughtIn(c Class) bool {
	if s.Department != "" && c.Branch != "" && s.Department != c.Branch {
		return false
	}
	if s.Year > 0 && c.Year > 0 && s.Year != c.Year {
		return false
	}
	return true
}
