package models

import "time"

// Class represents a student group (branch + year + section) to be timetabled.
type Class struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Branch       string    `db:"branch" json:"branch"`
	Year         int       `db:"year" json:"year"`
	Section      string    `db:"section" json:"section"`
	StudentCount int       `db:"student_count" json:"student_count"`
	Block        *string   `db:"block" json:"block,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Branch    string
	Year      int
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
