package models

import (
	"time"

	"github.com/lib/pq"
)

// Faculty represents an instructor record.
type Faculty struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Department      string         `db:"department" json:"department"`
	Specializations pq.StringArray `db:"specializations" json:"specializations"`
	MaxWorkload     int            `db:"max_workload" json:"max_workload"`
	Designation     *string        `db:"designation" json:"designation,omitempty"`
	Email           *string        `db:"email" json:"email,omitempty"`
	Phone           *string        `db:"phone" json:"phone,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// FacultyFilter captures filtering options for listing faculty.
type FacultyFilter struct {
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
