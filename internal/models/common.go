package models

import "strings"

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// SessionType classifies how a subject is delivered.
type SessionType string

const (
	SessionTheory   SessionType = "Theory"
	SessionLab      SessionType = "Lab"
	SessionTutorial SessionType = "Tutorial"
)

// NormalizeSessionType maps any casing variant ("theory", "LAB", ...) onto the
// canonical capitalized form. Unknown values default to Theory so that rows
// from older generator deployments never propagate a third casing downstream.
func NormalizeSessionType(raw string) SessionType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "lab", "practical":
		return SessionLab
	case "tutorial":
		return SessionTutorial
	default:
		return SessionTheory
	}
}

// Weekdays is the full ordered set a working-day selection draws from.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// IsWeekday reports whether name is one of the recognised weekday names.
func IsWeekday(name string) bool {
	for _, day := range Weekdays {
		if strings.EqualFold(day, name) {
			return true
		}
	}
	return false
}
