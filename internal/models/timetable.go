package models

import "time"

// TimetableEntryKind distinguishes generator-placed sessions from pinned ones.
type TimetableEntryKind string

const (
	EntryRegular TimetableEntryKind = "regular"
	EntryFixed   TimetableEntryKind = "fixed"
)

// TimetableEntry is one placed session as returned by the generator. The
// generator identifies class, subject, faculty and room by display name, not
// id; reconciliation back to canonical entities happens in analytics.
type TimetableEntry struct {
	ID        string             `db:"id" json:"id,omitempty"`
	Day       string             `db:"day" json:"day"`
	Time      string             `db:"time" json:"time"`
	ClassName string             `db:"class_name" json:"className"`
	Subject   string             `db:"subject" json:"subject"`
	Faculty   string             `db:"faculty" json:"faculty"`
	Room      string             `db:"room" json:"room"`
	Type      SessionType        `db:"type" json:"type"`
	ClassType TimetableEntryKind `db:"class_type" json:"classType"`
	CreatedAt time.Time          `db:"created_at" json:"created_at,omitempty"`
}

// UnscheduledSession is a class-subject pairing the generator could not place.
type UnscheduledSession struct {
	ClassName string `db:"class_name" json:"className"`
	Subject   string `db:"subject" json:"subject"`
	Reason    string `db:"reason" json:"reason"`
}

// TimetableStatus reflects whether a timetable exists and how complete it is.
type TimetableStatus string

const (
	// TimetableNotGenerated means no generation has happened yet; distinct
	// from a generated timetable with zero conflicts.
	TimetableNotGenerated TimetableStatus = "not_generated"
	TimetableComplete     TimetableStatus = "fully_scheduled"
	TimetablePartial      TimetableStatus = "partially_scheduled"
)

// RoomConflict reports two or more entries occupying the same room cell.
type RoomConflict struct {
	Room    string           `json:"room"`
	Day     string           `json:"day"`
	Time    string           `json:"time"`
	Entries []TimetableEntry `json:"entries"`
}
