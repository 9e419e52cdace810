package models

// RoomAvailabilityCell holds the occupant of one (room, slot) grid position.
// Occupant is empty when the cell is free. ConflictCount counts entries beyond
// the displayed one that claim the same cell.
type RoomAvailabilityCell struct {
	Occupant      string `json:"occupant,omitempty"`
	SessionType   string `json:"sessionType,omitempty"`
	ConflictCount int    `json:"conflictCount,omitempty"`
}

// RoomAvailabilityGrid maps room number → time slot → cell for a single day.
type RoomAvailabilityGrid struct {
	Day           string                                     `json:"day"`
	Slots         []string                                   `json:"slots"`
	Rooms         map[string]map[string]RoomAvailabilityCell `json:"rooms"`
	ConflictTotal int                                        `json:"conflictTotal"`
	Conflicts     []RoomConflict                             `json:"conflicts,omitempty"`
}

// FacultyWorkload summarises one faculty member's scheduled load against their
// declared capacity. Utilization above 100 signals over-allocation and is
// reported, never clamped.
type FacultyWorkload struct {
	FacultyID      string  `json:"facultyId"`
	FacultyName    string  `json:"facultyName"`
	Department     string  `json:"department"`
	ScheduledHours int     `json:"scheduledHours"`
	MaxWorkload    int     `json:"maxWorkload"`
	Utilization    float64 `json:"utilization"`
	OverAllocated  bool    `json:"overAllocated"`
}

// RoomUsage summarises how heavily a room is booked across the working week.
type RoomUsage struct {
	RoomID         string  `json:"roomId"`
	RoomNumber     string  `json:"roomNumber"`
	Building       string  `json:"building"`
	ScheduledSlots int     `json:"scheduledSlots"`
	AvailableSlots int     `json:"availableSlots"`
	Utilization    float64 `json:"utilization"`
}

// EquipmentUsage reports what share of all scheduled hours take place in rooms
// carrying a given capability.
type EquipmentUsage struct {
	Equipment   string  `json:"equipment"`
	BookedHours int     `json:"bookedHours"`
	TotalHours  int     `json:"totalHours"`
	Utilization float64 `json:"utilization"`
}

// UnscheduledReport wraps the generator's unscheduled sessions with an explicit
// fully-scheduled flag so an empty list is never ambiguous.
type UnscheduledReport struct {
	FullyScheduled bool                 `json:"fullyScheduled"`
	Sessions       []UnscheduledSession `json:"sessions"`
}

// ReconciliationIssue flags a timetable entry whose display name could not be
// resolved to a canonical entity. These are data-quality errors, not merges.
type ReconciliationIssue struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Day   string `json:"day"`
	Time  string `json:"time"`
}

// ReconciledEntry joins a raw timetable entry to resolved entity ids.
type ReconciledEntry struct {
	TimetableEntry
	ClassID   string `json:"classId,omitempty"`
	FacultyID string `json:"facultyId,omitempty"`
	RoomID    string `json:"roomId,omitempty"`
}

// ReconciliationResult carries resolved entries plus any unresolved names.
type ReconciliationResult struct {
	Entries []ReconciledEntry     `json:"entries"`
	Issues  []ReconciliationIssue `json:"issues"`
}

// TimetableOverview is the summary state exposed on the timetable endpoint.
type TimetableOverview struct {
	Status      TimetableStatus  `json:"status"`
	EntryCount  int              `json:"entryCount"`
	Entries     []TimetableEntry `json:"entries"`
	Unscheduled []UnscheduledSession `json:"unscheduled,omitempty"`
}
