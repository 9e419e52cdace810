package models

import "time"

// TimePreferences describes the institutional time grid from which bookable
// slots are derived. Times use "HH:MM" wall-clock strings.
type TimePreferences struct {
	WorkingDays     []string `json:"workingDays"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	LunchStartTime  string   `json:"lunchStartTime"`
	LunchDuration   int      `json:"lunchDurationMinutes"`
	SlotDuration    int      `json:"slotDurationMinutes"`
	MaxHoursPerDay  int      `json:"maxHoursPerDay,omitempty"`
	MaxHoursPerWeek int      `json:"maxHoursPerWeek,omitempty"`
}

// UnavailabilitySlot marks a (day, timeSlot) pair a faculty member cannot teach.
type UnavailabilitySlot struct {
	Day      string `json:"day"`
	TimeSlot string `json:"timeSlot"`
}

// DailySchedulePreference expresses when in the day a faculty member prefers
// to teach.
type DailySchedulePreference string

const (
	PreferMorning   DailySchedulePreference = "morning"
	PreferAfternoon DailySchedulePreference = "afternoon"
	PreferNone      DailySchedulePreference = "none"
)

// FacultyPreference holds per-faculty scheduling rules. Absence of an entry
// means "no preference", not "unavailable".
type FacultyPreference struct {
	FacultyID          string                  `json:"facultyId"`
	Unavailability     []UnavailabilitySlot    `json:"unavailability,omitempty"`
	PreferredDays      []string                `json:"preferredDays,omitempty"`
	DailyPreference    DailySchedulePreference `json:"dailyPreference,omitempty"`
	MaxConsecutive     int                     `json:"maxConsecutiveClasses,omitempty"`
	PreferBackToBack   bool                    `json:"preferBackToBack,omitempty"`
	PreferOneHourGaps  bool                    `json:"preferOneHourGaps,omitempty"`
}

// FixedClassConstraint pins a session the generator must honor verbatim.
type FixedClassConstraint struct {
	ID        string  `json:"id"`
	Day       string  `json:"day"`
	TimeSlot  string  `json:"timeSlot"`
	ClassID   string  `json:"classId"`
	SubjectID string  `json:"subjectId"`
	RoomID    *string `json:"roomId,omitempty"`
}

// RoomResourceConstraint tunes room allocation behaviour. Every field is
// optional; zero value means the rule is disabled.
type RoomResourceConstraint struct {
	PrioritizeSameRoom    bool `json:"prioritizeSameRoom,omitempty"`
	RequireLabForLabs     bool `json:"requireLabForLabs,omitempty"`
	EnforceCapacity       bool `json:"enforceCapacity,omitempty"`
	InterBuildingTravelMins int  `json:"interBuildingTravelMinutes,omitempty"`
}

// StudentSectionConstraint tunes per-section scheduling behaviour.
type StudentSectionConstraint struct {
	MaxConsecutiveClasses int  `json:"maxConsecutiveClasses,omitempty"`
	AvoidFirstSlotLabs    bool `json:"avoidFirstSlotLabs,omitempty"`
	SpreadSubjectsEvenly  bool `json:"spreadSubjectsEvenly,omitempty"`
}

// AdvancedConstraint holds institution-wide tuning flags.
type AdvancedConstraint struct {
	EnableLoadBalancing   bool `json:"enableLoadBalancing,omitempty"`
	MinimizeGaps          bool `json:"minimizeGaps,omitempty"`
	BalanceDailyLoad      bool `json:"balanceDailyLoad,omitempty"`
	PreferCompactSchedule bool `json:"preferCompactSchedule,omitempty"`
}

// ConstraintStrength distinguishes must-hold rules from best-effort ones.
type ConstraintStrength string

const (
	ConstraintHard ConstraintStrength = "Hard"
	ConstraintSoft ConstraintStrength = "Soft"
)

// ConstraintTarget names what a custom rule applies to.
type ConstraintTarget string

const (
	TargetFaculty  ConstraintTarget = "Faculty"
	TargetRoom     ConstraintTarget = "Room"
	TargetClass    ConstraintTarget = "Class"
	TargetTimeSlot ConstraintTarget = "TimeSlot"
)

// CustomConstraint is a user-authored natural-language rule. It is stored,
// listed, toggled and forwarded verbatim to the generator, never interpreted
// locally.
type CustomConstraint struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Type        ConstraintStrength `json:"type"`
	AppliedTo   ConstraintTarget   `json:"appliedTo"`
	Priority    int                `json:"priority"`
	IsActive    bool               `json:"isActive"`
}

// Constraints aggregates every scheduling rule category for one institution.
// The aggregate is persisted as a single document; category updates replace
// only their own field.
type Constraints struct {
	TimePreferences    TimePreferences            `json:"timePreferences"`
	FacultyPreferences []FacultyPreference        `json:"facultyPreferences"`
	FixedClasses       []FixedClassConstraint     `json:"fixedClasses"`
	RoomResource       RoomResourceConstraint     `json:"roomResource"`
	StudentSection     StudentSectionConstraint   `json:"studentSection"`
	Advanced           AdvancedConstraint         `json:"advanced"`
	CustomConstraints  []CustomConstraint         `json:"customConstraints"`
	UpdatedAt          time.Time                  `json:"updatedAt"`
}

// DefaultConstraints returns the aggregate created on first institution setup.
func DefaultConstraints() Constraints {
	return Constraints{
		TimePreferences: TimePreferences{
			WorkingDays:    []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
			StartTime:      "09:00",
			EndTime:        "17:00",
			LunchStartTime: "13:00",
			LunchDuration:  60,
			SlotDuration:   60,
		},
		FacultyPreferences: []FacultyPreference{},
		FixedClasses:       []FixedClassConstraint{},
		CustomConstraints:  []CustomConstraint{},
	}
}

// ConstraintCategory identifies one replaceable slice of the aggregate.
type ConstraintCategory string

const (
	CategoryTimePreferences    ConstraintCategory = "timePreferences"
	CategoryFacultyPreferences ConstraintCategory = "facultyPreferences"
	CategoryFixedClasses       ConstraintCategory = "fixedClasses"
	CategoryRoomResource       ConstraintCategory = "roomResource"
	CategoryStudentSection     ConstraintCategory = "studentSection"
	CategoryAdvanced           ConstraintCategory = "advanced"
	CategoryCustom             ConstraintCategory = "customConstraints"
)

// ConstraintCategories enumerates every valid category.
var ConstraintCategories = []ConstraintCategory{
	CategoryTimePreferences,
	CategoryFacultyPreferences,
	CategoryFixedClasses,
	CategoryRoomResource,
	CategoryStudentSection,
	CategoryAdvanced,
	CategoryCustom,
}

// Valid reports whether the category names a known aggregate slice.
func (c ConstraintCategory) Valid() bool {
	for _, known := range ConstraintCategories {
		if c == known {
			return true
		}
	}
	return false
}
