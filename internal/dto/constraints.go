package dto

import "github.com/rohitbihal/smart-classroom-api/internal/models"

// UpsertFacultyPreferenceRequest replaces the preference entry for one faculty
// member, appending when no entry exists yet.
type UpsertFacultyPreferenceRequest struct {
	FacultyID         string                          `json:"facultyId" validate:"required"`
	Unavailability    []models.UnavailabilitySlot     `json:"unavailability" validate:"omitempty,dive"`
	PreferredDays     []string                        `json:"preferredDays"`
	DailyPreference   models.DailySchedulePreference  `json:"dailyPreference" validate:"omitempty,oneof=morning afternoon none"`
	MaxConsecutive    int                             `json:"maxConsecutiveClasses" validate:"omitempty,min=1,max=8"`
	PreferBackToBack  bool                            `json:"preferBackToBack"`
	PreferOneHourGaps bool                            `json:"preferOneHourGaps"`
}

// AddFixedClassRequest pins a session the generator must honor verbatim.
type AddFixedClassRequest struct {
	Day       string  `json:"day" validate:"required"`
	TimeSlot  string  `json:"timeSlot" validate:"required"`
	ClassID   string  `json:"classId" validate:"required"`
	SubjectID string  `json:"subjectId" validate:"required"`
	RoomID    *string `json:"roomId"`
}

// CreateCustomConstraintRequest stores an opaque natural-language rule.
type CreateCustomConstraintRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=Hard Soft"`
	AppliedTo   string `json:"appliedTo" validate:"required,oneof=Faculty Room Class TimeSlot"`
	Priority    int    `json:"priority" validate:"omitempty,min=1,max=10"`
}

// ToggleCustomConstraintRequest activates or deactivates a stored rule.
type ToggleCustomConstraintRequest struct {
	IsActive bool `json:"isActive"`
}

// ValidationFlag marks a constraint entry that is suspicious but not dropped.
type ValidationFlag struct {
	Category string `json:"category"`
	RuleID   string `json:"ruleId,omitempty"`
	Message  string `json:"message"`
}

// ConstraintValidationReport is returned by pre-generation validation.
type ConstraintValidationReport struct {
	Valid bool             `json:"valid"`
	Flags []ValidationFlag `json:"flags,omitempty"`
}
