package dto

import "github.com/rohitbihal/smart-classroom-api/internal/models"

// GenerationSubject is a subject shaped for the external generator: the
// assigned faculty id is denormalized to a display name because the generator
// contract works with names throughout.
type GenerationSubject struct {
	ID           string             `json:"id"`
	Code         string             `json:"code"`
	Name         string             `json:"name"`
	Department   string             `json:"department"`
	Type         models.SessionType `json:"type"`
	HoursPerWeek int                `json:"hoursPerWeek"`
	FacultyName  string             `json:"facultyName,omitempty"`
}

// GenerationRequest is the payload submitted to the external generation engine.
// TimeSlots carries the derived non-lunch grid so the engine can reproduce
// legality checks without re-deriving it.
type GenerationRequest struct {
	Classes     []models.Class      `json:"classes"`
	Faculty     []models.Faculty    `json:"faculty"`
	Subjects    []GenerationSubject `json:"subjects"`
	Rooms       []models.Room       `json:"rooms"`
	Constraints models.Constraints  `json:"constraints"`
	TimeSlots   []string            `json:"timeSlots"`
}

// GenerationResult is the decoded generator response.
type GenerationResult struct {
	Timetable   []models.TimetableEntry     `json:"timetable"`
	Unscheduled []models.UnscheduledSession `json:"unscheduled,omitempty"`
}

// GenerateTimetableResponse is returned by the generation endpoint.
type GenerateTimetableResponse struct {
	Status      models.TimetableStatus      `json:"status"`
	Entries     []models.TimetableEntry     `json:"entries"`
	Unscheduled []models.UnscheduledSession `json:"unscheduled,omitempty"`
	Flags       []ValidationFlag            `json:"flags,omitempty"`
}
