package dto

// RoomAvailabilityQuery selects the day (and optionally a room subset) for the
// availability grid.
type RoomAvailabilityQuery struct {
	Day   string   `form:"day" json:"day" validate:"required"`
	Rooms []string `form:"rooms" json:"rooms"`
}

// ExportFormat names a supported export rendering.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// CreateExportRequest enqueues an asynchronous timetable export.
type CreateExportRequest struct {
	Format ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	Day    string       `json:"day"`
	Class  string       `json:"class"`
}

// ExportJobResponse reports the state of an asynchronous export.
type ExportJobResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Format      string `json:"format"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Error       string `json:"error,omitempty"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
}
