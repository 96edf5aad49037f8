package dto

import "github.com/xXemran05khanXx/uniflow/internal/models"

// WorkingHours bounds the daily scheduling window.
type WorkingHours struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// GenerationConfig carries the tunables of one generation run. Zero values
// fall back to server defaults from configuration.
type GenerationConfig struct {
	Algorithm     string       `json:"algorithm" validate:"omitempty,oneof=greedy genetic constraint_satisfaction"`
	WorkingDays   []string     `json:"workingDays" validate:"omitempty,min=1"`
	WorkingHours  WorkingHours `json:"workingHours"`
	SlotDuration  int          `json:"timeSlotDuration" validate:"omitempty,min=15,max=240"`
	BreakDuration int          `json:"breakDuration" validate:"omitempty,min=0,max=60"`
	MaxIterations int          `json:"maxIterations" validate:"omitempty,min=1"`
}

// GenerateTimetableRequest instructs the engine to build a timetable from
// normalized input collections.
type GenerateTimetableRequest struct {
	Name     string           `json:"name"`
	Config   GenerationConfig `json:"config"`
	Courses  []models.Course  `json:"courses" validate:"required,min=1"`
	Teachers []models.Teacher `json:"teachers" validate:"required,min=1"`
	Rooms    []models.Room    `json:"rooms" validate:"required,min=1"`
	Async    bool             `json:"async"`
}

// GenerateTimetableResponse returns the built timetable and its audit.
type GenerateTimetableResponse struct {
	TimetableID    string                      `json:"timetableId"`
	Entries        []models.ScheduleEntry      `json:"entries"`
	Unscheduled    []models.UnscheduledSession `json:"unscheduledSessions"`
	Report         models.ConflictReport       `json:"conflictReport"`
	Statistics     models.Statistics           `json:"statistics"`
	SchedulingRate float64                     `json:"schedulingRate"`
	QualityScore   float64                     `json:"qualityScore"`
}

// SaveTimetableRequest persists a generated result under a versioned name.
type SaveTimetableRequest struct {
	TimetableID string `json:"timetableId" validate:"required"`
	Name        string `json:"name"`
	Publish     bool   `json:"publish"`
}

// Generation job states.
const (
	JobStatusQueued    = "QUEUED"
	JobStatusRunning   = "RUNNING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
)

// GenerationJob tracks an asynchronous generation request.
type GenerationJob struct {
	JobID    string                     `json:"jobId"`
	Status   string                     `json:"status"`
	Progress int                        `json:"progress"`
	Result   *GenerateTimetableResponse `json:"result,omitempty"`
	Error    string                     `json:"error,omitempty"`
}

// AuditRequest asks for a clash audit over caller-supplied entries.
type AuditRequest struct {
	Entries  []models.ScheduleEntry `json:"entries" validate:"required,min=1"`
	Existing []models.ScheduleEntry `json:"existing"`
}

// TimetableQuery filters stored timetable listings.
type TimetableQuery struct {
	Status   string `form:"status" json:"status"`
	Page     int    `form:"page" json:"page"`
	PageSize int    `form:"pageSize" json:"pageSize"`
}
