package models

// SessionType classifies how a course session is delivered.
type SessionType string

const (
	SessionLecture  SessionType = "lecture"
	SessionLab      SessionType = "lab"
	SessionTutorial SessionType = "tutorial"
	SessionSeminar  SessionType = "seminar"
)

// Course is a normalized course record supplied by the ingestion layer.
// The engine treats it as read-only input.
type Course struct {
	CourseCode        string      `json:"courseCode"`
	CourseName        string      `json:"courseName"`
	Credits           int         `json:"credits"`
	Department        string      `json:"department"`
	MaxStudents       int         `json:"maxStudents"`
	HoursPerWeek      int         `json:"hoursPerWeek,omitempty"`
	SessionsPerWeek   int         `json:"sessionsPerWeek,omitempty"`
	SessionType       SessionType `json:"sessionType"`
	RequiredEquipment []string    `json:"requiredEquipment,omitempty"`
	EnrolledStudents  []string    `json:"enrolledStudents,omitempty"`
}

// WeeklySessions returns how many sessions the course needs per week,
// deriving a default when the field is absent.
func (c Course) WeeklySessions() int {
	if c.SessionsPerWeek > 0 {
		return c.SessionsPerWeek
	}
	if c.HoursPerWeek > 0 {
		return c.HoursPerWeek
	}
	if c.Credits > 0 {
		return c.Credits
	}
	return 1
}

// Priority ranks courses for greedy placement. Heavier, larger courses
// are placed first so they get the widest choice of slots.
func (c Course) Priority() int {
	return c.Credits * c.MaxStudents
}
