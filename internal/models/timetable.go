package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimeSlot is one candidate (day, start, end) window generated from the
// working-hours configuration. Immutable and shared across a generation run.
type TimeSlot struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  int    `json:"duration"`
}

// ScheduleEntry is one placed session. Entries are created exclusively by the
// scheduler and never mutated once emitted.
type ScheduleEntry struct {
	ID                string      `json:"id,omitempty"`
	CourseCode        string      `json:"courseCode"`
	CourseName        string      `json:"courseName"`
	SessionType       SessionType `json:"sessionType"`
	TeacherID         string      `json:"teacherId"`
	TeacherName       string      `json:"teacherName"`
	RoomNumber        string      `json:"roomNumber"`
	Building          string      `json:"building,omitempty"`
	RoomCapacity      int         `json:"roomCapacity,omitempty"`
	Day               string      `json:"day"`
	StartTime         string      `json:"startTime"`
	EndTime           string      `json:"endTime"`
	Duration          int         `json:"duration"`
	Enrollment        int         `json:"enrollment,omitempty"`
	EnrolledStudents  []string    `json:"enrolledStudents,omitempty"`
	RequiredEquipment []string    `json:"requiredEquipment,omitempty"`
}

// UnscheduledSession records a required session the scheduler could not place.
type UnscheduledSession struct {
	CourseCode string `json:"courseCode"`
	Session    int    `json:"session"`
	Reason     string `json:"reason"`
}

// Statistics summarises a generated schedule for presentation layers.
type Statistics struct {
	TotalSessions      int            `json:"totalSessions"`
	CourseCount        int            `json:"courseCount"`
	TeacherCount       int            `json:"teacherCount"`
	RoomCount          int            `json:"roomCount"`
	TeacherUtilization float64        `json:"teacherUtilization"`
	RoomUtilization    float64        `json:"roomUtilization"`
	ByDay              map[string]int `json:"byDay"`
	ByType             map[string]int `json:"byType"`
	ByDepartment       map[string]int `json:"byDepartment"`
}

// TimetableStatus represents lifecycle phases for stored timetables.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "DRAFT"
	TimetableStatusPublished TimetableStatus = "PUBLISHED"
	TimetableStatusArchived  TimetableStatus = "ARCHIVED"
)

// Timetable is a versioned, persisted generation result.
type Timetable struct {
	ID             string          `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Version        int             `db:"version" json:"version"`
	Status         TimetableStatus `db:"status" json:"status"`
	QualityScore   float64         `db:"quality_score" json:"qualityScore"`
	SchedulingRate float64         `db:"scheduling_rate" json:"schedulingRate"`
	Meta           types.JSONText  `db:"meta" json:"meta"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}

// TimetableEntry is a ScheduleEntry row persisted under a timetable version.
type TimetableEntry struct {
	ID          string    `db:"id" json:"id"`
	TimetableID string    `db:"timetable_id" json:"timetableId"`
	CourseCode  string    `db:"course_code" json:"courseCode"`
	CourseName  string    `db:"course_name" json:"courseName"`
	SessionType string    `db:"session_type" json:"sessionType"`
	TeacherID   string    `db:"teacher_id" json:"teacherId"`
	TeacherName string    `db:"teacher_name" json:"teacherName"`
	RoomNumber  string    `db:"room_number" json:"roomNumber"`
	Day         string    `db:"day" json:"day"`
	StartTime   string    `db:"start_time" json:"startTime"`
	EndTime     string    `db:"end_time" json:"endTime"`
	Duration    int       `db:"duration" json:"duration"`
	Enrollment  int       `db:"enrollment" json:"enrollment"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Pagination mirrors list-endpoint paging metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
