package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xXemran05khanXx/uniflow/internal/models"
)

func TestSchedulingRate(t *testing.T) {
	entries := []models.ScheduleEntry{
		{CourseCode: "CS101"},
		{CourseCode: "CS101"},
		{CourseCode: "MA201"},
	}

	assert.InDelta(t, 50.0, SchedulingRate(entries, 4), 0.001, "two of four courses scheduled")
	assert.InDelta(t, 100.0, SchedulingRate(entries, 2), 0.001)
	assert.Zero(t, SchedulingRate(entries, 0))
	assert.Zero(t, SchedulingRate(nil, 5))
}

func TestQualityScore(t *testing.T) {
	assert.InDelta(t, 100.0, QualityScore(100, 0), 0.001)
	assert.InDelta(t, 85.0, QualityScore(100, 3), 0.001)
	assert.Zero(t, QualityScore(40, 20), "score never goes negative")
}

func TestBuildStatistics(t *testing.T) {
	teachers := []models.Teacher{
		{TeacherID: "t1", Department: "Computer Science"},
		{TeacherID: "t2", Department: "Mathematics"},
	}
	rooms := []models.Room{{RoomNumber: "R1"}, {RoomNumber: "R2"}}
	slots := BuildTimeSlots([]string{"monday"}, "09:00", "13:00", 60, 0)

	entries := []models.ScheduleEntry{
		{CourseCode: "CS101", TeacherID: "t1", RoomNumber: "R1", Day: "monday", SessionType: models.SessionLecture},
		{CourseCode: "CS101", TeacherID: "t1", RoomNumber: "R2", Day: "monday", SessionType: models.SessionLab},
		{CourseCode: "MA201", TeacherID: "t2", RoomNumber: "R1", Day: "tuesday", SessionType: models.SessionLecture},
	}

	stats := BuildStatistics(entries, teachers, rooms, slots)

	assert.Equal(t, 3, stats.TotalSessions)
	assert.Equal(t, 2, stats.CourseCount)
	assert.Equal(t, 2, stats.TeacherCount)
	assert.Equal(t, 2, stats.RoomCount)
	assert.Equal(t, 2, stats.ByDay["monday"])
	assert.Equal(t, 1, stats.ByDay["tuesday"])
	assert.Equal(t, 2, stats.ByType["lecture"])
	assert.Equal(t, 1, stats.ByType["lab"])
	assert.Equal(t, 2, stats.ByDepartment["Computer Science"])
	assert.Equal(t, 1, stats.ByDepartment["Mathematics"])

	// 3 sessions over 2 teachers x 4 slots and 2 rooms x 4 slots.
	assert.InDelta(t, 37.5, stats.TeacherUtilization, 0.001)
	assert.InDelta(t, 37.5, stats.RoomUtilization, 0.001)
}

func TestBuildStatisticsEmpty(t *testing.T) {
	stats := BuildStatistics(nil, nil, nil, nil)
	assert.Zero(t, stats.TotalSessions)
	assert.Zero(t, stats.TeacherUtilization)
	assert.Zero(t, stats.RoomUtilization)
	assert.Empty(t, stats.ByDay)
}
