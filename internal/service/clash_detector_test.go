package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xXemran05khanXx/uniflow/internal/models"
)

func newTestDetector() *ClashDetector {
	return NewClashDetector(DefaultClashPolicy(), zap.NewNop())
}

func entry(course, teacher, room, day, start, end string) models.ScheduleEntry {
	s, _ := parseMinutes(start)
	e, _ := parseMinutes(end)
	return models.ScheduleEntry{
		CourseCode: course,
		TeacherID:  teacher,
		RoomNumber: room,
		Day:        day,
		StartTime:  start,
		EndTime:    end,
		Duration:   e - s,
		Enrollment: 20,
	}
}

func TestClashDetectorCleanSchedule(t *testing.T) {
	entries := []models.ScheduleEntry{
		entry("CS101", "t1", "R1", "monday", "09:00", "10:00"),
		entry("MA201", "t2", "R2", "monday", "09:00", "10:00"),
		entry("CS101", "t1", "R1", "tuesday", "09:00", "10:00"),
	}

	report := newTestDetector().Detect(entries, nil)

	assert.Empty(t, report.Conflicts)
	assert.True(t, report.CanProceed)
	assert.False(t, report.RequiresReview)
	assert.Empty(t, report.Recommendations)
	require.Len(t, report.ByType, 6, "every category appears even at zero")
	for _, conflictType := range models.ConflictTypes {
		assert.Zero(t, report.ByType[conflictType])
	}
}

func TestClashDetectorTeacherDoubleBooking(t *testing.T) {
	entries := []models.ScheduleEntry{
		entry("CS101", "t1", "R1", "monday", "09:00", "10:00"),
		entry("MA201", "t1", "R2", "monday", "09:30", "10:30"),
	}

	report := newTestDetector().Detect(entries, nil)

	require.Equal(t, 1, report.ByType[models.ConflictTeacher])
	assert.Equal(t, 1, report.Summary.Critical)
	assert.False(t, report.CanProceed)
	assert.True(t, report.RequiresReview)

	conflict := report.Conflicts[0]
	assert.Equal(t, models.ConflictTeacher, conflict.Type)
	assert.Equal(t, models.SeverityCritical, conflict.Severity)
	assert.ElementsMatch(t, []int{0, 1}, conflict.AffectedEntries)
}

func TestClashDetectorRoomOverlap(t *testing.T) {
	entries := []models.ScheduleEntry{
		entry("CS101", "t1", "R1", "monday", "09:00", "10:00"),
		entry("MA201", "t2", "R1", "monday", "09:00", "10:00"),
	}

	report := newTestDetector().Detect(entries, nil)

	assert.Equal(t, 1, report.ByType[models.ConflictRoom])
	assert.Equal(t, 1, report.Summary.High)
	assert.True(t, report.CanProceed, "no critical conflicts")
	assert.True(t, report.RequiresReview, "high conflicts still need review")
}

func TestClashDetectorAdjacentSessionsDoNotClash(t *testing.T) {
	entries := []models.ScheduleEntry{
		entry("CS101", "t1", "R1", "monday", "09:00", "10:00"),
		entry("MA201", "t1", "R1", "monday", "10:00", "11:00"),
	}

	report := newTestDetector().Detect(entries, nil)
	assert.Empty(t, report.Conflicts, "back-to-back sessions share a boundary, not time")
}

func TestClashDetectorStudentOverlap(t *testing.T) {
	a := entry("CS101", "t1", "R1", "monday", "09:00", "10:00")
	a.EnrolledStudents = []string{"s1", "s2", "s3"}
	b := entry("MA201", "t2", "R2", "monday", "09:30", "10:30")
	b.EnrolledStudents = []string{"s3", "s4"}
	c := entry("PH150", "t3", "R3", "monday", "09:30", "10:30")

	report := newTestDetector().Detect([]models.ScheduleEntry{a, b, c}, nil)

	require.Equal(t, 1, report.ByType[models.ConflictStudent])
	assert.Contains(t, report.Conflicts[0].Description, "1 student(s)")
}

func TestClashDetectorTimeValidity(t *testing.T) {
	broken := entry("CS101", "t1", "R1", "monday", "whenever", "10:00")
	inverted := entry("MA201", "t2", "R2", "monday", "11:00", "09:00")
	outOfRange := entry("PH150", "t3", "R3", "monday", "09:00", "09:99")

	report := newTestDetector().Detect([]models.ScheduleEntry{broken, inverted, outOfRange}, nil)

	assert.Equal(t, 3, report.ByType[models.ConflictTime])
	assert.Equal(t, 3, report.Summary.High)
}

func TestClashDetectorDurationBounds(t *testing.T) {
	short := entry("CS101", "t1", "R1", "monday", "09:00", "09:15")
	long := entry("MA201", "t2", "R2", "monday", "09:00", "13:00")

	report := newTestDetector().Detect([]models.ScheduleEntry{short, long}, nil)

	require.Equal(t, 2, report.ByType[models.ConflictTime])
	descriptions := []string{report.Conflicts[0].Description, report.Conflicts[1].Description}
	assert.Condition(t, func() bool {
		for _, d := range descriptions {
			if d == "Duration too short: CS101 runs only 15 minutes" {
				return true
			}
		}
		return false
	})
	assert.Condition(t, func() bool {
		for _, d := range descriptions {
			if d == "Duration too long: MA201 runs 240 minutes" {
				return true
			}
		}
		return false
	})
}

func TestClashDetectorWeekendPolicy(t *testing.T) {
	saturday := entry("CS101", "t1", "R1", "saturday", "09:00", "10:00")

	report := newTestDetector().Detect([]models.ScheduleEntry{saturday}, nil)
	assert.Equal(t, 1, report.ByType[models.ConflictTime])
	assert.Equal(t, 1, report.Summary.Low)

	permissive := NewClashDetector(ClashPolicy{AllowWeekends: true}, zap.NewNop())
	report = permissive.Detect([]models.ScheduleEntry{saturday}, nil)
	assert.Empty(t, report.Conflicts)
}

func TestClashDetectorCapacity(t *testing.T) {
	over := entry("CS101", "t1", "R1", "monday", "09:00", "10:00")
	over.Enrollment = 50
	over.RoomCapacity = 40
	tiny := entry("MA201", "t2", "R2", "monday", "10:00", "11:00")
	tiny.Enrollment = 2
	unknown := entry("PH150", "t3", "R3", "monday", "11:00", "12:00")
	unknown.Enrollment = 0

	report := newTestDetector().Detect([]models.ScheduleEntry{over, tiny, unknown}, nil)

	assert.Equal(t, 2, report.ByType[models.ConflictCapacity], "zero enrollment is skipped")
	assert.Equal(t, 1, report.Summary.High)
	assert.Equal(t, 1, report.Summary.Medium)
}

func TestClashDetectorSharedEquipment(t *testing.T) {
	a := entry("CS101", "t1", "R1", "monday", "09:00", "10:00")
	a.RequiredEquipment = []string{"projector"}
	b := entry("MA201", "t2", "R2", "monday", "09:30", "10:30")
	b.RequiredEquipment = []string{"projector", "speakers"}

	report := newTestDetector().Detect([]models.ScheduleEntry{a, b}, nil)

	require.Equal(t, 1, report.ByType[models.ConflictResource])
	assert.Contains(t, report.Conflicts[0].Description, "projector")
}

func TestClashDetectorExistingEntriesOffsetIndices(t *testing.T) {
	existing := []models.ScheduleEntry{
		entry("CS101", "t1", "R1", "monday", "09:00", "10:00"),
	}
	incoming := []models.ScheduleEntry{
		entry("MA201", "t1", "R2", "monday", "09:30", "10:30"),
	}

	report := newTestDetector().Detect(incoming, existing)

	require.Equal(t, 1, report.ByType[models.ConflictTeacher])
	assert.ElementsMatch(t, []int{0, 1}, report.Conflicts[0].AffectedEntries,
		"indices address the combined list, existing first")
}

func TestClashDetectorSeverityOrdering(t *testing.T) {
	doubleBooked := []models.ScheduleEntry{
		entry("CS101", "t1", "R1", "monday", "09:00", "10:00"),
		entry("MA201", "t1", "R2", "monday", "09:30", "10:30"),
	}
	tiny := entry("PH150", "t3", "R3", "monday", "11:00", "12:00")
	tiny.Enrollment = 2

	report := newTestDetector().Detect(append(doubleBooked, tiny), nil)

	require.GreaterOrEqual(t, len(report.Conflicts), 2)
	for i := 1; i < len(report.Conflicts); i++ {
		assert.GreaterOrEqual(t,
			report.Conflicts[i-1].Severity.Rank(),
			report.Conflicts[i].Severity.Rank(),
			"conflicts sort most severe first")
	}
}

func TestClashDetectorPermutationInvariance(t *testing.T) {
	entries := []models.ScheduleEntry{
		entry("CS101", "t1", "R1", "monday", "09:00", "10:00"),
		entry("MA201", "t1", "R2", "monday", "09:30", "10:30"),
		entry("PH150", "t2", "R1", "monday", "09:00", "10:00"),
		entry("CH210", "t3", "R3", "saturday", "09:00", "09:10"),
	}

	detector := newTestDetector()
	baseline := detector.Detect(entries, nil)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]models.ScheduleEntry, len(entries))
		copy(shuffled, entries)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		report := detector.Detect(shuffled, nil)
		assert.Equal(t, baseline.Summary, report.Summary)
		assert.Equal(t, baseline.ByType, report.ByType)
		assert.Equal(t, baseline.CanProceed, report.CanProceed)
	}
}

func TestClashDetectorRecommendationsPerCategory(t *testing.T) {
	entries := []models.ScheduleEntry{
		entry("CS101", "t1", "R1", "monday", "09:00", "10:00"),
		entry("MA201", "t1", "R1", "monday", "09:30", "10:30"),
	}

	report := newTestDetector().Detect(entries, nil)

	// teacher and room categories both fire, one recommendation each.
	require.Len(t, report.Recommendations, 2)
	assert.Equal(t, models.SeverityCritical, report.Recommendations[0].Priority)
	assert.Equal(t, models.SeverityHigh, report.Recommendations[1].Priority)
}

func TestClashDetectorConflictRate(t *testing.T) {
	entries := []models.ScheduleEntry{
		entry("CS101", "t1", "R1", "monday", "09:00", "10:00"),
		entry("MA201", "t1", "R2", "monday", "09:30", "10:30"),
		entry("PH150", "t2", "R3", "tuesday", "09:00", "10:00"),
		entry("CH210", "t3", "R4", "tuesday", "09:00", "10:00"),
	}

	report := newTestDetector().Detect(entries, nil)
	assert.InDelta(t, 50.0, report.Summary.ConflictRate, 0.001, "two of four entries affected")
	assert.Equal(t, 2, report.Summary.AffectedSchedules)
}
