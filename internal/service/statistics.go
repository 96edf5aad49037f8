package service

import (
	"math"

	"github.com/samber/lo"

	"github.com/xXemran05khanXx/uniflow/internal/models"
)

// SchedulingRate is the percentage of distinct courses that received at
// least one scheduled session.
func SchedulingRate(entries []models.ScheduleEntry, totalCourses int) float64 {
	if totalCourses <= 0 {
		return 0
	}
	scheduled := lo.Uniq(lo.Map(entries, func(entry models.ScheduleEntry, _ int) string {
		return entry.CourseCode
	}))
	return float64(len(scheduled)) / float64(totalCourses) * 100
}

// QualityScore folds the scheduling rate and the audit's conflict count into
// a single 0-100 figure: max(0, schedulingRate - 5 x conflictCount).
func QualityScore(schedulingRate float64, conflictCount int) float64 {
	return math.Max(0, schedulingRate-5*float64(conflictCount))
}

// BuildStatistics summarises a generated schedule against the input
// collections and slot universe. Utilization is the share of (resource x
// slot) capacity actually booked.
func BuildStatistics(entries []models.ScheduleEntry, teachers []models.Teacher, rooms []models.Room, slots []models.TimeSlot) models.Statistics {
	stats := models.Statistics{
		TotalSessions: len(entries),
		ByDay:         make(map[string]int),
		ByType:        make(map[string]int),
		ByDepartment:  make(map[string]int),
	}

	teacherDepartments := lo.SliceToMap(teachers, func(teacher models.Teacher) (string, string) {
		return teacher.TeacherID, teacher.Department
	})

	courses := make(map[string]struct{})
	usedTeachers := make(map[string]struct{})
	usedRooms := make(map[string]struct{})
	for _, entry := range entries {
		courses[entry.CourseCode] = struct{}{}
		usedTeachers[entry.TeacherID] = struct{}{}
		usedRooms[entry.RoomNumber] = struct{}{}
		stats.ByDay[entry.Day]++
		stats.ByType[string(entry.SessionType)]++
		if dep, ok := teacherDepartments[entry.TeacherID]; ok && dep != "" {
			stats.ByDepartment[dep]++
		}
	}

	stats.CourseCount = len(courses)
	stats.TeacherCount = len(usedTeachers)
	stats.RoomCount = len(usedRooms)

	if capacity := len(teachers) * len(slots); capacity > 0 {
		stats.TeacherUtilization = math.Round(float64(len(entries))/float64(capacity)*10000) / 100
	}
	if capacity := len(rooms) * len(slots); capacity > 0 {
		stats.RoomUtilization = math.Round(float64(len(entries))/float64(capacity)*10000) / 100
	}
	return stats
}
