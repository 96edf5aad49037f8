package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/xXemran05khanXx/uniflow/internal/models"
)

const (
	reasonNoValidSlot   = "no valid slot found"
	reasonBudgetReached = "iteration budget exhausted"

	lunchStartMinutes = 12 * 60
	lunchEndMinutes   = 13 * 60

	baseAssignmentScore = 50
)

// GreedyScheduler places course sessions one at a time. For every required
// session it scans the full (slot x room x teacher) product in a fixed
// deterministic order, keeps the highest scoring legal tuple (first seen wins
// on ties) and commits it before moving on, so later validity checks observe
// earlier placements. Placement failures are soft: the scheduler always
// returns a best-effort partial schedule plus diagnostics.
type GreedyScheduler struct {
	maxEvaluations int
	logger         *zap.Logger
}

// NewGreedyScheduler builds a scheduler with an explicit tuple-evaluation
// budget. A non-positive budget means unbounded search.
func NewGreedyScheduler(maxEvaluations int, logger *zap.Logger) *GreedyScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GreedyScheduler{maxEvaluations: maxEvaluations, logger: logger}
}

type placement struct {
	score   int
	teacher models.Teacher
	room    models.Room
	slot    models.TimeSlot
	window  scheduleWindow
}

// Schedule assigns every required session of every course to a (teacher,
// room, slot) tuple. Courses are processed in descending priority order
// (credits x maxStudents, course code breaking ties) so contested resources
// go to the heaviest courses first.
func (g *GreedyScheduler) Schedule(
	ctx context.Context,
	courses []models.Course,
	teachers []models.Teacher,
	rooms []models.Room,
	slots []models.TimeSlot,
) ([]models.ScheduleEntry, []models.UnscheduledSession, error) {
	ordered := make([]models.Course, len(courses))
	copy(ordered, courses)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority() == ordered[j].Priority() {
			return ordered[i].CourseCode < ordered[j].CourseCode
		}
		return ordered[i].Priority() > ordered[j].Priority()
	})

	state := newScheduleState()
	unscheduled := make([]models.UnscheduledSession, 0)
	evaluations := 0
	exhausted := false

	for _, course := range ordered {
		course := course
		candidateRooms := lo.Filter(rooms, func(room models.Room, _ int) bool {
			return roomSuits(room, course)
		})
		candidateTeachers := lo.Filter(teachers, func(teacher models.Teacher, _ int) bool {
			return teacherQualified(teacher, course)
		})

		for session := 1; session <= course.WeeklySessions(); session++ {
			if err := ctx.Err(); err != nil {
				return state.entries, unscheduled, err
			}
			if exhausted {
				unscheduled = append(unscheduled, models.UnscheduledSession{
					CourseCode: course.CourseCode,
					Session:    session,
					Reason:     reasonBudgetReached,
				})
				continue
			}

			best := placement{score: -1}
			for _, slot := range slots {
				window := newScheduleWindow(slot.Day, slot.StartTime, slot.EndTime)
				if !window.valid {
					continue
				}
				for _, room := range candidateRooms {
					for _, teacher := range candidateTeachers {
						if g.maxEvaluations > 0 && evaluations >= g.maxEvaluations {
							exhausted = true
							break
						}
						evaluations++
						if !state.validAssignment(course, teacher, room, window) {
							continue
						}
						if score := scoreAssignment(course, teacher, room, slot, window, state); score > best.score {
							best = placement{score: score, teacher: teacher, room: room, slot: slot, window: window}
						}
					}
					if exhausted {
						break
					}
				}
				if exhausted {
					break
				}
			}

			if best.score < 0 {
				reason := reasonNoValidSlot
				if exhausted {
					reason = reasonBudgetReached
				}
				unscheduled = append(unscheduled, models.UnscheduledSession{
					CourseCode: course.CourseCode,
					Session:    session,
					Reason:     reason,
				})
				continue
			}
			state.place(course, best.teacher, best.room, best.slot, best.window)
		}
	}

	g.logger.Info("greedy scheduling finished",
		zap.Int("entries", len(state.entries)),
		zap.Int("unscheduled", len(unscheduled)),
		zap.Int("evaluations", evaluations),
	)
	return state.entries, unscheduled, nil
}

// --- In-progress schedule state ---

type occupancyKey struct {
	id  string
	day string
}

type minuteWindow struct {
	start, end int
}

type scheduleState struct {
	entries     []models.ScheduleEntry
	teacherBusy map[occupancyKey][]minuteWindow
	roomBusy    map[occupancyKey][]minuteWindow
	teacherDays map[occupancyKey]int
}

func newScheduleState() *scheduleState {
	return &scheduleState{
		teacherBusy: make(map[occupancyKey][]minuteWindow),
		roomBusy:    make(map[occupancyKey][]minuteWindow),
		teacherDays: make(map[occupancyKey]int),
	}
}

// validAssignment is the pure legality predicate for one tuple against the
// schedule built so far. Every condition must hold.
func (s *scheduleState) validAssignment(course models.Course, teacher models.Teacher, room models.Room, window scheduleWindow) bool {
	if !window.valid {
		return false
	}
	day := strings.ToLower(window.day)
	for _, busy := range s.teacherBusy[occupancyKey{id: teacher.TeacherID, day: day}] {
		if windowsOverlap(window.start, window.end, busy.start, busy.end) {
			return false
		}
	}
	for _, busy := range s.roomBusy[occupancyKey{id: room.RoomNumber, day: day}] {
		if windowsOverlap(window.start, window.end, busy.start, busy.end) {
			return false
		}
	}
	if room.Capacity < course.MaxStudents {
		return false
	}
	if !teacherQualified(teacher, course) {
		return false
	}
	if course.SessionType == models.SessionLab && !room.IsLab {
		return false
	}
	return room.HasEquipment(course.RequiredEquipment)
}

func (s *scheduleState) place(course models.Course, teacher models.Teacher, room models.Room, slot models.TimeSlot, window scheduleWindow) {
	entry := models.ScheduleEntry{
		ID:                uuid.NewString(),
		CourseCode:        course.CourseCode,
		CourseName:        course.CourseName,
		SessionType:       course.SessionType,
		TeacherID:         teacher.TeacherID,
		TeacherName:       teacher.Name,
		RoomNumber:        room.RoomNumber,
		Building:          room.Building,
		RoomCapacity:      room.Capacity,
		Day:               slot.Day,
		StartTime:         slot.StartTime,
		EndTime:           slot.EndTime,
		Duration:          slot.Duration,
		Enrollment:        course.MaxStudents,
		EnrolledStudents:  course.EnrolledStudents,
		RequiredEquipment: course.RequiredEquipment,
	}
	s.entries = append(s.entries, entry)

	day := strings.ToLower(window.day)
	busy := minuteWindow{start: window.start, end: window.end}
	teacherKey := occupancyKey{id: teacher.TeacherID, day: day}
	s.teacherBusy[teacherKey] = append(s.teacherBusy[teacherKey], busy)
	roomKey := occupancyKey{id: room.RoomNumber, day: day}
	s.roomBusy[roomKey] = append(s.roomBusy[roomKey], busy)
	s.teacherDays[teacherKey]++
}

// --- Candidate filters ---

// roomSuits prunes rooms that can never host the course; the full predicate
// is still rechecked in validAssignment.
func roomSuits(room models.Room, course models.Course) bool {
	if room.Capacity < course.MaxStudents {
		return false
	}
	if course.SessionType == models.SessionLab && !room.IsLab {
		return false
	}
	return room.HasEquipment(course.RequiredEquipment)
}

// teacherQualified accepts a department match or any specialization token
// that substring-matches (either direction, case-insensitive) the course
// name, code or department.
func teacherQualified(teacher models.Teacher, course models.Course) bool {
	if teacher.Department != "" && strings.EqualFold(teacher.Department, course.Department) {
		return true
	}
	targets := []string{course.CourseName, course.CourseCode, course.Department}
	for _, token := range teacher.Specialization {
		token := strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		for _, target := range targets {
			target := strings.ToLower(strings.TrimSpace(target))
			if target == "" {
				continue
			}
			if strings.Contains(target, token) || strings.Contains(token, target) {
				return true
			}
		}
	}
	return false
}

// --- Scoring ---

// scoreAssignment rates a legal tuple. All bonuses are independent and
// additive. Conflicting tuples never reach this function, so no conflict
// penalty term exists here.
func scoreAssignment(course models.Course, teacher models.Teacher, room models.Room, slot models.TimeSlot, window scheduleWindow, state *scheduleState) int {
	score := baseAssignmentScore

	if teacher.PrefersDepartment(course.Department) {
		score += 20
	}
	if teacher.PrefersSlot(slot.Day, slot.StartTime) {
		score += 15
	}
	if room.Capacity > 0 {
		utilization := float64(course.MaxStudents) / float64(room.Capacity)
		if utilization >= 0.70 && utilization <= 0.90 {
			score += 10
		}
	}
	score += 5 * matchedEquipment(room, course.RequiredEquipment)

	day := strings.ToLower(window.day)
	if state.teacherDays[occupancyKey{id: teacher.TeacherID, day: day}] > 0 {
		score += 5
	}
	if window.start >= lunchStartMinutes && window.start < lunchEndMinutes {
		score -= 10
	}
	return score
}

func matchedEquipment(room models.Room, required []string) int {
	if len(required) == 0 {
		return 0
	}
	available := make(map[string]struct{}, len(room.Equipment))
	for _, item := range room.Equipment {
		available[item] = struct{}{}
	}
	matched := 0
	for _, item := range required {
		if _, ok := available[item]; ok {
			matched++
		}
	}
	return matched
}
