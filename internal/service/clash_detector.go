package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/xXemran05khanXx/uniflow/internal/models"
)

// ClashPolicy tunes the audit thresholds.
type ClashPolicy struct {
	AllowWeekends bool
	MinEnrollment int
	MinDuration   int
	MaxDuration   int
}

// DefaultClashPolicy returns the institution defaults.
func DefaultClashPolicy() ClashPolicy {
	return ClashPolicy{
		AllowWeekends: false,
		MinEnrollment: 5,
		MinDuration:   30,
		MaxDuration:   180,
	}
}

// ClashDetector audits a schedule for conflicts. It runs six independent
// detectors over the combined entry list and aggregates their findings into
// a report. Every call builds its own accumulator, so one detector instance
// is safe to share across concurrent requests.
type ClashDetector struct {
	policy ClashPolicy
	logger *zap.Logger
}

// NewClashDetector builds a detector, filling zero policy fields with the
// defaults.
func NewClashDetector(policy ClashPolicy, logger *zap.Logger) *ClashDetector {
	defaults := DefaultClashPolicy()
	if policy.MinEnrollment <= 0 {
		policy.MinEnrollment = defaults.MinEnrollment
	}
	if policy.MinDuration <= 0 {
		policy.MinDuration = defaults.MinDuration
	}
	if policy.MaxDuration <= 0 {
		policy.MaxDuration = defaults.MaxDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClashDetector{policy: policy, logger: logger}
}

// Detect audits newEntries appended after existing entries. Conflict indices
// address the combined list, existing entries first.
func (d *ClashDetector) Detect(newEntries, existing []models.ScheduleEntry) models.ConflictReport {
	all := make([]models.ScheduleEntry, 0, len(existing)+len(newEntries))
	all = append(all, existing...)
	all = append(all, newEntries...)

	windows := make([]scheduleWindow, len(all))
	for i, entry := range all {
		windows[i] = newScheduleWindow(entry.Day, entry.StartTime, entry.EndTime)
	}

	var conflicts []models.Conflict
	conflicts = append(conflicts, d.teacherConflicts(all, windows)...)
	conflicts = append(conflicts, d.roomConflicts(all, windows)...)
	conflicts = append(conflicts, d.studentConflicts(all, windows)...)
	conflicts = append(conflicts, d.timeConflicts(all, windows)...)
	conflicts = append(conflicts, d.capacityConflicts(all)...)
	conflicts = append(conflicts, d.resourceConflicts(all, windows)...)

	report := buildConflictReport(len(all), conflicts)
	d.logger.Debug("clash audit complete",
		zap.Int("entries", len(all)),
		zap.Int("conflicts", len(conflicts)),
		zap.Bool("canProceed", report.CanProceed),
	)
	return report
}

func (d *ClashDetector) teacherConflicts(entries []models.ScheduleEntry, windows []scheduleWindow) []models.Conflict {
	var conflicts []models.Conflict
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].TeacherID == "" || entries[i].TeacherID != entries[j].TeacherID {
				continue
			}
			if !windows[i].valid || !windows[j].valid || !timeSlotsOverlap(windows[i], windows[j]) {
				continue
			}
			conflicts = append(conflicts, models.Conflict{
				Type:            models.ConflictTeacher,
				Severity:        models.SeverityCritical,
				AffectedEntries: []int{i, j},
				Description: fmt.Sprintf("teacher %s is double-booked on %s (%s-%s vs %s-%s)",
					entries[i].TeacherID, entries[i].Day,
					entries[i].StartTime, entries[i].EndTime,
					entries[j].StartTime, entries[j].EndTime),
				Suggestions: []string{
					"move one session to a different time slot",
					"assign a different qualified teacher",
				},
			})
		}
	}
	return conflicts
}

func (d *ClashDetector) roomConflicts(entries []models.ScheduleEntry, windows []scheduleWindow) []models.Conflict {
	var conflicts []models.Conflict
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].RoomNumber == "" || entries[i].RoomNumber != entries[j].RoomNumber {
				continue
			}
			if !windows[i].valid || !windows[j].valid || !timeSlotsOverlap(windows[i], windows[j]) {
				continue
			}
			conflicts = append(conflicts, models.Conflict{
				Type:            models.ConflictRoom,
				Severity:        models.SeverityHigh,
				AffectedEntries: []int{i, j},
				Description: fmt.Sprintf("room %s hosts overlapping sessions on %s (%s and %s)",
					entries[i].RoomNumber, entries[i].Day,
					entries[i].CourseCode, entries[j].CourseCode),
				Suggestions: []string{
					"move one session to another available room",
					"shift one session to a free time slot",
				},
			})
		}
	}
	return conflicts
}

func (d *ClashDetector) studentConflicts(entries []models.ScheduleEntry, windows []scheduleWindow) []models.Conflict {
	var conflicts []models.Conflict
	for i := 0; i < len(entries); i++ {
		if len(entries[i].EnrolledStudents) == 0 {
			continue
		}
		enrolled := make(map[string]struct{}, len(entries[i].EnrolledStudents))
		for _, id := range entries[i].EnrolledStudents {
			enrolled[id] = struct{}{}
		}
		for j := i + 1; j < len(entries); j++ {
			if len(entries[j].EnrolledStudents) == 0 {
				continue
			}
			if !windows[i].valid || !windows[j].valid || !timeSlotsOverlap(windows[i], windows[j]) {
				continue
			}
			shared := 0
			for _, id := range entries[j].EnrolledStudents {
				if _, ok := enrolled[id]; ok {
					shared++
				}
			}
			if shared == 0 {
				continue
			}
			conflicts = append(conflicts, models.Conflict{
				Type:            models.ConflictStudent,
				Severity:        models.SeverityHigh,
				AffectedEntries: []int{i, j},
				Description: fmt.Sprintf("%d student(s) are enrolled in both %s and %s on %s at overlapping times",
					shared, entries[i].CourseCode, entries[j].CourseCode, entries[i].Day),
				Suggestions: []string{
					"separate the sessions into non-overlapping slots",
				},
			})
		}
	}
	return conflicts
}

func (d *ClashDetector) timeConflicts(entries []models.ScheduleEntry, windows []scheduleWindow) []models.Conflict {
	var conflicts []models.Conflict
	for i, entry := range entries {
		window := windows[i]
		switch {
		case !window.valid:
			conflicts = append(conflicts, models.Conflict{
				Type:            models.ConflictTime,
				Severity:        models.SeverityHigh,
				AffectedEntries: []int{i},
				Description: fmt.Sprintf("entry %s has an unparseable time window %q-%q",
					entry.CourseCode, entry.StartTime, entry.EndTime),
				Suggestions: []string{"correct the start and end times to HH:MM"},
			})
		case window.start >= window.end || window.start < 0 || window.end >= minutesPerDay:
			conflicts = append(conflicts, models.Conflict{
				Type:            models.ConflictTime,
				Severity:        models.SeverityHigh,
				AffectedEntries: []int{i},
				Description: fmt.Sprintf("entry %s has an invalid time window %s-%s",
					entry.CourseCode, entry.StartTime, entry.EndTime),
				Suggestions: []string{"ensure the start time precedes the end time within one day"},
			})
		default:
			duration := window.end - window.start
			if duration < d.policy.MinDuration {
				conflicts = append(conflicts, models.Conflict{
					Type:            models.ConflictTime,
					Severity:        models.SeverityMedium,
					AffectedEntries: []int{i},
					Description:     fmt.Sprintf("Duration too short: %s runs only %d minutes", entry.CourseCode, duration),
					Suggestions:     []string{fmt.Sprintf("extend the session to at least %d minutes", d.policy.MinDuration)},
				})
			} else if duration > d.policy.MaxDuration {
				conflicts = append(conflicts, models.Conflict{
					Type:            models.ConflictTime,
					Severity:        models.SeverityMedium,
					AffectedEntries: []int{i},
					Description:     fmt.Sprintf("Duration too long: %s runs %d minutes", entry.CourseCode, duration),
					Suggestions:     []string{fmt.Sprintf("split the session or cap it at %d minutes", d.policy.MaxDuration)},
				})
			}
		}
		if isWeekend(entry.Day) && !d.policy.AllowWeekends {
			conflicts = append(conflicts, models.Conflict{
				Type:            models.ConflictTime,
				Severity:        models.SeverityLow,
				AffectedEntries: []int{i},
				Description:     fmt.Sprintf("entry %s is scheduled on %s but weekend scheduling is disabled", entry.CourseCode, entry.Day),
				Suggestions:     []string{"move the session to a working day"},
			})
		}
	}
	return conflicts
}

func (d *ClashDetector) capacityConflicts(entries []models.ScheduleEntry) []models.Conflict {
	var conflicts []models.Conflict
	for i, entry := range entries {
		if entry.Enrollment <= 0 {
			continue
		}
		if entry.RoomCapacity > 0 && entry.Enrollment > entry.RoomCapacity {
			conflicts = append(conflicts, models.Conflict{
				Type:            models.ConflictCapacity,
				Severity:        models.SeverityHigh,
				AffectedEntries: []int{i},
				Description: fmt.Sprintf("room %s seats %d but %s enrolls %d",
					entry.RoomNumber, entry.RoomCapacity, entry.CourseCode, entry.Enrollment),
				Suggestions: []string{"move the session to a larger room"},
			})
		} else if entry.Enrollment < d.policy.MinEnrollment {
			conflicts = append(conflicts, models.Conflict{
				Type:            models.ConflictCapacity,
				Severity:        models.SeverityMedium,
				AffectedEntries: []int{i},
				Description: fmt.Sprintf("%s enrolls only %d students, below the minimum of %d",
					entry.CourseCode, entry.Enrollment, d.policy.MinEnrollment),
				Suggestions: []string{"consider merging the session with another section"},
			})
		}
	}
	return conflicts
}

func (d *ClashDetector) resourceConflicts(entries []models.ScheduleEntry, windows []scheduleWindow) []models.Conflict {
	var conflicts []models.Conflict
	for i := 0; i < len(entries); i++ {
		if len(entries[i].RequiredEquipment) == 0 {
			continue
		}
		required := make(map[string]struct{}, len(entries[i].RequiredEquipment))
		for _, item := range entries[i].RequiredEquipment {
			required[item] = struct{}{}
		}
		for j := i + 1; j < len(entries); j++ {
			if len(entries[j].RequiredEquipment) == 0 {
				continue
			}
			if !windows[i].valid || !windows[j].valid || !timeSlotsOverlap(windows[i], windows[j]) {
				continue
			}
			var shared []string
			for _, item := range entries[j].RequiredEquipment {
				if _, ok := required[item]; ok {
					shared = append(shared, item)
				}
			}
			if len(shared) == 0 {
				continue
			}
			conflicts = append(conflicts, models.Conflict{
				Type:            models.ConflictResource,
				Severity:        models.SeverityMedium,
				AffectedEntries: []int{i, j},
				Description: fmt.Sprintf("%s and %s both require %s on %s at overlapping times",
					entries[i].CourseCode, entries[j].CourseCode,
					strings.Join(shared, ", "), entries[i].Day),
				Suggestions: []string{"stagger the sessions or provision additional equipment"},
			})
		}
	}
	return conflicts
}

// --- Report aggregation ---

var conflictRecommendations = map[models.ConflictType]string{
	models.ConflictTeacher:  "resolve teacher double-bookings before publishing the timetable",
	models.ConflictRoom:     "rebalance room assignments to remove overlapping bookings",
	models.ConflictStudent:  "reschedule sessions that overlap for shared student cohorts",
	models.ConflictTime:     "review flagged time windows for validity, duration and weekend policy",
	models.ConflictCapacity: "match room sizes to enrollment numbers",
	models.ConflictResource: "deconflict shared equipment or add inventory",
}

func buildConflictReport(totalEntries int, conflicts []models.Conflict) models.ConflictReport {
	sorted := make([]models.Conflict, len(conflicts))
	copy(sorted, conflicts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() > sorted[j].Severity.Rank()
	})

	byType := make(map[models.ConflictType]int, len(models.ConflictTypes))
	for _, conflictType := range models.ConflictTypes {
		byType[conflictType] = 0
	}
	maxSeverity := make(map[models.ConflictType]models.Severity)
	affected := make(map[int]struct{})

	summary := models.ConflictSummary{Total: len(sorted)}
	for _, conflict := range sorted {
		byType[conflict.Type]++
		if conflict.Severity.Rank() > maxSeverity[conflict.Type].Rank() {
			maxSeverity[conflict.Type] = conflict.Severity
		}
		for _, idx := range conflict.AffectedEntries {
			affected[idx] = struct{}{}
		}
		switch conflict.Severity {
		case models.SeverityCritical:
			summary.Critical++
		case models.SeverityHigh:
			summary.High++
		case models.SeverityMedium:
			summary.Medium++
		case models.SeverityLow:
			summary.Low++
		}
	}
	summary.AffectedSchedules = len(affected)
	if totalEntries > 0 {
		summary.ConflictRate = math.Round(float64(len(affected))/float64(totalEntries)*10000) / 100
	}

	recommendations := make([]models.Recommendation, 0, len(models.ConflictTypes))
	for _, conflictType := range models.ConflictTypes {
		if byType[conflictType] == 0 {
			continue
		}
		recommendations = append(recommendations, models.Recommendation{
			Priority: maxSeverity[conflictType],
			Action:   conflictRecommendations[conflictType],
		})
	}

	return models.ConflictReport{
		Conflicts:       sorted,
		Summary:         summary,
		ByType:          byType,
		CanProceed:      summary.Critical == 0,
		RequiresReview:  summary.Critical > 0 || summary.High > 0,
		Recommendations: recommendations,
	}
}
