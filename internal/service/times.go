package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

var (
	clockPattern      = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	bareDigitsPattern = regexp.MustCompile(`^\d{3,4}$`)
	twelveHourPattern = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*(AM|PM)$`)
)

// normalizeTime coerces the accepted clock shapes (HH:MM, bare HHMM/HMM
// digits, 12-hour H:MM AM/PM) into zero-padded 24-hour HH:MM. Strings that
// match none of the shapes pass through unchanged so the time-validity
// detector can report them instead of the caller failing.
func normalizeTime(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if m := twelveHourPattern.FindStringSubmatch(trimmed); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 1 || hour > 12 || minute > 59 {
			return raw
		}
		meridiem := strings.ToUpper(m[3])
		if meridiem == "PM" && hour != 12 {
			hour += 12
		}
		if meridiem == "AM" && hour == 12 {
			hour = 0
		}
		return fmt.Sprintf("%02d:%02d", hour, minute)
	}

	if m := clockPattern.FindStringSubmatch(trimmed); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return raw
		}
		return fmt.Sprintf("%02d:%02d", hour, minute)
	}

	if bareDigitsPattern.MatchString(trimmed) {
		value, _ := strconv.Atoi(trimmed)
		hour, minute := value/100, value%100
		if hour > 23 || minute > 59 {
			return raw
		}
		return fmt.Sprintf("%02d:%02d", hour, minute)
	}

	return raw
}

// parseMinutes converts a clock string into minutes since midnight. The
// second return reports whether the string names a real clock reading;
// out-of-range hours or minutes are rejected, not wrapped.
func parseMinutes(value string) (int, bool) {
	m := clockPattern.FindStringSubmatch(normalizeTime(value))
	if m == nil {
		return 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func formatMinutes(total int) string {
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// windowsOverlap reports whether two half-open minute windows intersect.
// Symmetric, and a window always overlaps an identical copy of itself.
func windowsOverlap(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}

// timeSlotsOverlap reports whether two entries collide in time. Entries on
// different days never overlap; unparseable windows never overlap either,
// they are surfaced separately by the time-validity detector.
func timeSlotsOverlap(a, b scheduleWindow) bool {
	if !strings.EqualFold(a.day, b.day) {
		return false
	}
	return windowsOverlap(a.start, a.end, b.start, b.end)
}

type scheduleWindow struct {
	day        string
	start, end int
	valid      bool
}

func newScheduleWindow(day, startTime, endTime string) scheduleWindow {
	start, okStart := parseMinutes(startTime)
	end, okEnd := parseMinutes(endTime)
	return scheduleWindow{day: day, start: start, end: end, valid: okStart && okEnd}
}

func isWeekend(day string) bool {
	switch strings.ToLower(strings.TrimSpace(day)) {
	case "saturday", "sunday":
		return true
	}
	return false
}
