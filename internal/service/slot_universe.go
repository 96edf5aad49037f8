package service

import "github.com/xXemran05khanXx/uniflow/internal/models"

// BuildTimeSlots materializes the ordered candidate slot universe for one
// generation run: one slot per working day per step, where the step is the
// slot duration plus the inter-slot break. The sequence is day-major and
// deterministic. A degenerate window (start at or past end) yields an empty
// universe rather than an error.
func BuildTimeSlots(workingDays []string, dayStart, dayEnd string, slotDuration, breakDuration int) []models.TimeSlot {
	startMin, okStart := parseMinutes(dayStart)
	endMin, okEnd := parseMinutes(dayEnd)
	if !okStart || !okEnd || slotDuration <= 0 || breakDuration < 0 {
		return nil
	}

	step := slotDuration + breakDuration
	var slots []models.TimeSlot
	for _, day := range workingDays {
		for current := startMin; current+slotDuration <= endMin; current += step {
			slots = append(slots, models.TimeSlot{
				Day:       day,
				StartTime: formatMinutes(current),
				EndTime:   formatMinutes(current + slotDuration),
				Duration:  slotDuration,
			})
		}
	}
	return slots
}
