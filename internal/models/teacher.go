package models

// SlotPreference pins a teacher's liking for an exact day and start time.
type SlotPreference struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
}

// TeacherPreferences captures soft affinities consulted by the scorer.
type TeacherPreferences struct {
	PreferredDepartments []string         `json:"preferredDepartments,omitempty"`
	PreferredSlots       []SlotPreference `json:"preferredSlots,omitempty"`
}

// Teacher is a normalized instructor record supplied by the ingestion layer.
type Teacher struct {
	TeacherID      string              `json:"teacherId"`
	Name           string              `json:"name"`
	Department     string              `json:"department"`
	Specialization []string            `json:"specialization,omitempty"`
	MaxHours       int                 `json:"maxHours,omitempty"`
	Preferences    *TeacherPreferences `json:"preferences,omitempty"`
	Availability   map[string][]string `json:"availability,omitempty"`
}

// PrefersDepartment reports whether the teacher lists the department as preferred.
func (t Teacher) PrefersDepartment(department string) bool {
	if t.Preferences == nil {
		return false
	}
	for _, dep := range t.Preferences.PreferredDepartments {
		if dep == department {
			return true
		}
	}
	return false
}

// PrefersSlot reports whether the teacher has an explicit preference for
// the exact (day, startTime) pair.
func (t Teacher) PrefersSlot(day, startTime string) bool {
	if t.Preferences == nil {
		return false
	}
	for _, slot := range t.Preferences.PreferredSlots {
		if slot.Day == day && slot.StartTime == startTime {
			return true
		}
	}
	return false
}
