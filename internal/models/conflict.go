package models

// ConflictType is the closed set of detector categories.
type ConflictType string

const (
	ConflictTeacher  ConflictType = "TEACHER_CONFLICT"
	ConflictRoom     ConflictType = "ROOM_CONFLICT"
	ConflictStudent  ConflictType = "STUDENT_CONFLICT"
	ConflictTime     ConflictType = "TIME_CONFLICT"
	ConflictCapacity ConflictType = "CAPACITY_CONFLICT"
	ConflictResource ConflictType = "RESOURCE_CONFLICT"
)

// ConflictTypes lists every detector category in emission order.
var ConflictTypes = []ConflictType{
	ConflictTeacher,
	ConflictRoom,
	ConflictStudent,
	ConflictTime,
	ConflictCapacity,
	ConflictResource,
}

// Severity ranks how badly a conflict breaks the schedule.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank maps severities onto a strict ordering, critical highest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Conflict is one detected scheduling violation. AffectedEntries holds
// indices into the audited entry list (existing entries first).
type Conflict struct {
	Type            ConflictType `json:"type"`
	Severity        Severity     `json:"severity"`
	AffectedEntries []int        `json:"affectedEntries"`
	Description     string       `json:"description"`
	Suggestions     []string     `json:"suggestions,omitempty"`
}

// ConflictSummary aggregates counts by severity.
type ConflictSummary struct {
	Total             int     `json:"total"`
	Critical          int     `json:"critical"`
	High              int     `json:"high"`
	Medium            int     `json:"medium"`
	Low               int     `json:"low"`
	AffectedSchedules int     `json:"affectedSchedules"`
	ConflictRate      float64 `json:"conflictRate"`
}

// Recommendation is one priority-tagged action item per conflict category.
type Recommendation struct {
	Priority Severity `json:"priority"`
	Action   string   `json:"action"`
}

// ConflictReport is the full audit result. Recomputed on every audit call,
// never shared between calls.
type ConflictReport struct {
	Conflicts       []Conflict           `json:"conflicts"`
	Summary         ConflictSummary      `json:"summary"`
	ByType          map[ConflictType]int `json:"byType"`
	CanProceed      bool                 `json:"canProceed"`
	RequiresReview  bool                 `json:"requiresReview"`
	Recommendations []Recommendation     `json:"recommendations"`
}
