package models

import "fmt"

// ConflictKind classifies which exclusivity rule a candidate assignment would
// violate.
type ConflictKind string

const (
	ConflictNone       ConflictKind = "NONE"
	ConflictLecturer   ConflictKind = "LECTURER_CONFLICT"
	ConflictBatchGroup ConflictKind = "BATCH_CONFLICT"
	ConflictHall       ConflictKind = "HALL_CONFLICT"
)

// ConflictDetail describes the existing assignment that blocks a candidate.
// It carries names, not just ids, so callers can explain the conflict.
type ConflictDetail struct {
	AssignmentID string `json:"assignment_id"`
	LecturerName string `json:"lecturer_name"`
	ModuleName   string `json:"module_name"`
	HallName     string `json:"hall_name"`
	BatchName    string `json:"batch_name"`
	Group        int    `json:"group"`
	Day          Day    `json:"day"`
	Interval     int    `json:"interval"`
	Week         int    `json:"week"`
}

// Conflict is the outcome of a conflict check. Kind is ConflictNone when the
// candidate is placeable; Detail is set for every other kind.
type Conflict struct {
	Kind   ConflictKind    `json:"kind"`
	Detail *ConflictDetail `json:"detail,omitempty"`
}

// HasConflict reports whether the check found a violation.
func (c Conflict) HasConflict() bool {
	return c.Kind != ConflictNone && c.Kind != ""
}

// Message renders a human-readable description of the conflict.
func (c Conflict) Message() string {
	if !c.HasConflict() || c.Detail == nil {
		return "no conflict"
	}
	d := c.Detail
	switch c.Kind {
	case ConflictLecturer:
		return fmt.Sprintf("%s already teaches %s at %s %s", d.LecturerName, d.ModuleName, d.Day, IntervalLabels[d.Interval])
	case ConflictBatchGroup:
		return fmt.Sprintf("%s group %d already attends %s at %s %s", d.BatchName, d.Group, d.ModuleName, d.Day, IntervalLabels[d.Interval])
	case ConflictHall:
		return fmt.Sprintf("%s is already occupied by %s at %s %s", d.HallName, d.ModuleName, d.Day, IntervalLabels[d.Interval])
	}
	return "conflict"
}

// ConflictError is returned when a move or approval collides with an existing
// assignment. Alternatives, when present, are conflict-free slots the caller
// can offer instead.
type ConflictError struct {
	Conflict     Conflict   `json:"conflict"`
	Alternatives []TimeSlot `json:"alternatives,omitempty"`
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Conflict.Message()
}
