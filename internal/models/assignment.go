package models

import "time"

// SessionType distinguishes regular teaching sessions from exam-preparation
// sessions in the final weeks of the term.
type SessionType string

const (
	SessionRegular  SessionType = "REGULAR"
	SessionExamPrep SessionType = "EXAM_PREP"
)

// Assignment is the unit the scheduler creates, moves, and conflict-checks:
// one session of a module for one group of a batch at a fixed grid cell.
// Names are denormalized so conflict reports can be rendered without a
// catalog lookup.
type Assignment struct {
	ID           string      `db:"id" json:"id"`
	BatchID      string      `db:"batch_id" json:"batch_id"`
	BatchName    string      `db:"batch_name" json:"batch_name"`
	Group        int         `db:"group_no" json:"group"`
	ModuleID     string      `db:"module_id" json:"module_id"`
	ModuleName   string      `db:"module_name" json:"module_name"`
	LecturerID   string      `db:"lecturer_id" json:"lecturer_id"`
	LecturerName string      `db:"lecturer_name" json:"lecturer_name"`
	HallID       string      `db:"hall_id" json:"hall_id"`
	HallName     string      `db:"hall_name" json:"hall_name"`
	Day          Day         `db:"day_of_week" json:"day"`
	Interval     int         `db:"time_slot" json:"interval"`
	Week         int         `db:"week" json:"week"`
	SessionType  SessionType `db:"session_type" json:"session_type"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// Slot returns the assignment's grid cell.
func (a Assignment) Slot() TimeSlot {
	return TimeSlot{Day: a.Day, Interval: a.Interval}
}

// AssignmentFilter captures filtering options for listing assignments.
type AssignmentFilter struct {
	BatchID    string
	LecturerID string
	HallID     string
	Day        Day
	Week       int
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
