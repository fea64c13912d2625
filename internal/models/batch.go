package models

import "time"

// Batch represents a cohort of students enrolled in a set of modules.
type Batch struct {
	ID           string       `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	StudentCount int          `db:"student_count" json:"student_count"`
	GroupCount   int          `db:"group_count" json:"group_count"`
	Mode         ScheduleMode `db:"mode" json:"mode"`
	ModuleIDs    []string     `db:"-" json:"module_ids"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}
