package models

import "time"

// Module represents a course unit taught to one or more batches.
type Module struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	CreditHours int       `db:"credit_hours" json:"credit_hours"`
	IsLab       bool      `db:"is_lab" json:"is_lab"`
	LecturerIDs []string  `db:"-" json:"lecturer_ids"`
	BatchIDs    []string  `db:"-" json:"batch_ids"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
