package models

import (
	"time"

	"github.com/lib/pq"
)

// HallType distinguishes the kind of room a hall provides.
type HallType string

const (
	HallTypeLecture  HallType = "LECTURE"
	HallTypeLab      HallType = "LAB"
	HallTypeTutorial HallType = "TUTORIAL"
)

// Hall represents a teaching room. Immutable during a scheduling run.
type Hall struct {
	ID         string         `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	Capacity   int            `db:"capacity" json:"capacity"`
	Type       HallType       `db:"type" json:"type"`
	Facilities pq.StringArray `db:"facilities" json:"facilities"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}
