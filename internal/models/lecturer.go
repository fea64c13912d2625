package models

import "time"

// Lecturer represents an instructor with the modules they are qualified to teach.
// Availability is derived from the assignment set, never stored.
type Lecturer struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	ModuleIDs []string  `db:"-" json:"module_ids"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// QualifiedFor reports whether the lecturer may teach the module.
func (l Lecturer) QualifiedFor(moduleID string) bool {
	for _, id := range l.ModuleIDs {
		if id == moduleID {
			return true
		}
	}
	return false
}
