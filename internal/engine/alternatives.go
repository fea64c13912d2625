package engine

import "github.com/campusops/timetable-api/internal/models"

// FindAlternatives enumerates every (day, interval) cell in the slot space of
// the given schedule mode where moving the assignment would not conflict with
// any other existing assignment. The assignment's current slot and any
// explicitly excluded slots are skipped.
//
// The check always runs against the existing set passed in; results are never
// cached since the assignment set mutates between invocations. Enumeration
// order is day-major and carries no priority meaning.
func FindAlternatives(moved models.Assignment, mode models.ScheduleMode, existing []models.Assignment, exclude ...models.TimeSlot) []models.TimeSlot {
	skip := make(map[models.TimeSlot]bool, len(exclude)+1)
	skip[moved.Slot()] = true
	for _, slot := range exclude {
		skip[slot] = true
	}

	var alternatives []models.TimeSlot
	for _, slot := range models.SlotSpace(mode) {
		if skip[slot] {
			continue
		}
		candidate := moved
		candidate.Day = slot.Day
		candidate.Interval = slot.Interval
		if CheckConflict(candidate, existing).HasConflict() {
			continue
		}
		alternatives = append(alternatives, slot)
	}
	return alternatives
}
