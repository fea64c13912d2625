package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func TestFindAlternativesSoundness(t *testing.T) {
	moved := baseAssignment("a1")

	blocker := baseAssignment("a2")
	blocker.Day = models.DayTuesday
	blocker.Interval = 2

	existing := []models.Assignment{moved, blocker}

	alternatives := FindAlternatives(moved, models.ModeWeekday, existing)
	require.NotEmpty(t, alternatives)

	for _, slot := range alternatives {
		candidate := moved
		candidate.Day = slot.Day
		candidate.Interval = slot.Interval
		assert.False(t, CheckConflict(candidate, existing).HasConflict(),
			"slot %s/%d must be conflict-free when substituted in", slot.Day, slot.Interval)
	}
}

func TestFindAlternativesExcludesSlots(t *testing.T) {
	moved := baseAssignment("a1")
	existing := []models.Assignment{moved}

	attempted := models.TimeSlot{Day: models.DayFriday, Interval: 4}
	alternatives := FindAlternatives(moved, models.ModeWeekday, existing, attempted)

	// 5 days x 4 intervals minus the current slot and the attempted slot.
	assert.Len(t, alternatives, 18)
	for _, slot := range alternatives {
		assert.NotEqual(t, moved.Slot(), slot)
		assert.NotEqual(t, attempted, slot)
	}
}

func TestFindAlternativesIgnoresMovedAssignment(t *testing.T) {
	// The moved assignment itself sits in the existing set; it must never
	// block its own relocation candidates.
	moved := baseAssignment("a1")
	moved.Day = models.DaySaturday
	existing := []models.Assignment{moved}

	alternatives := FindAlternatives(moved, models.ModeWeekend, existing)
	assert.Len(t, alternatives, 7, "every weekend cell except the current one is free")
}

func TestFindAlternativesBlockedCells(t *testing.T) {
	moved := baseAssignment("a1")

	// Lecturer teaches something else on every Tuesday interval.
	var existing []models.Assignment
	existing = append(existing, moved)
	for interval := 1; interval <= models.IntervalsPerDay; interval++ {
		other := baseAssignment("")
		other.ID = "tue-" + models.IntervalLabels[interval]
		other.BatchID = "batch-9"
		other.HallID = "hall-9"
		other.Day = models.DayTuesday
		other.Interval = interval
		existing = append(existing, other)
	}

	alternatives := FindAlternatives(moved, models.ModeWeekday, existing)
	for _, slot := range alternatives {
		assert.NotEqual(t, models.DayTuesday, slot.Day, "Tuesday is fully booked for this lecturer")
	}
	// 20 weekday cells minus current minus 4 Tuesday cells.
	assert.Len(t, alternatives, 15)
}
