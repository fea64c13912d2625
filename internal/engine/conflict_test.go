package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func baseAssignment(id string) models.Assignment {
	return models.Assignment{
		ID:           id,
		BatchID:      "batch-1",
		BatchName:    "CS Year 1",
		Group:        1,
		ModuleID:     "mod-1",
		ModuleName:   "Algorithms",
		LecturerID:   "lec-1",
		LecturerName: "Dr. Silva",
		HallID:       "hall-1",
		HallName:     "A-201",
		Day:          models.DayMonday,
		Interval:     1,
		Week:         1,
		SessionType:  models.SessionRegular,
	}
}

func TestCheckConflictLecturer(t *testing.T) {
	existing := []models.Assignment{baseAssignment("a1")}

	candidate := baseAssignment("")
	candidate.BatchID = "batch-2"
	candidate.HallID = "hall-2"

	got := CheckConflict(candidate, existing)
	require.True(t, got.HasConflict())
	assert.Equal(t, models.ConflictLecturer, got.Kind)
	require.NotNil(t, got.Detail)
	assert.Equal(t, "Dr. Silva", got.Detail.LecturerName)
	assert.Equal(t, "Algorithms", got.Detail.ModuleName)
}

func TestCheckConflictBatchGroup(t *testing.T) {
	existing := []models.Assignment{baseAssignment("a1")}

	candidate := baseAssignment("")
	candidate.LecturerID = "lec-2"
	candidate.HallID = "hall-2"

	got := CheckConflict(candidate, existing)
	assert.Equal(t, models.ConflictBatchGroup, got.Kind)
	require.NotNil(t, got.Detail)
	assert.Equal(t, "CS Year 1", got.Detail.BatchName)
	assert.Equal(t, 1, got.Detail.Group)
}

func TestCheckConflictHall(t *testing.T) {
	existing := []models.Assignment{baseAssignment("a1")}

	candidate := baseAssignment("")
	candidate.LecturerID = "lec-2"
	candidate.BatchID = "batch-2"

	got := CheckConflict(candidate, existing)
	assert.Equal(t, models.ConflictHall, got.Kind)
	require.NotNil(t, got.Detail)
	assert.Equal(t, "A-201", got.Detail.HallName)
}

func TestCheckConflictDifferentGroupSameBatch(t *testing.T) {
	existing := []models.Assignment{baseAssignment("a1")}

	candidate := baseAssignment("")
	candidate.Group = 2
	candidate.LecturerID = "lec-2"
	candidate.HallID = "hall-2"

	got := CheckConflict(candidate, existing)
	assert.False(t, got.HasConflict())
}

func TestCheckConflictOnlySameCell(t *testing.T) {
	existing := []models.Assignment{baseAssignment("a1")}

	candidate := baseAssignment("")

	candidate.Interval = 2
	assert.False(t, CheckConflict(candidate, existing).HasConflict())

	candidate.Interval = 1
	candidate.Day = models.DayTuesday
	assert.False(t, CheckConflict(candidate, existing).HasConflict())

	candidate.Day = models.DayMonday
	candidate.Week = 2
	assert.False(t, CheckConflict(candidate, existing).HasConflict())
}

func TestCheckConflictPriorityOrder(t *testing.T) {
	// The cell holds a hall clash from one entry and a lecturer clash from
	// another; lecturer wins regardless of slice order.
	hallClash := baseAssignment("a1")
	hallClash.LecturerID = "lec-9"
	hallClash.BatchID = "batch-9"

	lecturerClash := baseAssignment("a2")
	lecturerClash.HallID = "hall-9"
	lecturerClash.BatchID = "batch-9"

	candidate := baseAssignment("")

	got := CheckConflict(candidate, []models.Assignment{hallClash, lecturerClash})
	assert.Equal(t, models.ConflictLecturer, got.Kind)

	got = CheckConflict(candidate, []models.Assignment{lecturerClash, hallClash})
	assert.Equal(t, models.ConflictLecturer, got.Kind)
}

func TestCheckConflictDeterministic(t *testing.T) {
	existing := []models.Assignment{baseAssignment("a1"), baseAssignment("a2")}
	candidate := baseAssignment("")

	first := CheckConflict(candidate, existing)
	second := CheckConflict(candidate, existing)
	assert.Equal(t, first, second)
}

func TestCheckConflictIgnoresSelf(t *testing.T) {
	committed := baseAssignment("a1")
	existing := []models.Assignment{committed, func() models.Assignment {
		other := baseAssignment("a2")
		other.Day = models.DayTuesday
		return other
	}()}

	got := CheckConflict(committed, existing)
	assert.False(t, got.HasConflict())
}

func TestCheckConflictIgnoresExamPrepMarkers(t *testing.T) {
	marker := baseAssignment("a1")
	marker.SessionType = models.SessionExamPrep
	marker.Week = 15
	marker.Interval = models.ExamPrepInterval

	// A marker never blocks a teaching session placed in the same cell.
	candidate := baseAssignment("")
	candidate.Week = 15
	candidate.Interval = models.ExamPrepInterval
	got := CheckConflict(candidate, []models.Assignment{marker})
	assert.False(t, got.HasConflict())

	// Nor do markers conflict with each other or with committed sessions.
	second := baseAssignment("")
	second.SessionType = models.SessionExamPrep
	second.Week = 15
	second.Interval = models.ExamPrepInterval
	got = CheckConflict(second, []models.Assignment{marker, baseAssignment("a2")})
	assert.False(t, got.HasConflict())
}
