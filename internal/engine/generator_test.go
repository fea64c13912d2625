package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func feasibleCatalog() *models.Catalog {
	return &models.Catalog{
		Halls: []models.Hall{
			{ID: "hall-1", Name: "A-101", Capacity: 60, Type: models.HallTypeLecture},
			{ID: "hall-2", Name: "Lab-1", Capacity: 40, Type: models.HallTypeLab},
		},
		Lecturers: []models.Lecturer{
			{ID: "lec-1", Name: "Dr. Silva", ModuleIDs: []string{"mod-1", "mod-2"}},
			{ID: "lec-2", Name: "Prof. Chen", ModuleIDs: []string{"mod-2"}},
		},
		Batches: []models.Batch{
			{ID: "batch-1", Name: "CS Year 1", StudentCount: 45, GroupCount: 2, Mode: models.ModeWeekday, ModuleIDs: []string{"mod-1", "mod-2"}},
		},
		Modules: []models.Module{
			{ID: "mod-1", Name: "Algorithms", CreditHours: 4, LecturerIDs: []string{"lec-1"}, BatchIDs: []string{"batch-1"}},
			{ID: "mod-2", Name: "Networks Lab", CreditHours: 6, IsLab: true, LecturerIDs: []string{"lec-1", "lec-2"}, BatchIDs: []string{"batch-1"}},
		},
	}
}

// assertInvariants verifies lecturer, hall, and batch-group exclusivity over
// the whole set.
func assertInvariants(t *testing.T, assignments []models.Assignment) {
	t.Helper()
	lecturers := make(map[string]bool)
	halls := make(map[string]bool)
	groups := make(map[string]bool)
	for _, a := range assignments {
		cell := fmt.Sprintf("%s/%d/%d", a.Day, a.Interval, a.Week)
		lk := a.LecturerID + "@" + cell
		hk := a.HallID + "@" + cell
		gk := fmt.Sprintf("%s/%d@%s", a.BatchID, a.Group, cell)
		assert.False(t, lecturers[lk], "lecturer double-booked: %s", lk)
		assert.False(t, halls[hk], "hall double-booked: %s", hk)
		assert.False(t, groups[gk], "batch group double-booked: %s", gk)
		lecturers[lk] = true
		halls[hk] = true
		groups[gk] = true
	}
}

func TestGenerateFeasibleCatalog(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{}, nil)
	result := gen.Generate(feasibleCatalog())

	require.Empty(t, result.Issues)
	assert.Empty(t, result.Warnings)

	// mod-1: 2 sessions/week, mod-2 (lab): 1 session/week, all single group.
	assert.Len(t, result.Assignments, 3)
	assertInvariants(t, result.Assignments)

	labSessions := 0
	for _, a := range result.Assignments {
		assert.Equal(t, models.SessionRegular, a.SessionType)
		assert.Equal(t, 1, a.Week)
		assert.True(t, models.ValidInterval(a.Interval))
		if a.ModuleID == "mod-2" {
			labSessions++
		}
	}
	assert.Equal(t, 1, labSessions, "lab meets once weekly regardless of credit hours")
}

func TestGenerateSplitsOversizedBatch(t *testing.T) {
	catalog := feasibleCatalog()
	catalog.Batches[0].StudentCount = 100
	catalog.Batches[0].GroupCount = 3

	gen := NewGenerator(GeneratorConfig{}, nil)
	result := gen.Generate(catalog)

	require.Empty(t, result.Issues)
	assertInvariants(t, result.Assignments)

	// ceil(100/60) = 2 parallel groups, each sized 50; only A-101 fits 50.
	groups := make(map[int]bool)
	for _, a := range result.Assignments {
		groups[a.Group] = true
		hall := catalog.Hall(a.HallID)
		require.NotNil(t, hall)
		assert.GreaterOrEqual(t, hall.Capacity, 50)
	}
	assert.Len(t, groups, 2)
}

func TestGenerateUnderScheduledWarning(t *testing.T) {
	// Two weekend batches competing for a single lecturer: 12 sessions of
	// demand against 8 lecturer-free cells. The run must finish with
	// warnings, never an error.
	catalog := &models.Catalog{
		Halls: []models.Hall{
			{ID: "hall-1", Name: "A-101", Capacity: 100, Type: models.HallTypeLecture},
			{ID: "hall-2", Name: "A-102", Capacity: 100, Type: models.HallTypeLecture},
		},
		Lecturers: []models.Lecturer{
			{ID: "lec-1", Name: "Dr. Silva", ModuleIDs: []string{"mod-1", "mod-2", "mod-3"}},
		},
		Batches: []models.Batch{
			{ID: "batch-1", Name: "SE Weekend", StudentCount: 30, GroupCount: 1, Mode: models.ModeWeekend, ModuleIDs: []string{"mod-1", "mod-2", "mod-3"}},
			{ID: "batch-2", Name: "IT Weekend", StudentCount: 30, GroupCount: 1, Mode: models.ModeWeekend, ModuleIDs: []string{"mod-1", "mod-2", "mod-3"}},
		},
		Modules: []models.Module{
			{ID: "mod-1", Name: "Databases", CreditHours: 4},
			{ID: "mod-2", Name: "Operating Systems", CreditHours: 4},
			{ID: "mod-3", Name: "Compilers", CreditHours: 4},
		},
	}

	gen := NewGenerator(GeneratorConfig{}, nil)
	result := gen.Generate(catalog)

	require.Empty(t, result.Issues)
	assert.NotEmpty(t, result.Warnings, "contention must surface as warnings")
	assert.Len(t, result.Assignments, 8, "every lecturer-free weekend cell is used")
	assertInvariants(t, result.Assignments)

	for _, w := range result.Warnings {
		assert.Less(t, w.Placed, w.Required)
		assert.NotEmpty(t, w.BatchName)
		assert.NotEmpty(t, w.ModuleName)
	}
}

func TestValidateReportsAllIssues(t *testing.T) {
	catalog := &models.Catalog{
		Halls: []models.Hall{
			{ID: "hall-1", Name: "A-101", Capacity: 20, Type: models.HallTypeLecture},
		},
		Lecturers: []models.Lecturer{
			{ID: "lec-1", Name: "Dr. Silva", ModuleIDs: []string{"mod-1", "mod-2", "mod-3", "mod-4", "mod-5"}},
		},
		Batches: []models.Batch{
			// 200 students, group count 1: no hall holds them.
			{ID: "batch-1", Name: "Oversized", StudentCount: 200, GroupCount: 1, Mode: models.ModeWeekday, ModuleIDs: []string{"mod-1"}},
			// 5 modules x 2 sessions x 2h = 20h > 2 days x 4 x 2 = 16h budget.
			{ID: "batch-2", Name: "Overloaded", StudentCount: 15, GroupCount: 1, Mode: models.ModeWeekend, ModuleIDs: []string{"mod-1", "mod-2", "mod-3", "mod-4", "mod-5"}},
			{ID: "batch-3", Name: "Orphaned", StudentCount: 15, GroupCount: 1, Mode: models.ModeWeekday, ModuleIDs: []string{"mod-6"}},
		},
		Modules: []models.Module{
			{ID: "mod-1", Name: "Databases", CreditHours: 4},
			{ID: "mod-2", Name: "Operating Systems", CreditHours: 4},
			{ID: "mod-3", Name: "Compilers", CreditHours: 4},
			{ID: "mod-4", Name: "Networks", CreditHours: 4},
			{ID: "mod-5", Name: "Graphics", CreditHours: 4},
			{ID: "mod-6", Name: "Quantum Computing", CreditHours: 4},
		},
	}

	gen := NewGenerator(GeneratorConfig{}, nil)
	result := gen.Generate(catalog)

	require.NotEmpty(t, result.Issues)
	assert.Empty(t, result.Assignments, "issues abort generation entirely")

	kinds := make(map[IssueKind]int)
	for _, issue := range result.Issues {
		kinds[issue.Kind]++
		assert.NotEmpty(t, issue.Message)
	}
	assert.Equal(t, 1, kinds[IssueNoQualifiedLecturer])
	assert.Equal(t, 1, kinds[IssueNoCapableHall])
	assert.Equal(t, 1, kinds[IssueCreditOverflow])
}

func TestExpandTerm(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{TermWeeks: 16, ExamPrepWeeks: 2}, nil)

	weekly := []models.Assignment{
		func() models.Assignment { a := baseAssignment("a1"); a.Interval = 3; return a }(),
		func() models.Assignment {
			a := baseAssignment("a2")
			a.Day = models.DayWednesday
			a.Interval = 2
			return a
		}(),
	}

	full := gen.ExpandTerm(weekly)
	require.Len(t, full, 32)

	ids := make(map[string]bool)
	for _, a := range full {
		assert.False(t, ids[a.ID], "instance ids must be unique")
		ids[a.ID] = true
		if a.Week >= 15 {
			assert.Equal(t, models.SessionExamPrep, a.SessionType)
			assert.Equal(t, models.ExamPrepInterval, a.Interval)
		} else {
			assert.Equal(t, models.SessionRegular, a.SessionType)
			assert.NotEqual(t, models.ExamPrepInterval, a.Interval, "teaching weeks keep their placed interval")
		}
	}
}
