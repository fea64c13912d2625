package dto

import (
	"github.com/campusops/timetable-api/internal/engine"
	"github.com/campusops/timetable-api/internal/models"
)

// GenerateTimetableRequest triggers a full schedule regeneration.
type GenerateTimetableRequest struct {
	// DryRun computes the schedule without replacing the stored set.
	DryRun bool `json:"dryRun"`
	// ExpandTerm materialises the weekly template across the whole term,
	// tagging exam-preparation weeks.
	ExpandTerm bool `json:"expandTerm"`
}

// GenerateTimetableResponse reports the outcome of a generation run. Issues
// and warnings follow the partial-success model: issues abort the run,
// warnings do not.
type GenerateTimetableResponse struct {
	Assignments []models.Assignment      `json:"assignments"`
	Warnings    []engine.UnderScheduled  `json:"warnings"`
	Issues      []engine.ValidationIssue `json:"issues"`
	Persisted   bool                     `json:"persisted"`
}

// MoveAssignmentRequest attempts a single-slot move, typically from a
// drag-and-drop edit.
type MoveAssignmentRequest struct {
	Day      models.Day `json:"day" validate:"required"`
	Interval int        `json:"interval" validate:"required,min=1,max=4"`
}

// MoveAssignmentResponse returns the updated assignment on success.
type MoveAssignmentResponse struct {
	Assignment *models.Assignment `json:"assignment"`
}

// AlternativesQuery scopes an alternative-slot search. Target day/interval,
// when set, mark the attempted slot so it is excluded from the results.
type AlternativesQuery struct {
	TargetDay      models.Day `form:"targetDay"`
	TargetInterval int        `form:"targetInterval"`
}

// TimetableQuery filters the timetable grid listing.
type TimetableQuery struct {
	BatchID    string     `form:"batchId"`
	LecturerID string     `form:"lecturerId"`
	HallID     string     `form:"hallId"`
	Day        models.Day `form:"day"`
	Week       int        `form:"week"`
	Page       int        `form:"page"`
	PageSize   int        `form:"limit"`
	SortBy     string     `form:"sortBy"`
	SortOrder  string     `form:"sortOrder"`
}

// Filter converts the query into the repository filter.
func (q TimetableQuery) Filter() models.AssignmentFilter {
	return models.AssignmentFilter{
		BatchID:    q.BatchID,
		LecturerID: q.LecturerID,
		HallID:     q.HallID,
		Day:        q.Day,
		Week:       q.Week,
		Page:       q.Page,
		PageSize:   q.PageSize,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
	}
}

// AlternativesResponse lists conflict-free candidate slots for human choice.
type AlternativesResponse struct {
	AssignmentID string            `json:"assignment_id"`
	Alternatives []models.TimeSlot `json:"alternatives"`
}
