package dto

import "github.com/campusops/timetable-api/internal/models"

// CreateChangeRequest proposes moving one assignment to a new grid cell.
type CreateChangeRequest struct {
	AssignmentID string     `json:"assignmentId" validate:"required"`
	LecturerID   string     `json:"lecturerId" validate:"required"`
	Day          models.Day `json:"day" validate:"required"`
	Interval     int        `json:"interval" validate:"required,min=1,max=4"`
	Reason       string     `json:"reason" validate:"required,min=10"`
}

// ResolveChangeRequest carries the reviewer decision for a pending request.
type ResolveChangeRequest struct {
	Decision models.ChangeRequestStatus `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
	// RejectionReason is required when rejecting.
	RejectionReason string `json:"rejectionReason" validate:"omitempty,min=10"`
	// SuggestedSlots optionally attaches counter-offers on rejection; each
	// is re-verified conflict-free before being stored.
	SuggestedSlots []models.TimeSlot `json:"suggestedSlots"`
	// AttachSuggestions asks the service to compute counter-offers via the
	// alternative-slot finder instead of supplying them explicitly.
	AttachSuggestions bool `json:"attachSuggestions"`
}

// ChangeRequestQuery filters change request listings.
type ChangeRequestQuery struct {
	AssignmentID string                       `form:"assignmentId"`
	LecturerID   string                       `form:"lecturerId"`
	Status       []models.ChangeRequestStatus `form:"status"`
	Page         int                          `form:"page"`
	PageSize     int                          `form:"limit"`
}
