package models

import "time"

// ChangeRequestStatus captures workflow states for reschedule requests.
type ChangeRequestStatus string

const (
	ChangeRequestPending  ChangeRequestStatus = "PENDING"
	ChangeRequestApproved ChangeRequestStatus = "APPROVED"
	ChangeRequestRejected ChangeRequestStatus = "REJECTED"
)

// Terminal reports whether the status permits no further transitions.
func (s ChangeRequestStatus) Terminal() bool {
	return s == ChangeRequestApproved || s == ChangeRequestRejected
}

// MinReasonLength is the shortest acceptable reason or rejection reason.
const MinReasonLength = 10

// ChangeRequest is a lecturer-initiated proposal to move one assignment to a
// different grid cell. It transitions exactly once out of PENDING.
type ChangeRequest struct {
	ID                string              `db:"id" json:"id"`
	AssignmentID      string              `db:"assignment_id" json:"assignment_id"`
	LecturerID        string              `db:"lecturer_id" json:"lecturer_id"`
	RequestedDay      Day                 `db:"requested_day" json:"requested_day"`
	RequestedInterval int                 `db:"requested_interval" json:"requested_interval"`
	Reason            string              `db:"reason" json:"reason"`
	Status            ChangeRequestStatus `db:"status" json:"status"`
	RejectionReason   *string             `db:"rejection_reason" json:"rejection_reason,omitempty"`
	SuggestedSlots    []TimeSlot          `db:"-" json:"suggested_slots,omitempty"`
	RequestedAt       time.Time           `db:"requested_at" json:"requested_at"`
	ResolvedAt        *time.Time          `db:"resolved_at" json:"resolved_at,omitempty"`
}

// RequestedSlot returns the proposed grid cell.
func (r ChangeRequest) RequestedSlot() TimeSlot {
	return TimeSlot{Day: r.RequestedDay, Interval: r.RequestedInterval}
}

// ChangeRequestFilter constrains listing queries.
type ChangeRequestFilter struct {
	AssignmentID string
	LecturerID   string
	Status       []ChangeRequestStatus
	Page         int
	PageSize     int
}
