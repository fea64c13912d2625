package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/campusops/timetable-api/internal/models"
)

// ChangeRequestRepository stores lecturer reschedule proposals.
type ChangeRequestRepository struct {
	db *sqlx.DB
}

// NewChangeRequestRepository creates a new change request repository.
func NewChangeRequestRepository(db *sqlx.DB) *ChangeRequestRepository {
	return &ChangeRequestRepository{db: db}
}

type changeRequestRow struct {
	ID                string                     `db:"id"`
	AssignmentID      string                     `db:"assignment_id"`
	LecturerID        string                     `db:"lecturer_id"`
	RequestedDay      models.Day                 `db:"requested_day"`
	RequestedInterval int                        `db:"requested_interval"`
	Reason            string                     `db:"reason"`
	Status            models.ChangeRequestStatus `db:"status"`
	RejectionReason   *string                    `db:"rejection_reason"`
	SuggestedSlots    types.JSONText             `db:"suggested_slots"`
	RequestedAt       time.Time                  `db:"requested_at"`
	ResolvedAt        *time.Time                 `db:"resolved_at"`
}

const changeRequestColumns = "id, assignment_id, lecturer_id, requested_day, requested_interval, reason, status, rejection_reason, suggested_slots, requested_at, resolved_at"

func (row changeRequestRow) toModel() (models.ChangeRequest, error) {
	request := models.ChangeRequest{
		ID:                row.ID,
		AssignmentID:      row.AssignmentID,
		LecturerID:        row.LecturerID,
		RequestedDay:      row.RequestedDay,
		RequestedInterval: row.RequestedInterval,
		Reason:            row.Reason,
		Status:            row.Status,
		RejectionReason:   row.RejectionReason,
		RequestedAt:       row.RequestedAt,
		ResolvedAt:        row.ResolvedAt,
	}
	if len(row.SuggestedSlots) > 0 {
		if err := json.Unmarshal(row.SuggestedSlots, &request.SuggestedSlots); err != nil {
			return request, fmt.Errorf("decode suggested slots for %s: %w", row.ID, err)
		}
	}
	return request, nil
}

// Create stores a new pending change request.
func (r *ChangeRequestRepository) Create(ctx context.Context, request *models.ChangeRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.RequestedAt.IsZero() {
		request.RequestedAt = time.Now().UTC()
	}
	const query = `INSERT INTO change_requests (id, assignment_id, lecturer_id, requested_day, requested_interval, reason, status, requested_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		request.ID, request.AssignmentID, request.LecturerID,
		request.RequestedDay, request.RequestedInterval,
		request.Reason, request.Status, request.RequestedAt,
	); err != nil {
		return fmt.Errorf("create change request: %w", err)
	}
	return nil
}

// FindByID loads a change request by id.
func (r *ChangeRequestRepository) FindByID(ctx context.Context, id string) (*models.ChangeRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM change_requests WHERE id = $1", changeRequestColumns)
	var row changeRequestRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	request, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindPendingByAssignment returns the pending request for an assignment, or
// sql.ErrNoRows when none exists.
func (r *ChangeRequestRepository) FindPendingByAssignment(ctx context.Context, assignmentID string) (*models.ChangeRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM change_requests WHERE assignment_id = $1 AND status = $2 LIMIT 1", changeRequestColumns)
	var row changeRequestRow
	if err := r.db.GetContext(ctx, &row, query, assignmentID, models.ChangeRequestPending); err != nil {
		return nil, err
	}
	request, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns change requests matching the filter, newest first.
func (r *ChangeRequestRepository) List(ctx context.Context, filter models.ChangeRequestFilter) ([]models.ChangeRequest, int, error) {
	base := "FROM change_requests WHERE 1=1"
	var args []interface{}

	if filter.AssignmentID != "" {
		args = append(args, filter.AssignmentID)
		base += fmt.Sprintf(" AND assignment_id = $%d", len(args))
	}
	if filter.LecturerID != "" {
		args = append(args, filter.LecturerID)
		base += fmt.Sprintf(" AND lecturer_id = $%d", len(args))
	}
	if len(filter.Status) > 0 {
		statuses := make([]string, 0, len(filter.Status))
		for _, status := range filter.Status {
			args = append(args, status)
			statuses = append(statuses, fmt.Sprintf("$%d", len(args)))
		}
		base += fmt.Sprintf(" AND status IN (%s)", strings.Join(statuses, ", "))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY requested_at DESC LIMIT %d OFFSET %d",
		changeRequestColumns, base, size, (page-1)*size)
	var rows []changeRequestRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list change requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count change requests: %w", err)
	}

	requests := make([]models.ChangeRequest, 0, len(rows))
	for _, row := range rows {
		request, err := row.toModel()
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, request)
	}
	return requests, total, nil
}

// ResolveParams carries the terminal outcome for a pending request.
type ResolveParams struct {
	ID              string
	Status          models.ChangeRequestStatus
	RejectionReason *string
	SuggestedSlots  []models.TimeSlot
	ResolvedAt      time.Time
}

// Resolve marks a pending request terminal. It guards on the current status
// so two concurrent resolutions cannot both succeed; losing the race yields
// sql.ErrNoRows.
func (r *ChangeRequestRepository) Resolve(ctx context.Context, exec sqlx.ExtContext, params ResolveParams) error {
	if exec == nil {
		exec = r.db
	}
	var suggested types.JSONText
	if len(params.SuggestedSlots) > 0 {
		payload, err := json.Marshal(params.SuggestedSlots)
		if err != nil {
			return fmt.Errorf("encode suggested slots: %w", err)
		}
		suggested = types.JSONText(payload)
	}

	query := fmt.Sprintf("UPDATE change_requests SET status = $1, rejection_reason = $2, suggested_slots = $3, resolved_at = $4 WHERE id = $5 AND status = '%s'", models.ChangeRequestPending)
	result, err := exec.ExecContext(ctx, query, params.Status, params.RejectionReason, suggested, params.ResolvedAt, params.ID)
	if err != nil {
		return fmt.Errorf("resolve change request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check change request update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
