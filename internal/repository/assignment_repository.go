package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/timetable-api/internal/models"
)

const assignmentColumns = "id, batch_id, batch_name, group_no, module_id, module_name, lecturer_id, lecturer_name, hall_id, hall_name, day_of_week, time_slot, week, session_type, created_at, updated_at"

// AssignmentRepository provides persistence for schedule assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListAll returns the full assignment set ordered by grid position. The
// conflict predicate and the alternative finder always run against this set.
func (r *AssignmentRepository) ListAll(ctx context.Context) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments ORDER BY week ASC, day_of_week ASC, time_slot ASC", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// List returns assignments with optional filtering and pagination.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	base := "FROM assignments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.BatchID != "" {
		conditions = append(conditions, fmt.Sprintf("batch_id = $%d", len(args)+1))
		args = append(args, filter.BatchID)
	}
	if filter.LecturerID != "" {
		conditions = append(conditions, fmt.Sprintf("lecturer_id = $%d", len(args)+1))
		args = append(args, filter.LecturerID)
	}
	if filter.HallID != "" {
		conditions = append(conditions, fmt.Sprintf("hall_id = $%d", len(args)+1))
		args = append(args, filter.HallID)
	}
	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, filter.Day)
	}
	if filter.Week > 0 {
		conditions = append(conditions, fmt.Sprintf("week = $%d", len(args)+1))
		args = append(args, filter.Week)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"day_of_week": true,
		"time_slot":   true,
		"week":        true,
		"batch_id":    true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "day_of_week"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, time_slot ASC LIMIT %d OFFSET %d", assignmentColumns, base, sortBy, order, size, offset)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}

	return assignments, total, nil
}

// FindByID loads an assignment by id.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE id = $1", assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ReplaceAll deletes the previous schedule and inserts the new set within the
// provided transaction. Generation always replaces the prior schedule.
func (r *AssignmentRepository) ReplaceAll(ctx context.Context, tx *sqlx.Tx, assignments []models.Assignment) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM assignments"); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	return r.bulkInsert(ctx, tx, assignments)
}

// BulkCreateWithTx inserts assignments using an existing transaction.
func (r *AssignmentRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, assignments []models.Assignment) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	return r.bulkInsert(ctx, tx, assignments)
}

func (r *AssignmentRepository) bulkInsert(ctx context.Context, exec sqlx.ExtContext, assignments []models.Assignment) error {
	now := time.Now().UTC()
	const query = `INSERT INTO assignments (id, batch_id, batch_name, group_no, module_id, module_name, lecturer_id, lecturer_name, hall_id, hall_name, day_of_week, time_slot, week, session_type, created_at, updated_at) VALUES (:id, :batch_id, :batch_name, :group_no, :module_id, :module_name, :lecturer_id, :lecturer_name, :hall_id, :hall_name, :day_of_week, :time_slot, :week, :session_type, :created_at, :updated_at)`
	for i := range assignments {
		payload := assignments[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now

		if _, err := sqlx.NamedExecContext(ctx, exec, query, &payload); err != nil {
			return fmt.Errorf("bulk insert assignment: %w", err)
		}
		assignments[i] = payload
	}
	return nil
}

// UpdateSlot moves an assignment to a new grid cell.
func (r *AssignmentRepository) UpdateSlot(ctx context.Context, exec sqlx.ExtContext, id string, day models.Day, interval int) error {
	if exec == nil {
		exec = r.db
	}
	result, err := sqlx.NamedExecContext(ctx, exec, `UPDATE assignments SET day_of_week = :day_of_week, time_slot = :time_slot, updated_at = :updated_at WHERE id = :id`, map[string]interface{}{
		"id":          id,
		"day_of_week": day,
		"time_slot":   interval,
		"updated_at":  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("update assignment slot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check assignment update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
