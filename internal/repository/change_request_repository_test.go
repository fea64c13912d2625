package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/models"
)

func newChangeRequestRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func changeRequestRows(status string, suggested []byte) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "assignment_id", "lecturer_id", "requested_day", "requested_interval",
		"reason", "status", "rejection_reason", "suggested_slots", "requested_at", "resolved_at",
	}).AddRow(
		"cr-1", "a-1", "lec-1", "WEDNESDAY", 3,
		"clashes with faculty meeting", status, nil, suggested, time.Now(), nil,
	)
}

func TestChangeRequestRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newChangeRequestRepoMock(t)
	defer cleanup()

	repo := NewChangeRequestRepository(db)
	mock.ExpectExec("INSERT INTO change_requests").
		WithArgs(sqlmock.AnyArg(), "a-1", "lec-1", models.DayWednesday, 3,
			"clashes with faculty meeting", models.ChangeRequestPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.ChangeRequest{
		AssignmentID:      "a-1",
		LecturerID:        "lec-1",
		RequestedDay:      models.DayWednesday,
		RequestedInterval: 3,
		Reason:            "clashes with faculty meeting",
		Status:            models.ChangeRequestPending,
	}
	require.NoError(t, repo.Create(context.Background(), request))
	assert.NotEmpty(t, request.ID)
	assert.False(t, request.RequestedAt.IsZero())
}

func TestChangeRequestRepositoryFindPendingByAssignment(t *testing.T) {
	db, mock, cleanup := newChangeRequestRepoMock(t)
	defer cleanup()

	repo := NewChangeRequestRepository(db)
	mock.ExpectQuery("SELECT (.+) FROM change_requests WHERE assignment_id").
		WithArgs("a-1", models.ChangeRequestPending).
		WillReturnRows(changeRequestRows("PENDING", nil))

	request, err := repo.FindPendingByAssignment(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, models.ChangeRequestPending, request.Status)
	assert.Equal(t, models.DayWednesday, request.RequestedDay)
}

func TestChangeRequestRepositoryFindPendingNone(t *testing.T) {
	db, mock, cleanup := newChangeRequestRepoMock(t)
	defer cleanup()

	repo := NewChangeRequestRepository(db)
	mock.ExpectQuery("SELECT (.+) FROM change_requests WHERE assignment_id").
		WithArgs("a-1", models.ChangeRequestPending).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindPendingByAssignment(context.Background(), "a-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestChangeRequestRepositoryFindByIDDecodesSuggestions(t *testing.T) {
	db, mock, cleanup := newChangeRequestRepoMock(t)
	defer cleanup()

	repo := NewChangeRequestRepository(db)
	suggested := []byte(`[{"day":"FRIDAY","interval":4}]`)
	mock.ExpectQuery("SELECT (.+) FROM change_requests WHERE id").
		WithArgs("cr-1").
		WillReturnRows(changeRequestRows("REJECTED", suggested))

	request, err := repo.FindByID(context.Background(), "cr-1")
	require.NoError(t, err)
	require.Len(t, request.SuggestedSlots, 1)
	assert.Equal(t, models.TimeSlot{Day: models.DayFriday, Interval: 4}, request.SuggestedSlots[0])
}

func TestChangeRequestRepositoryResolve(t *testing.T) {
	db, mock, cleanup := newChangeRequestRepoMock(t)
	defer cleanup()

	repo := NewChangeRequestRepository(db)
	mock.ExpectExec("UPDATE change_requests SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Resolve(context.Background(), nil, ResolveParams{
		ID:         "cr-1",
		Status:     models.ChangeRequestApproved,
		ResolvedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestChangeRequestRepositoryResolveLostRace(t *testing.T) {
	db, mock, cleanup := newChangeRequestRepoMock(t)
	defer cleanup()

	repo := NewChangeRequestRepository(db)
	mock.ExpectExec("UPDATE change_requests SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Resolve(context.Background(), nil, ResolveParams{
		ID:         "cr-1",
		Status:     models.ChangeRequestRejected,
		ResolvedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
