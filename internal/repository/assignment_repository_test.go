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

func newAssignmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func assignmentRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "batch_id", "batch_name", "group_no", "module_id", "module_name",
		"lecturer_id", "lecturer_name", "hall_id", "hall_name",
		"day_of_week", "time_slot", "week", "session_type", "created_at", "updated_at",
	}).AddRow(
		"a-1", "batch-1", "CS Year 1", 1, "mod-1", "Algorithms",
		"lec-1", "Dr. Silva", "hall-1", "A-201",
		"MONDAY", 1, 1, "REGULAR", now, now,
	)
}

func TestAssignmentRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectQuery("SELECT (.+) FROM assignments ORDER BY week").
		WillReturnRows(assignmentRows())

	assignments, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, models.DayMonday, assignments[0].Day)
	assert.Equal(t, 1, assignments[0].Interval)
	assert.Equal(t, "Dr. Silva", assignments[0].LecturerName)
}

func TestAssignmentRepositoryListFiltersByLecturer(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectQuery("SELECT (.+) FROM assignments WHERE 1=1 AND lecturer_id").
		WithArgs("lec-1").
		WillReturnRows(assignmentRows())
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("lec-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	assignments, total, err := repo.List(context.Background(), models.AssignmentFilter{LecturerID: "lec-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, assignments, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryReplaceAll(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM assignments").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO assignments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	assignments := []models.Assignment{{
		BatchID: "batch-1", BatchName: "CS Year 1", Group: 1,
		ModuleID: "mod-1", ModuleName: "Algorithms",
		LecturerID: "lec-1", LecturerName: "Dr. Silva",
		HallID: "hall-1", HallName: "A-201",
		Day: models.DayMonday, Interval: 1, Week: 1, SessionType: models.SessionRegular,
	}}
	require.NoError(t, repo.ReplaceAll(context.Background(), tx, assignments))
	require.NoError(t, tx.Commit())

	// ids and timestamps are filled in during insert
	assert.NotEmpty(t, assignments[0].ID)
	assert.False(t, assignments[0].CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryReplaceAllRequiresTx(t *testing.T) {
	db, _, cleanup := newAssignmentRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	err := repo.ReplaceAll(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestAssignmentRepositoryUpdateSlot(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectExec("UPDATE assignments SET day_of_week").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateSlot(context.Background(), nil, "a-1", models.DayWednesday, 3)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateSlotMissing(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()

	repo := NewAssignmentRepository(db)
	mock.ExpectExec("UPDATE assignments SET day_of_week").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSlot(context.Background(), nil, "missing", models.DayWednesday, 3)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
