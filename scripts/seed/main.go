// Command seed provisions the local database schema and loads a small demo
// catalog so the generator has something to schedule.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/timetable-api/internal/models"
	"github.com/campusops/timetable-api/pkg/config"
	"github.com/campusops/timetable-api/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS halls (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    capacity   INTEGER NOT NULL,
    type       TEXT NOT NULL,
    facilities TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lecturers (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS batches (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    student_count INTEGER NOT NULL,
    group_count   INTEGER NOT NULL DEFAULT 1,
    mode          TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS modules (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    credit_hours INTEGER NOT NULL,
    is_lab       BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lecturer_modules (
    lecturer_id TEXT NOT NULL REFERENCES lecturers(id) ON DELETE CASCADE,
    module_id   TEXT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
    PRIMARY KEY (lecturer_id, module_id)
);

CREATE TABLE IF NOT EXISTS batch_modules (
    batch_id  TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
    module_id TEXT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
    PRIMARY KEY (batch_id, module_id)
);

CREATE TABLE IF NOT EXISTS assignments (
    id            TEXT PRIMARY KEY,
    batch_id      TEXT NOT NULL,
    batch_name    TEXT NOT NULL,
    group_no      INTEGER NOT NULL,
    module_id     TEXT NOT NULL,
    module_name   TEXT NOT NULL,
    lecturer_id   TEXT NOT NULL,
    lecturer_name TEXT NOT NULL,
    hall_id       TEXT NOT NULL,
    hall_name     TEXT NOT NULL,
    day_of_week   TEXT NOT NULL,
    time_slot     INTEGER NOT NULL,
    week          INTEGER NOT NULL DEFAULT 1,
    session_type  TEXT NOT NULL DEFAULT 'REGULAR',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_assignments_cell ON assignments (week, day_of_week, time_slot);

CREATE TABLE IF NOT EXISTS change_requests (
    id                 TEXT PRIMARY KEY,
    assignment_id      TEXT NOT NULL,
    lecturer_id        TEXT NOT NULL,
    requested_day      TEXT NOT NULL,
    requested_interval INTEGER NOT NULL,
    reason             TEXT NOT NULL,
    status             TEXT NOT NULL DEFAULT 'PENDING',
    rejection_reason   TEXT,
    suggested_slots    JSONB,
    requested_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    resolved_at        TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_change_requests_pending
    ON change_requests (assignment_id) WHERE status = 'PENDING';
`

type seedModule struct {
	name        string
	creditHours int
	isLab       bool
}

func main() {
	schemaOnly := flag.Bool("schema-only", false, "create tables without inserting demo data")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		log.Fatalf("failed to create schema: %v", err)
	}
	log.Println("schema ready")

	if *schemaOnly {
		return
	}
	if err := seed(ctx, db); err != nil {
		log.Fatalf("failed to seed demo catalog: %v", err)
	}
	log.Println("demo catalog seeded")
}

func seed(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	halls := []models.Hall{
		{ID: uuid.NewString(), Name: "A-201", Capacity: 120, Type: models.HallTypeLecture},
		{ID: uuid.NewString(), Name: "A-305", Capacity: 60, Type: models.HallTypeLecture},
		{ID: uuid.NewString(), Name: "Lab-1", Capacity: 40, Type: models.HallTypeLab},
		{ID: uuid.NewString(), Name: "T-12", Capacity: 30, Type: models.HallTypeTutorial},
	}
	for _, hall := range halls {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO halls (id, name, capacity, type) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			hall.ID, hall.Name, hall.Capacity, hall.Type); err != nil {
			return err
		}
	}

	modules := make(map[string]string)
	for _, m := range []seedModule{
		{"Algorithms", 4, false},
		{"Databases", 3, false},
		{"Computer Networks", 3, false},
		{"Networks Lab", 6, true},
		{"Software Engineering", 2, false},
	} {
		id := uuid.NewString()
		modules[m.name] = id
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO modules (id, name, credit_hours, is_lab) VALUES ($1, $2, $3, $4)`,
			id, m.name, m.creditHours, m.isLab); err != nil {
			return err
		}
	}

	lecturers := map[string][]string{
		"Dr. Silva":    {"Algorithms", "Software Engineering"},
		"Dr. Perera":   {"Databases", "Computer Networks"},
		"Ms. Fernando": {"Networks Lab", "Computer Networks"},
	}
	for name, taught := range lecturers {
		id := uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lecturers (id, name) VALUES ($1, $2)`, id, name); err != nil {
			return err
		}
		for _, moduleName := range taught {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO lecturer_modules (lecturer_id, module_id) VALUES ($1, $2)`,
				id, modules[moduleName]); err != nil {
				return err
			}
		}
	}

	batches := []struct {
		name     string
		students int
		groups   int
		mode     models.ScheduleMode
		enrolled []string
	}{
		{"CS Year 1", 110, 2, models.ModeWeekday, []string{"Algorithms", "Databases", "Networks Lab"}},
		{"CS Year 2", 45, 1, models.ModeWeekday, []string{"Computer Networks", "Software Engineering"}},
		{"CS Evening", 35, 1, models.ModeWeekend, []string{"Databases", "Software Engineering"}},
	}
	for _, b := range batches {
		id := uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO batches (id, name, student_count, group_count, mode) VALUES ($1, $2, $3, $4, $5)`,
			id, b.name, b.students, b.groups, b.mode); err != nil {
			return err
		}
		for _, moduleName := range b.enrolled {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO batch_modules (batch_id, module_id) VALUES ($1, $2)`,
				id, modules[moduleName]); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}
