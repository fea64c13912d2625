package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusops/timetable-api/internal/models"
)

// CatalogRepository reads the scheduling resource catalog. All writes happen
// in the record-management layer; the engine only ever sees a snapshot.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Snapshot loads the complete catalog in one consistent read.
func (r *CatalogRepository) Snapshot(ctx context.Context) (*models.Catalog, error) {
	halls, err := r.ListHalls(ctx)
	if err != nil {
		return nil, err
	}
	lecturers, err := r.ListLecturers(ctx)
	if err != nil {
		return nil, err
	}
	batches, err := r.ListBatches(ctx)
	if err != nil {
		return nil, err
	}
	modules, err := r.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Catalog{Halls: halls, Lecturers: lecturers, Batches: batches, Modules: modules}, nil
}

// ListHalls returns all halls ordered by name.
func (r *CatalogRepository) ListHalls(ctx context.Context) ([]models.Hall, error) {
	const query = `SELECT id, name, capacity, type, facilities, created_at, updated_at FROM halls ORDER BY name ASC`
	var halls []models.Hall
	if err := r.db.SelectContext(ctx, &halls, query); err != nil {
		return nil, fmt.Errorf("list halls: %w", err)
	}
	return halls, nil
}

// ListLecturers returns all lecturers with their qualified module ids.
func (r *CatalogRepository) ListLecturers(ctx context.Context) ([]models.Lecturer, error) {
	const query = `SELECT id, name, created_at, updated_at FROM lecturers ORDER BY name ASC`
	var lecturers []models.Lecturer
	if err := r.db.SelectContext(ctx, &lecturers, query); err != nil {
		return nil, fmt.Errorf("list lecturers: %w", err)
	}

	qualifications, err := r.listPairs(ctx, `SELECT lecturer_id, module_id FROM lecturer_modules`)
	if err != nil {
		return nil, fmt.Errorf("list lecturer qualifications: %w", err)
	}
	for i := range lecturers {
		lecturers[i].ModuleIDs = qualifications[lecturers[i].ID]
	}
	return lecturers, nil
}

// ListBatches returns all batches with their enrolled module ids.
func (r *CatalogRepository) ListBatches(ctx context.Context) ([]models.Batch, error) {
	const query = `SELECT id, name, student_count, group_count, mode, created_at, updated_at FROM batches ORDER BY name ASC`
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}

	enrollments, err := r.listPairs(ctx, `SELECT batch_id, module_id FROM batch_modules`)
	if err != nil {
		return nil, fmt.Errorf("list batch enrollments: %w", err)
	}
	for i := range batches {
		batches[i].ModuleIDs = enrollments[batches[i].ID]
	}
	return batches, nil
}

// ListModules returns all modules with their qualified lecturers and enrolled
// batches.
func (r *CatalogRepository) ListModules(ctx context.Context) ([]models.Module, error) {
	const query = `SELECT id, name, credit_hours, is_lab, created_at, updated_at FROM modules ORDER BY name ASC`
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}

	lecturers, err := r.listPairs(ctx, `SELECT module_id, lecturer_id FROM lecturer_modules`)
	if err != nil {
		return nil, fmt.Errorf("list module lecturers: %w", err)
	}
	batches, err := r.listPairs(ctx, `SELECT module_id, batch_id FROM batch_modules`)
	if err != nil {
		return nil, fmt.Errorf("list module batches: %w", err)
	}
	for i := range modules {
		modules[i].LecturerIDs = lecturers[modules[i].ID]
		modules[i].BatchIDs = batches[modules[i].ID]
	}
	return modules, nil
}

// listPairs collects a two-column join table into a map keyed by the first
// column.
func (r *CatalogRepository) listPairs(ctx context.Context, query string) (map[string][]string, error) {
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		result[key] = append(result[key], value)
	}
	return result, rows.Err()
}
