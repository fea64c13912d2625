package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/engine"
	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type catalogReader interface {
	Snapshot(ctx context.Context) (*models.Catalog, error)
}

type assignmentStore interface {
	ListAll(ctx context.Context) ([]models.Assignment, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ReplaceAll(ctx context.Context, tx *sqlx.Tx, assignments []models.Assignment) error
	UpdateSlot(ctx context.Context, exec sqlx.ExtContext, id string, day models.Day, interval int) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TimetableService owns the master timetable. All mutations are serialized
// through a single mutex so that conflict checks always run against the
// committed set of assignments.
type TimetableService struct {
	catalog     catalogReader
	assignments assignmentStore
	tx          txProvider
	generator   *engine.Generator
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger

	mu sync.Mutex
}

// NewTimetableService wires the timetable dependencies.
func NewTimetableService(
	catalog catalogReader,
	assignments assignmentStore,
	tx txProvider,
	generator *engine.Generator,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if generator == nil {
		generator = engine.NewGenerator(engine.GeneratorConfig{}, logger)
	}
	return &TimetableService{
		catalog:     catalog,
		assignments: assignments,
		tx:          tx,
		generator:   generator,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Generate builds a fresh timetable from the current catalog. Unless the
// request is a dry run, the previous timetable is replaced atomically.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}

	result := s.generator.Generate(catalog)
	if len(result.Issues) > 0 {
		s.logger.Warn("timetable generation aborted",
			zap.Int("issues", len(result.Issues)))
		return &dto.GenerateTimetableResponse{
			Assignments: []models.Assignment{},
			Warnings:    result.Warnings,
			Issues:      result.Issues,
			Persisted:   false,
		}, nil
	}

	assignments := result.Assignments
	if req.ExpandTerm {
		assignments = s.generator.ExpandTerm(assignments)
	}

	persisted := false
	if !req.DryRun {
		if err := s.replaceTimetable(ctx, assignments); err != nil {
			return nil, err
		}
		persisted = true
		s.invalidateTimetableCache(ctx)
	}

	if s.metrics != nil {
		s.metrics.ObserveGeneration(time.Since(start), len(result.Assignments), len(result.Warnings))
	}
	s.logger.Info("timetable generated",
		zap.Int("assignments", len(assignments)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Bool("persisted", persisted))

	return &dto.GenerateTimetableResponse{
		Assignments: assignments,
		Warnings:    result.Warnings,
		Issues:      result.Issues,
		Persisted:   persisted,
	}, nil
}

func (s *TimetableService) replaceTimetable(ctx context.Context, assignments []models.Assignment) error {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start transaction")
	}
	if err := s.assignments.ReplaceAll(ctx, tx, assignments); err != nil {
		_ = tx.Rollback()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable")
	}
	return nil
}

// Move relocates a single assignment to the requested slot. When the target
// cell would collide with the committed timetable, the move is refused and the
// returned error carries the conflict detail together with viable
// alternatives.
func (s *TimetableService) Move(ctx context.Context, assignmentID string, day models.Day, interval int) (*models.Assignment, error) {
	if !models.ValidDay(day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", day))
	}
	if !models.ValidInterval(interval) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("interval %d is out of range", interval))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.SessionType == models.SessionExamPrep {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam preparation sessions are pinned and cannot be moved")
	}
	if assignment.Day == day && assignment.Interval == interval {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignment already occupies the requested slot")
	}

	existing, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	candidate := *assignment
	candidate.Day = day
	candidate.Interval = interval

	conflict := engine.CheckConflict(candidate, existing)
	if conflict.HasConflict() {
		if s.metrics != nil {
			s.metrics.RecordConflict(conflict.Kind)
		}
		mode := s.batchMode(ctx, assignment.BatchID)
		alternatives := engine.FindAlternatives(*assignment, mode, existing, models.TimeSlot{Day: day, Interval: interval})
		s.logger.Info("move rejected",
			zap.String("assignment_id", assignmentID),
			zap.String("conflict", string(conflict.Kind)))
		return nil, &models.ConflictError{Conflict: conflict, Alternatives: alternatives}
	}

	if err := s.assignments.UpdateSlot(ctx, nil, assignmentID, day, interval); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move assignment")
	}
	s.invalidateTimetableCache(ctx)

	assignment.Day = day
	assignment.Interval = interval
	s.logger.Info("assignment moved",
		zap.String("assignment_id", assignmentID),
		zap.String("day", string(day)),
		zap.Int("interval", interval))
	return assignment, nil
}

// Alternatives lists every slot the assignment could move to without creating
// a conflict. The assignment's current slot is excluded, as is the optional
// target slot the caller already tried.
func (s *TimetableService) Alternatives(ctx context.Context, assignmentID string, query dto.AlternativesQuery) ([]models.TimeSlot, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	existing, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	var exclude []models.TimeSlot
	if query.TargetDay != "" || query.TargetInterval != 0 {
		day := models.Day(query.TargetDay)
		if !models.ValidDay(day) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", query.TargetDay))
		}
		if !models.ValidInterval(query.TargetInterval) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("interval %d is out of range", query.TargetInterval))
		}
		exclude = append(exclude, models.TimeSlot{Day: day, Interval: query.TargetInterval})
	}

	mode := s.batchMode(ctx, assignment.BatchID)
	return engine.FindAlternatives(*assignment, mode, existing, exclude...), nil
}

// Grid returns the committed timetable, filtered and paginated. Unfiltered
// first pages are served from cache when caching is enabled.
func (s *TimetableService) Grid(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error) {
	key := gridCacheKey(filter)
	var cached gridPayload
	if s.cache.Enabled() {
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached.Assignments, cached.Pagination, nil
		}
	}

	assignments, total, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, key, gridPayload{Assignments: assignments, Pagination: pagination}, 0)
	}
	return assignments, pagination, nil
}

type gridPayload struct {
	Assignments []models.Assignment `json:"assignments"`
	Pagination  *models.Pagination  `json:"pagination"`
}

func gridCacheKey(filter models.AssignmentFilter) string {
	return fmt.Sprintf("timetable:grid:batch=%s:lecturer=%s:hall=%s:day=%s:week=%d:page=%d:size=%d",
		filter.BatchID, filter.LecturerID, filter.HallID, filter.Day, filter.Week, filter.Page, filter.PageSize)
}

func (s *TimetableService) invalidateTimetableCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "timetable:*"); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.Error(err))
	}
}

func (s *TimetableService) loadAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// batchMode resolves the schedule mode for the batch. Weekday is assumed when
// the catalog cannot be consulted.
func (s *TimetableService) batchMode(ctx context.Context, batchID string) models.ScheduleMode {
	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		s.logger.Warn("catalog snapshot failed, assuming weekday mode", zap.Error(err))
		return models.ModeWeekday
	}
	if batch := catalog.Batch(batchID); batch != nil {
		return batch.Mode
	}
	return models.ModeWeekday
}
