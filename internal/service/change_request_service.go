package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/engine"
	"github.com/campusops/timetable-api/internal/models"
	"github.com/campusops/timetable-api/internal/repository"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
)

type changeRequestStore interface {
	Create(ctx context.Context, request *models.ChangeRequest) error
	FindByID(ctx context.Context, id string) (*models.ChangeRequest, error)
	FindPendingByAssignment(ctx context.Context, assignmentID string) (*models.ChangeRequest, error)
	List(ctx context.Context, filter models.ChangeRequestFilter) ([]models.ChangeRequest, int, error)
	Resolve(ctx context.Context, exec sqlx.ExtContext, params repository.ResolveParams) error
}

type assignmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListAll(ctx context.Context) ([]models.Assignment, error)
}

type slotMover interface {
	Move(ctx context.Context, assignmentID string, day models.Day, interval int) (*models.Assignment, error)
}

// ChangeRequestService manages the lecturer-facing change request workflow.
// Requests start as pending and move exactly once to approved or rejected.
type ChangeRequestService struct {
	requests    changeRequestStore
	assignments assignmentReader
	catalog     catalogReader
	mover       slotMover
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewChangeRequestService wires the change request dependencies.
func NewChangeRequestService(
	requests changeRequestStore,
	assignments assignmentReader,
	catalog catalogReader,
	mover slotMover,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *ChangeRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeRequestService{
		requests:    requests,
		assignments: assignments,
		catalog:     catalog,
		mover:       mover,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Create files a pending change request for an assignment. At most one
// pending request may exist per assignment at any time.
func (s *ChangeRequestService) Create(ctx context.Context, req dto.CreateChangeRequest) (*models.ChangeRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change request payload")
	}
	if !models.ValidDay(req.Day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", req.Day))
	}
	if !models.ValidInterval(req.Interval) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("interval %d is out of range", req.Interval))
	}
	if len(strings.TrimSpace(req.Reason)) < models.MinReasonLength {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("reason must be at least %d characters", models.MinReasonLength))
	}

	assignment, err := s.assignments.FindByID(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if assignment.Day == req.Day && assignment.Interval == req.Interval {
		return nil, appErrors.Clone(appErrors.ErrValidation, "requested slot matches the current slot")
	}

	if _, err := s.requests.FindPendingByAssignment(ctx, req.AssignmentID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicatePending, "a pending request already exists for this assignment")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending requests")
	}

	request := &models.ChangeRequest{
		AssignmentID:      req.AssignmentID,
		LecturerID:        req.LecturerID,
		RequestedDay:      req.Day,
		RequestedInterval: req.Interval,
		Reason:            strings.TrimSpace(req.Reason),
		Status:            models.ChangeRequestPending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create change request")
	}

	s.logger.Info("change request created",
		zap.String("request_id", request.ID),
		zap.String("assignment_id", request.AssignmentID))
	return request, nil
}

// Resolve moves a pending request to its terminal state. Approval re-runs the
// conflict check against the timetable as it stands now and applies the move;
// rejection records the reason and leaves the assignment untouched.
func (s *ChangeRequestService) Resolve(ctx context.Context, requestID string, req dto.ResolveChangeRequest) (*models.ChangeRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resolution payload")
	}

	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "change request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load change request")
	}
	if request.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("change request is already %s", request.Status))
	}

	switch req.Decision {
	case models.ChangeRequestApproved:
		return s.approve(ctx, request)
	case models.ChangeRequestRejected:
		return s.reject(ctx, request, req)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown decision %q", req.Decision))
	}
}

func (s *ChangeRequestService) approve(ctx context.Context, request *models.ChangeRequest) (*models.ChangeRequest, error) {
	assignment, err := s.assignments.FindByID(ctx, request.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	// The assignment may have been dragged to the requested slot after the
	// request was filed; approving is then a pure status change.
	if assignment.Day != request.RequestedDay || assignment.Interval != request.RequestedInterval {
		// The move re-validates against the committed timetable under the
		// scheduler lock, so stale approvals cannot introduce double bookings.
		if _, err := s.mover.Move(ctx, request.AssignmentID, request.RequestedDay, request.RequestedInterval); err != nil {
			var conflictErr *models.ConflictError
			if errors.As(err, &conflictErr) {
				s.logger.Info("approval blocked by conflict",
					zap.String("request_id", request.ID),
					zap.String("conflict", string(conflictErr.Conflict.Kind)))
			}
			return nil, err
		}
	}

	if err := s.requests.Resolve(ctx, nil, repository.ResolveParams{
		ID:         request.ID,
		Status:     models.ChangeRequestApproved,
		ResolvedAt: time.Now().UTC(),
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "change request was resolved concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve change request")
	}

	if s.metrics != nil {
		s.metrics.RecordChangeRequest(string(models.ChangeRequestApproved))
	}
	s.logger.Info("change request approved", zap.String("request_id", request.ID))
	return s.requests.FindByID(ctx, request.ID)
}

func (s *ChangeRequestService) reject(ctx context.Context, request *models.ChangeRequest, req dto.ResolveChangeRequest) (*models.ChangeRequest, error) {
	reason := strings.TrimSpace(req.RejectionReason)
	if len(reason) < models.MinReasonLength {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("rejection reason must be at least %d characters", models.MinReasonLength))
	}

	suggestions, err := s.suggestions(ctx, request, req)
	if err != nil {
		return nil, err
	}

	if err := s.requests.Resolve(ctx, nil, repository.ResolveParams{
		ID:              request.ID,
		Status:          models.ChangeRequestRejected,
		RejectionReason: &reason,
		SuggestedSlots:  suggestions,
		ResolvedAt:      time.Now().UTC(),
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "change request was resolved concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve change request")
	}

	if s.metrics != nil {
		s.metrics.RecordChangeRequest(string(models.ChangeRequestRejected))
	}
	s.logger.Info("change request rejected",
		zap.String("request_id", request.ID),
		zap.Int("suggestions", len(suggestions)))
	return s.requests.FindByID(ctx, request.ID)
}

// suggestions assembles the alternative slots attached to a rejection.
// Explicit slots supplied by the reviewer are kept only when they are
// conflict-free right now; otherwise suggestions are computed on demand.
func (s *ChangeRequestService) suggestions(ctx context.Context, request *models.ChangeRequest, req dto.ResolveChangeRequest) ([]models.TimeSlot, error) {
	if len(req.SuggestedSlots) == 0 && !req.AttachSuggestions {
		return nil, nil
	}

	assignment, err := s.assignments.FindByID(ctx, request.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	existing, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	if len(req.SuggestedSlots) > 0 {
		kept := make([]models.TimeSlot, 0, len(req.SuggestedSlots))
		for _, slot := range req.SuggestedSlots {
			if !models.ValidDay(slot.Day) || !models.ValidInterval(slot.Interval) {
				return nil, appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("suggested slot %s/%d is not a valid slot", slot.Day, slot.Interval))
			}
			candidate := *assignment
			candidate.Day = slot.Day
			candidate.Interval = slot.Interval
			if !engine.CheckConflict(candidate, existing).HasConflict() {
				kept = append(kept, slot)
			}
		}
		return kept, nil
	}

	mode := s.mode(ctx, assignment.BatchID)
	return engine.FindAlternatives(*assignment, mode, existing, request.RequestedSlot()), nil
}

// List returns change requests matching the filter with pagination.
func (s *ChangeRequestService) List(ctx context.Context, filter models.ChangeRequestFilter) ([]models.ChangeRequest, *models.Pagination, error) {
	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list change requests")
	}
	return requests, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a single change request.
func (s *ChangeRequestService) Get(ctx context.Context, id string) (*models.ChangeRequest, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "change request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load change request")
	}
	return request, nil
}

func (s *ChangeRequestService) mode(ctx context.Context, batchID string) models.ScheduleMode {
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
