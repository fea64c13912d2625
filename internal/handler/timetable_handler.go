package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/models"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
	"github.com/campusops/timetable-api/pkg/response"
)

type timetableService interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Move(ctx context.Context, assignmentID string, day models.Day, interval int) (*models.Assignment, error)
	Alternatives(ctx context.Context, assignmentID string, query dto.AlternativesQuery) ([]models.TimeSlot, error)
	Grid(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error)
}

// TimetableHandler exposes timetable generation and editing endpoints.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler builds a new handler.
func NewTimetableHandler(service timetableService) *TimetableHandler {
	return &TimetableHandler{service: service}
}

// Generate godoc
// @Summary Generate a fresh timetable from the resource catalog
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest false "Generation options"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
			return
		}
	}
	resp, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(resp.Issues) > 0 {
		response.JSON(c, http.StatusPreconditionFailed, resp, nil)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Grid godoc
// @Summary List the committed timetable
// @Tags Timetable
// @Produce json
// @Param batchId query string false "Filter by batch"
// @Param lecturerId query string false "Filter by lecturer"
// @Param hallId query string false "Filter by hall"
// @Param day query string false "Filter by day of week"
// @Param week query int false "Filter by term week"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Grid(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable query"))
		return
	}
	assignments, pagination, err := h.service.Grid(c.Request.Context(), query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, pagination)
}

// Move godoc
// @Summary Move an assignment to a different grid cell
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Assignment id"
// @Param payload body dto.MoveAssignmentRequest true "Target slot"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/move [post]
func (h *TimetableHandler) Move(c *gin.Context) {
	var req dto.MoveAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}
	assignment, err := h.service.Move(c.Request.Context(), c.Param("id"), req.Day, req.Interval)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.MoveAssignmentResponse{Assignment: assignment}, nil)
}

// Alternatives godoc
// @Summary List conflict-free alternative slots for an assignment
// @Tags Timetable
// @Produce json
// @Param id path string true "Assignment id"
// @Param targetDay query string false "Attempted day to exclude"
// @Param targetInterval query int false "Attempted interval to exclude"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/alternatives [get]
func (h *TimetableHandler) Alternatives(c *gin.Context) {
	var query dto.AlternativesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid alternatives query"))
		return
	}
	slots, err := h.service.Alternatives(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AlternativesResponse{
		AssignmentID: c.Param("id"),
		Alternatives: slots,
	}, nil)
}
