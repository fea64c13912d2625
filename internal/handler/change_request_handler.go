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

type changeRequestService interface {
	Create(ctx context.Context, req dto.CreateChangeRequest) (*models.ChangeRequest, error)
	Resolve(ctx context.Context, requestID string, req dto.ResolveChangeRequest) (*models.ChangeRequest, error)
	Get(ctx context.Context, id string) (*models.ChangeRequest, error)
	List(ctx context.Context, filter models.ChangeRequestFilter) ([]models.ChangeRequest, *models.Pagination, error)
}

// ChangeRequestHandler exposes the reschedule request workflow.
type ChangeRequestHandler struct {
	service changeRequestService
}

// NewChangeRequestHandler builds a new handler.
func NewChangeRequestHandler(service changeRequestService) *ChangeRequestHandler {
	return &ChangeRequestHandler{service: service}
}

// Create godoc
// @Summary File a change request for an assignment
// @Tags ChangeRequests
// @Accept json
// @Produce json
// @Param payload body dto.CreateChangeRequest true "Change request payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /change-requests [post]
func (h *ChangeRequestHandler) Create(c *gin.Context) {
	var req dto.CreateChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid change request payload"))
		return
	}
	request, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// List godoc
// @Summary List change requests
// @Tags ChangeRequests
// @Produce json
// @Param assignmentId query string false "Filter by assignment"
// @Param lecturerId query string false "Filter by lecturer"
// @Param status query []string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /change-requests [get]
func (h *ChangeRequestHandler) List(c *gin.Context) {
	var query dto.ChangeRequestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid change request query"))
		return
	}
	requests, pagination, err := h.service.List(c.Request.Context(), models.ChangeRequestFilter{
		AssignmentID: query.AssignmentID,
		LecturerID:   query.LecturerID,
		Status:       query.Status,
		Page:         query.Page,
		PageSize:     query.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// Get godoc
// @Summary Get a change request
// @Tags ChangeRequests
// @Produce json
// @Param id path string true "Change request id"
// @Success 200 {object} response.Envelope
// @Router /change-requests/{id} [get]
func (h *ChangeRequestHandler) Get(c *gin.Context) {
	request, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Resolve godoc
// @Summary Approve or reject a pending change request
// @Tags ChangeRequests
// @Accept json
// @Produce json
// @Param id path string true "Change request id"
// @Param payload body dto.ResolveChangeRequest true "Resolution payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /change-requests/{id}/resolve [post]
func (h *ChangeRequestHandler) Resolve(c *gin.Context) {
	var req dto.ResolveChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolution payload"))
		return
	}
	request, err := h.service.Resolve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
