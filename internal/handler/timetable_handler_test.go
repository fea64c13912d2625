package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/engine"
	"github.com/campusops/timetable-api/internal/models"
)

type timetableServiceMock struct {
	generateResp *dto.GenerateTimetableResponse
	generateErr  error
	moveResp     *models.Assignment
	moveErr      error
	altResp      []models.TimeSlot
	gridResp     []models.Assignment
}

func (m *timetableServiceMock) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	return m.generateResp, m.generateErr
}

func (m *timetableServiceMock) Move(ctx context.Context, assignmentID string, day models.Day, interval int) (*models.Assignment, error) {
	return m.moveResp, m.moveErr
}

func (m *timetableServiceMock) Alternatives(ctx context.Context, assignmentID string, query dto.AlternativesQuery) ([]models.TimeSlot, error) {
	return m.altResp, nil
}

func (m *timetableServiceMock) Grid(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error) {
	return m.gridResp, &models.Pagination{Page: 1, PageSize: 50, TotalCount: len(m.gridResp)}, nil
}

func TestTimetableHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTimetableHandler(&timetableServiceMock{
		generateResp: &dto.GenerateTimetableResponse{
			Assignments: []models.Assignment{{ID: "a-1"}},
			Persisted:   true,
		},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.GenerateTimetableRequest{})
	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Generate(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTimetableHandlerGenerateInfeasible(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTimetableHandler(&timetableServiceMock{
		generateResp: &dto.GenerateTimetableResponse{
			Issues: []engine.ValidationIssue{{
				Kind:     engine.IssueNoQualifiedLecturer,
				ModuleID: "mod-1",
				BatchID:  "batch-1",
			}},
		},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", nil)
	c.Request = req

	handler.Generate(c)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestTimetableHandlerMoveConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTimetableHandler(&timetableServiceMock{
		moveErr: &models.ConflictError{
			Conflict: models.Conflict{
				Kind: models.ConflictLecturer,
				Detail: &models.ConflictDetail{
					AssignmentID: "a-2",
					LecturerName: "Dr. Silva",
					Day:          models.DayTuesday,
					Interval:     2,
				},
			},
			Alternatives: []models.TimeSlot{{Day: models.DayWednesday, Interval: 3}},
		},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.MoveAssignmentRequest{Day: models.DayTuesday, Interval: 2})
	req, _ := http.NewRequest(http.MethodPost, "/assignments/a-1/move", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}

	handler.Move(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	var payload struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
		Meta map[string]json.RawMessage `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.NotNil(t, payload.Error)
	assert.Equal(t, "SCHEDULE_CONFLICT", payload.Error.Code)
	assert.Contains(t, payload.Meta, "conflict")
	assert.Contains(t, payload.Meta, "alternatives")
}

func TestTimetableHandlerMoveBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTimetableHandler(&timetableServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/assignments/a-1/move", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}

	handler.Move(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerAlternatives(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTimetableHandler(&timetableServiceMock{
		altResp: []models.TimeSlot{
			{Day: models.DayWednesday, Interval: 3},
			{Day: models.DayFriday, Interval: 1},
		},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/assignments/a-1/alternatives?targetDay=TUESDAY&targetInterval=2", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}

	handler.Alternatives(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Data dto.AlternativesResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "a-1", payload.Data.AssignmentID)
	assert.Len(t, payload.Data.Alternatives, 2)
}
