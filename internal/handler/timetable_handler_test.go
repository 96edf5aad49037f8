package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/xXemran05khanXx/uniflow/internal/dto"
	"github.com/xXemran05khanXx/uniflow/internal/models"
	"github.com/xXemran05khanXx/uniflow/internal/service"
	appErrors "github.com/xXemran05khanXx/uniflow/pkg/errors"
)

type timetableOrchestratorMock struct {
	captured     dto.GenerateTimetableRequest
	capturedSave dto.SaveTimetableRequest
	err          error
}

func (m *timetableOrchestratorMock) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.GenerateTimetableResponse{TimetableID: "result-1", SchedulingRate: 100}, nil
}

func (m *timetableOrchestratorMock) GenerateAsync(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerationJob, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.GenerationJob{JobID: "job-1", Status: dto.JobStatusQueued}, nil
}

func (m *timetableOrchestratorMock) Job(jobID string) (*dto.GenerationJob, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.GenerationJob{JobID: jobID, Status: dto.JobStatusCompleted, Progress: 100}, nil
}

func (m *timetableOrchestratorMock) Audit(ctx context.Context, req dto.AuditRequest) (*models.ConflictReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.ConflictReport{CanProceed: true}, nil
}

func (m *timetableOrchestratorMock) Save(ctx context.Context, req dto.SaveTimetableRequest) (string, error) {
	m.capturedSave = req
	if m.err != nil {
		return "", m.err
	}
	return "tt-1", nil
}

func (m *timetableOrchestratorMock) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return []models.Timetable{{ID: "tt-1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *timetableOrchestratorMock) Get(ctx context.Context, id string) (*service.TimetableDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &service.TimetableDetail{Timetable: models.Timetable{ID: id}}, nil
}

func (m *timetableOrchestratorMock) Publish(ctx context.Context, id string) error { return m.err }

func (m *timetableOrchestratorMock) Archive(ctx context.Context, id string) error { return m.err }

func (m *timetableOrchestratorMock) Delete(ctx context.Context, id string) error { return m.err }

func (m *timetableOrchestratorMock) Export(ctx context.Context, id, format string) ([]byte, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return []byte("Day,Start\n"), "text/csv", nil
}

func TestTimetableGenerateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableOrchestratorMock{}
	handler := &TimetableHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(validGeneratePayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "fall-2026", mockSvc.captured.Name)
	require.Len(t, mockSvc.captured.Courses, 1)
}

func TestTimetableGenerateAsyncAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableOrchestratorMock{}
	handler := &TimetableHandler{service: mockSvc}

	var payload map[string]any
	require.NoError(t, json.Unmarshal(validGeneratePayload(), &payload))
	payload["async"] = true
	body, _ := json.Marshal(payload)

	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Contains(t, w.Body.String(), "job-1")
}

func TestTimetableGenerateMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableOrchestratorMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader([]byte(`{"courses":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableGenerateOversizedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableOrchestratorMock{}}

	oversized := dto.GenerateTimetableRequest{
		Teachers: []models.Teacher{{TeacherID: "t1", Name: "Dr. Rao"}},
		Rooms:    []models.Room{{RoomNumber: "R1", Capacity: 40}},
	}
	for i := 0; i <= maxCourses; i++ {
		oversized.Courses = append(oversized.Courses, models.Course{CourseCode: "CS101", CourseName: "Programming", Credits: 3, MaxStudents: 30})
	}
	body, _ := json.Marshal(oversized)

	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "courses exceeds supported limit")
}

func TestTimetableJobStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableOrchestratorMock{}}
	req, _ := http.NewRequest(http.MethodGet, "/timetables/jobs/job-1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	handler.Job(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "COMPLETED")
}

func TestTimetableAuditSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableOrchestratorMock{}}
	payload := []byte(`{"entries":[{"courseCode":"CS101","teacherId":"t1","roomNumber":"R1","day":"monday","startTime":"09:00","endTime":"10:00"}]}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/audit", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Audit(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "canProceed")
}

func TestTimetableSaveCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableOrchestratorMock{}
	handler := &TimetableHandler{service: mockSvc}
	payload := []byte(`{"timetableId":"result-1","name":"fall-2026","publish":true}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Save(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "result-1", mockSvc.capturedSave.TimetableID)
	require.True(t, mockSvc.capturedSave.Publish)
}

func TestTimetableSaveConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableOrchestratorMock{err: appErrors.Clone(appErrors.ErrConflict, "timetable contains critical conflicts")}
	handler := &TimetableHandler{service: mockSvc}
	payload := []byte(`{"timetableId":"result-1"}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Save(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestTimetableListSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableOrchestratorMock{}}
	req, _ := http.NewRequest(http.MethodGet, "/timetables?status=PUBLISHED&page=1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "pagination")
}

func TestTimetablePublishNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableOrchestratorMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/timetables/tt-1/publish", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Publish(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestTimetableDeleteNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableOrchestratorMock{err: appErrors.Clone(appErrors.ErrNotFound, "timetable not found")}
	handler := &TimetableHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodDelete, "/timetables/missing", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Delete(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetableExportHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableOrchestratorMock{}}
	req, _ := http.NewRequest(http.MethodGet, "/timetables/tt-1/export?format=csv", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "timetable-tt-1.csv")
}

func validGeneratePayload() []byte {
	return []byte(`{
		"name": "fall-2026",
		"courses": [{"courseCode":"CS101","courseName":"Programming","credits":3,"department":"Computer Science","maxStudents":30}],
		"teachers": [{"teacherId":"t1","name":"Dr. Rao","department":"Computer Science"}],
		"rooms": [{"roomNumber":"R1","capacity":40}]
	}`)
}
