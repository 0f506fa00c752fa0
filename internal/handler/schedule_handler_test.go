package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	"github.com/noah-isme/exam-schedule-api/internal/service"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
)

type examStore struct {
	records []models.ExamRecord
}

func (s examStore) All() []models.ExamRecord {
	out := make([]models.ExamRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s examStore) Dates() []string { return []string{"2024-05-10", "2024-05-12"} }
func (s examStore) Rooms() []string { return []string{"HLT1", "KK203"} }

func (s examStore) Get(id int) (*models.ExamRecord, error) {
	for _, rec := range s.records {
		if rec.ID == id {
			return &rec, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func fixtureStore() examStore {
	return examStore{records: []models.ExamRecord{
		{ID: 1, CourseCode: "CS101", ExamDate: "2024-05-12", StartTime: "14:00", Duration: "120", Room: "HLT1"},
		{ID: 2, CourseCode: "MATH132", ExamDate: "2024-05-10", StartTime: "09:30", Duration: "90", Room: "KK203"},
	}}
}

func newScheduleRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := fixtureStore()
	h := NewScheduleHandler(service.NewScheduleService(store, nil, nil), store)

	r := gin.New()
	r.GET("/exams", h.List)
	r.GET("/exams/dates", h.Dates)
	r.GET("/exams/rooms", h.Rooms)
	r.GET("/exams/:id", h.Get)
	return r
}

type listEnvelope struct {
	Data struct {
		Rows []struct {
			CourseCode string `json:"course_code"`
		} `json:"rows"`
		IsEmpty      bool   `json:"is_empty"`
		CountLabel   string `json:"count_label"`
		SearchStatus *struct {
			Message string `json:"message"`
			Level   string `json:"level"`
		} `json:"search_status"`
	} `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
	Pagination *struct {
		TotalCount int `json:"total_count"`
	} `json:"pagination"`
}

func doRequest(t *testing.T, r *gin.Engine, method, path string) (*httptest.ResponseRecorder, listEnvelope) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)

	var body listEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestListAllExams(t *testing.T) {
	r := newScheduleRouter(t)

	w, body := doRequest(t, r, http.MethodGet, "/exams")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	require.Len(t, body.Data.Rows, 2)
	assert.Equal(t, "Showing 2 exam(s)", body.Data.CountLabel)
	require.NotNil(t, body.Pagination)
	assert.Equal(t, 2, body.Pagination.TotalCount)
}

func TestListSearchAndSort(t *testing.T) {
	r := newScheduleRouter(t)

	w, body := doRequest(t, r, http.MethodGet, "/exams?sort=exam_date&order=desc")
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, body.Data.Rows, 2)
	assert.Equal(t, "CS101", body.Data.Rows[0].CourseCode)
	assert.Equal(t, "MATH132", body.Data.Rows[1].CourseCode)

	_, body = doRequest(t, r, http.MethodGet, "/exams?q=math")
	require.Len(t, body.Data.Rows, 1)
	require.NotNil(t, body.Data.SearchStatus)
	assert.Equal(t, "success", body.Data.SearchStatus.Level)
}

func TestListNoResults(t *testing.T) {
	r := newScheduleRouter(t)

	w, body := doRequest(t, r, http.MethodGet, "/exams?q=physics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Data.IsEmpty)
	require.NotNil(t, body.Data.SearchStatus)
	assert.Equal(t, "warning", body.Data.SearchStatus.Level)
	assert.Contains(t, body.Data.SearchStatus.Message, "physics")
}

func TestListBadSortColumn(t *testing.T) {
	r := newScheduleRouter(t)

	w, body := doRequest(t, r, http.MethodGet, "/exams?sort=score")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, appErrors.ErrBadSortColumn.Code, body.Error.Code)
}

func TestGetExam(t *testing.T) {
	r := newScheduleRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exams/2", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "MATH132")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exams/99", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exams/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDatesAndRooms(t *testing.T) {
	r := newScheduleRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exams/dates", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2024-05-10")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exams/rooms", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "KK203")
}
