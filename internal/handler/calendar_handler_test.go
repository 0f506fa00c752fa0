package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-schedule-api/internal/service"
)

func newCalendarRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewCalendarHandler(service.NewCalendarService(fixtureStore(), 0, nil))

	r := gin.New()
	r.GET("/exams/:id/calendar", h.Export)
	r.GET("/exams/:id/calendar.ics", h.DownloadICS)
	return r
}

func TestCalendarExportPayload(t *testing.T) {
	r := newCalendarRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exams/2/calendar", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Title       string `json:"title"`
			GoogleURL   string `json:"google_url"`
			OutlookURL  string `json:"outlook_url"`
			ICSFileName string `json:"ics_file_name"`
			ICSDataURI  string `json:"ics_data_uri"`
			CopyText    string `json:"copy_text"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "MATH132 Exam", body.Data.Title)
	assert.Contains(t, body.Data.GoogleURL, "calendar.google.com")
	assert.Contains(t, body.Data.OutlookURL, "outlook.office.com")
	assert.Equal(t, "MATH132_exam.ics", body.Data.ICSFileName)
	assert.Contains(t, body.Data.ICSDataURI, "data:text/calendar;base64,")
	assert.Contains(t, body.Data.CopyText, "MATH132 Exam")
}

func TestCalendarExportUnknownExam(t *testing.T) {
	r := newCalendarRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exams/99/calendar", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalendarExportBadID(t *testing.T) {
	r := newCalendarRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exams/abc/calendar", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarICSDownload(t *testing.T) {
	r := newCalendarRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exams/1/calendar.ics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/calendar; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="CS101_exam.ics"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, w.Body.String(), "SUMMARY:CS101 Exam")
}
