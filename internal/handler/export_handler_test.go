package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-schedule-api/internal/service"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
	"github.com/noah-isme/exam-schedule-api/pkg/storage"
)

func newExportRouter(t *testing.T, enabled bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var svc *service.ExportService
	if enabled {
		store, err := storage.NewLocalStorage(t.TempDir())
		require.NoError(t, err)
		signer := storage.NewSignedURLSigner("test-secret", time.Hour)
		schedule := service.NewScheduleService(fixtureStore(), nil, nil)
		svc = service.NewExportService(schedule, store, signer, service.ExportConfig{APIPrefix: "/api/v1"}, nil, nil)
	}
	h := NewExportHandler(svc)

	r := gin.New()
	r.POST("/exports", h.Create)
	r.GET("/export/:token", h.Download)
	return r
}

func TestCreateExportAndDownload(t *testing.T) {
	r := newExportRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(`{"format":"csv","sort":"exam_date","order":"asc"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data struct {
			Token    string `json:"token"`
			URL      string `json:"url"`
			RowCount int    `json:"row_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.RowCount)
	require.NotEmpty(t, body.Data.Token)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/"+body.Data.Token, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Course,Date,Start,Duration,Room,Student Split")
}

func TestCreateExportInvalidPayload(t *testing.T) {
	r := newExportRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(`{"format":"xlsx"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadBadToken(t *testing.T) {
	r := newExportRouter(t, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/not-a-token", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportsDisabled(t *testing.T) {
	r := newExportRouter(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/exports", strings.NewReader(`{"format":"csv"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, appErrors.ErrExportsDisabled.Code, body.Error.Code)
}
