package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	"github.com/noah-isme/exam-schedule-api/internal/service"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
	"github.com/noah-isme/exam-schedule-api/pkg/response"
)

// ScheduleHandler serves the exam schedule table.
type ScheduleHandler struct {
	service *service.ScheduleService
	repo    examReader
}

type examReader interface {
	Get(id int) (*models.ExamRecord, error)
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc *service.ScheduleService, repo examReader) *ScheduleHandler {
	return &ScheduleHandler{service: svc, repo: repo}
}

// List godoc
// @Summary List exams
// @Tags Exams
// @Produce json
// @Param q query string false "Search course codes (case-insensitive substring)"
// @Param date query string false "Exact exam date filter (YYYY-MM-DD)"
// @Param room query string false "Exact room filter"
// @Param sort query string false "Sort column"
// @Param order query string false "Sort direction: asc, desc, none"
// @Param page query int false "Page"
// @Param limit query int false "Page size (omit for all rows)"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var filter models.ScheduleFilter
	filter.Query = c.Query("q")
	filter.Date = c.Query("date")
	filter.Room = c.Query("room")

	if raw := c.Query("sort"); raw != "" {
		column, ok := models.ParseSortColumn(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrBadSortColumn, "unknown sort column "+strconv.Quote(raw)))
			return
		}
		filter.SortColumn = column
		filter.SortDirection = models.ParseSortDirection(c.DefaultQuery("order", "asc"))
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
		filter.PageSize = limit
	}

	view, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, pagination)
}

// Get godoc
// @Summary Get one exam record
// @Tags Exams
// @Produce json
// @Param id path int true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "exam id must be an integer"))
		return
	}
	rec, err := h.repo.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

// Dates godoc
// @Summary Distinct exam dates
// @Tags Exams
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exams/dates [get]
func (h *ScheduleHandler) Dates(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Dates(), nil)
}

// Rooms godoc
// @Summary Distinct exam rooms
// @Tags Exams
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exams/rooms [get]
func (h *ScheduleHandler) Rooms(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Rooms(), nil)
}
