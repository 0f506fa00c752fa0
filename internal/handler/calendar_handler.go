package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-schedule-api/internal/service"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
	"github.com/noah-isme/exam-schedule-api/pkg/response"
)

// CalendarHandler serves per-exam calendar export payloads.
type CalendarHandler struct {
	service *service.CalendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// Export godoc
// @Summary Calendar export payloads for one exam
// @Description Returns the Google Calendar link, Outlook Web link, ICS payload, and clipboard text derived from the exam.
// @Tags Calendar
// @Produce json
// @Param id path int true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/calendar [get]
func (h *CalendarHandler) Export(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "exam id must be an integer"))
		return
	}
	payload, err := h.service.Export(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// DownloadICS godoc
// @Summary Download the exam's calendar file
// @Tags Calendar
// @Produce text/calendar
// @Param id path int true "Exam ID"
// @Success 200 {file} file
// @Router /exams/{id}/calendar.ics [get]
func (h *CalendarHandler) DownloadICS(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "exam id must be an integer"))
		return
	}
	payload, filename, err := h.service.ICSAttachment(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", payload)
}
