package service

import (
	"encoding/base64"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
)

type getterStub struct {
	records map[int]models.ExamRecord
}

func (g getterStub) Get(id int) (*models.ExamRecord, error) {
	rec, ok := g.records[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return &rec, nil
}

func calendarFixture() models.ExamRecord {
	return models.ExamRecord{
		ID:           1,
		CourseCode:   "CS101",
		ExamDate:     "2024-05-10",
		StartTime:    "09:30",
		Duration:     "90 minutes",
		Room:         "HLT1",
		StudentSplit: "A-K",
	}
}

func TestBuildDerivesEvent(t *testing.T) {
	svc := NewCalendarService(getterStub{}, 0, nil)

	event, err := svc.Build(calendarFixture())
	require.NoError(t, err)

	assert.Equal(t, "CS101 Exam", event.Title)
	assert.Equal(t, "HLT1", event.Location)
	assert.Equal(t, "Course: CS101\nRoom: HLT1\nStudent split: A-K", event.Description)
	assert.Equal(t, "2024-05-10T09:30:00Z", event.Start.Format("2006-01-02T15:04:05Z07:00"))
	assert.Equal(t, "2024-05-10T11:00:00Z", event.End.Format("2006-01-02T15:04:05Z07:00"))
}

func TestBuildMissingStartTimeDefaultsToMidnight(t *testing.T) {
	svc := NewCalendarService(getterStub{}, 0, nil)
	rec := calendarFixture()
	rec.StartTime = ""

	event, err := svc.Build(rec)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10T00:00:00Z", event.Start.Format("2006-01-02T15:04:05Z07:00"))
}

func TestBuildUnparseableDurationFallsBack(t *testing.T) {
	svc := NewCalendarService(getterStub{}, 0, nil)
	rec := calendarFixture()
	rec.Duration = "abc"

	event, err := svc.Build(rec)
	require.NoError(t, err)
	assert.Equal(t, float64(models.DefaultDurationMinutes), event.End.Sub(event.Start).Minutes())
}

func TestBuildCustomDefaultDuration(t *testing.T) {
	svc := NewCalendarService(getterStub{}, 45, nil)
	rec := calendarFixture()
	rec.Duration = ""

	event, err := svc.Build(rec)
	require.NoError(t, err)
	assert.Equal(t, 45.0, event.End.Sub(event.Start).Minutes())
}

func TestBuildRejectsUnparseableDate(t *testing.T) {
	svc := NewCalendarService(getterStub{}, 0, nil)
	rec := calendarFixture()
	rec.ExamDate = "TBC"

	_, err := svc.Build(rec)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBuildBlankCourseCodeTitle(t *testing.T) {
	svc := NewCalendarService(getterStub{}, 0, nil)
	rec := calendarFixture()
	rec.CourseCode = ""

	event, err := svc.Build(rec)
	require.NoError(t, err)
	assert.Equal(t, "Exam", event.Title)
	assert.NotContains(t, event.Description, "Course:")
}

func TestGoogleLink(t *testing.T) {
	svc := NewCalendarService(getterStub{}, 0, nil)
	event, err := svc.Build(calendarFixture())
	require.NoError(t, err)

	link := svc.GoogleLink(event)
	parsed, err := url.Parse(link)
	require.NoError(t, err)

	assert.Equal(t, "calendar.google.com", parsed.Host)
	q := parsed.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "CS101 Exam", q.Get("text"))
	assert.Equal(t, "20240510T093000Z/20240510T110000Z", q.Get("dates"))
	assert.Equal(t, "HLT1", q.Get("location"))
	assert.Contains(t, q.Get("details"), "Student split: A-K")
}

func TestOutlookLink(t *testing.T) {
	svc := NewCalendarService(getterStub{}, 0, nil)
	event, err := svc.Build(calendarFixture())
	require.NoError(t, err)

	parsed, err := url.Parse(svc.OutlookLink(event))
	require.NoError(t, err)

	assert.Equal(t, "outlook.office.com", parsed.Host)
	q := parsed.Query()
	assert.Equal(t, "addevent", q.Get("rru"))
	assert.Equal(t, "2024-05-10T09:30:00", q.Get("startdt"))
	assert.Equal(t, "2024-05-10T11:00:00", q.Get("enddt"))
	assert.Equal(t, "Course: CS101<br>Room: HLT1<br>Student split: A-K", q.Get("body"))
}

func TestICSPayload(t *testing.T) {
	svc := NewCalendarService(getterStub{}, 0, nil)
	event, err := svc.Build(calendarFixture())
	require.NoError(t, err)

	payload, err := svc.ICS(event)
	require.NoError(t, err)

	text := string(payload)
	assert.Contains(t, text, "BEGIN:VCALENDAR")
	assert.Contains(t, text, "METHOD:PUBLISH")
	assert.Contains(t, text, "DTSTART:20240510T093000Z")
	assert.Contains(t, text, "DTEND:20240510T110000Z")
	assert.Contains(t, text, "SUMMARY:CS101 Exam")
	assert.Contains(t, text, "LOCATION:HLT1")
	assert.Contains(t, text, "END:VCALENDAR")
}

func TestCopyText(t *testing.T) {
	svc := NewCalendarService(getterStub{}, 0, nil)
	event, err := svc.Build(calendarFixture())
	require.NoError(t, err)

	text := svc.CopyText(event)
	lines := strings.Split(text, "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "CS101 Exam", lines[0])
	assert.Equal(t, "Date: Friday, May 10, 2024", lines[1])
	assert.Equal(t, "Time: 9:30 AM - 11:00 AM", lines[2])
	assert.Equal(t, "Location: HLT1", lines[3])
	assert.Contains(t, text, "Student split: A-K")
}

func TestICSFileName(t *testing.T) {
	assert.Equal(t, "CS101_exam.ics", ICSFileName("CS101"))
	assert.Equal(t, "CS_101_exam.ics", ICSFileName("CS 101"))
	assert.Equal(t, "exam.ics", ICSFileName("   "))
	assert.Equal(t, "exam.ics", ICSFileName("///"))
}

func TestExportAllRepresentationsAgree(t *testing.T) {
	svc := NewCalendarService(getterStub{records: map[int]models.ExamRecord{1: calendarFixture()}}, 0, nil)

	export, err := svc.Export(1)
	require.NoError(t, err)

	assert.Equal(t, "CS101 Exam", export.Title)
	assert.Equal(t, "CS101_exam.ics", export.ICSFileName)
	assert.Contains(t, export.GoogleURL, "20240510T093000Z%2F20240510T110000Z")
	assert.Contains(t, export.OutlookURL, "2024-05-10T09%3A30%3A00")
	assert.Contains(t, export.CopyText, "Friday, May 10, 2024")

	const prefix = "data:text/calendar;base64,"
	require.True(t, strings.HasPrefix(export.ICSDataURI, prefix))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(export.ICSDataURI, prefix))
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "DTSTART:20240510T093000Z")
}

func TestExportUnknownExam(t *testing.T) {
	svc := NewCalendarService(getterStub{}, 0, nil)

	_, err := svc.Export(42)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
