package service

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-schedule-api/internal/dto"
	"github.com/noah-isme/exam-schedule-api/internal/models"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
)

const (
	googleCalendarBase = "https://calendar.google.com/calendar/render"
	outlookComposeBase = "https://outlook.office.com/calendar/0/deeplink/compose"

	// Compact timestamp shared by the Google link and the ICS payload.
	compactTimeLayout = "20060102T150405Z"
	// Outlook wants ISO-8601 truncated to whole seconds.
	outlookTimeLayout = "2006-01-02T15:04:05"
)

type examGetter interface {
	Get(id int) (*models.ExamRecord, error)
}

// CalendarService derives calendar events from exam records and formats
// them for the supported export targets. Every formatter consumes the
// derived CalendarEvent; none re-parses the source record.
type CalendarService struct {
	repo            examGetter
	defaultDuration int
	logger          *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(repo examGetter, defaultDurationMinutes int, logger *zap.Logger) *CalendarService {
	if defaultDurationMinutes <= 0 {
		defaultDurationMinutes = models.DefaultDurationMinutes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{repo: repo, defaultDuration: defaultDurationMinutes, logger: logger}
}

// Build derives the calendar event for one exam record.
//
// The exam date must parse; an event without a date is meaningless. A
// missing or malformed start_time defaults to midnight, matching the
// sort comparator, and a malformed duration falls back to the default
// span rather than failing the export.
func (s *CalendarService) Build(rec models.ExamRecord) (models.CalendarEvent, error) {
	start, ok := rec.StartAt()
	if !ok {
		return models.CalendarEvent{}, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("exam date %q is not a calendar date", rec.ExamDate))
	}
	minutes := rec.Duration.Minutes(s.defaultDuration)

	lines := make([]string, 0, 3)
	if code := strings.TrimSpace(rec.CourseCode); code != "" {
		lines = append(lines, "Course: "+code)
	}
	if room := strings.TrimSpace(rec.Room); room != "" {
		lines = append(lines, "Room: "+room)
	}
	if split := strings.TrimSpace(rec.StudentSplit); split != "" {
		lines = append(lines, "Student split: "+split)
	}

	return models.CalendarEvent{
		Title:       strings.TrimSpace(rec.CourseCode + " Exam"),
		Description: strings.Join(lines, "\n"),
		Location:    rec.Room,
		Start:       start,
		End:         start.Add(time.Duration(minutes) * time.Minute),
	}, nil
}

// Export builds the event for an exam ID and renders all four export
// representations from it.
func (s *CalendarService) Export(id int) (*dto.CalendarExport, error) {
	rec, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	event, err := s.Build(*rec)
	if err != nil {
		return nil, err
	}

	icsPayload, err := s.ICS(event)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render calendar file")
	}

	return &dto.CalendarExport{
		Title:       event.Title,
		Location:    event.Location,
		Start:       event.Start,
		End:         event.End,
		GoogleURL:   s.GoogleLink(event),
		OutlookURL:  s.OutlookLink(event),
		ICSFileName: ICSFileName(rec.CourseCode),
		ICSDataURI:  "data:text/calendar;base64," + base64.StdEncoding.EncodeToString(icsPayload),
		CopyText:    s.CopyText(event),
	}, nil
}

// ICSAttachment returns the raw calendar-file payload and its download
// filename for one exam ID.
func (s *CalendarService) ICSAttachment(id int) ([]byte, string, error) {
	rec, err := s.repo.Get(id)
	if err != nil {
		return nil, "", err
	}
	event, err := s.Build(*rec)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.ICS(event)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render calendar file")
	}
	return payload, ICSFileName(rec.CourseCode), nil
}

// GoogleLink renders the Google Calendar event template URL.
func (s *CalendarService) GoogleLink(event models.CalendarEvent) string {
	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", event.Title)
	params.Set("dates", event.Start.Format(compactTimeLayout)+"/"+event.End.Format(compactTimeLayout))
	params.Set("details", event.Description)
	params.Set("location", event.Location)
	return googleCalendarBase + "?" + params.Encode()
}

// OutlookLink renders the Outlook Web compose deep link.
func (s *CalendarService) OutlookLink(event models.CalendarEvent) string {
	params := url.Values{}
	params.Set("path", "/calendar/action/compose")
	params.Set("rru", "addevent")
	params.Set("subject", event.Title)
	params.Set("startdt", event.Start.Format(outlookTimeLayout))
	params.Set("enddt", event.End.Format(outlookTimeLayout))
	params.Set("body", strings.ReplaceAll(event.Description, "\n", "<br>"))
	params.Set("location", event.Location)
	return outlookComposeBase + "?" + params.Encode()
}

// ICS renders a minimal VCALENDAR document for the event. Newlines in
// the description are escaped by the serializer per RFC 5545.
func (s *CalendarService) ICS(event models.CalendarEvent) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//exam-schedule-api//EN")

	uid := fmt.Sprintf("%s-%s@exam-schedule", slugify(event.Title), event.Start.Format(compactTimeLayout))
	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(event.Start)
	ev.SetStartAt(event.Start)
	ev.SetEndAt(event.End)
	ev.SetSummary(event.Title)
	if event.Description != "" {
		ev.SetDescription(event.Description)
	}
	if event.Location != "" {
		ev.SetLocation(event.Location)
	}

	return []byte(cal.Serialize()), nil
}

// CopyText renders the human-readable clipboard block.
func (s *CalendarService) CopyText(event models.CalendarEvent) string {
	var b strings.Builder
	b.WriteString(event.Title)
	b.WriteString("\nDate: ")
	b.WriteString(event.Start.Format("Monday, January 2, 2006"))
	b.WriteString("\nTime: ")
	b.WriteString(event.Start.Format("3:04 PM"))
	b.WriteString(" - ")
	b.WriteString(event.End.Format("3:04 PM"))
	if event.Location != "" {
		b.WriteString("\nLocation: ")
		b.WriteString(event.Location)
	}
	if event.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(event.Description)
	}
	return b.String()
}

// ICSFileName derives the attachment name for a course's calendar file.
func ICSFileName(courseCode string) string {
	slug := slugify(courseCode)
	if slug == "" {
		slug = "exam"
		return slug + ".ics"
	}
	return slug + "_exam.ics"
}

func slugify(raw string) string {
	var b strings.Builder
	for _, c := range strings.TrimSpace(raw) {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteRune(c)
		case c == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}
