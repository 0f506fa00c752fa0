package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultDurationMinutes substitutes for absent or unparseable exam
// durations.
const DefaultDurationMinutes = 120

// ExamRecord is one row of source data describing a single exam's
// schedule. Records are immutable once loaded.
type ExamRecord struct {
	ID           int      `json:"id"`
	CourseCode   string   `json:"course_code" validate:"required"`
	ExamDate     string   `json:"exam_date"`
	StartTime    string   `json:"start_time"`
	Duration     Duration `json:"duration"`
	Room         string   `json:"room"`
	StudentSplit string   `json:"student_split"`
}

// Duration carries the raw duration field, which arrives either as a
// JSON number or as free text like "120 minutes".
type Duration string

// UnmarshalJSON accepts both string and numeric duration values.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*d = Duration(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err == nil {
		*d = Duration(asNumber.String())
		return nil
	}
	return fmt.Errorf("duration must be a string or number")
}

// MarshalJSON renders the duration as its raw string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(d))
}

// Minutes parses the leading integer of the duration. Values that are
// absent, non-numeric, or not positive fall back to fallbackMinutes.
func (d Duration) Minutes(fallbackMinutes int) int {
	if fallbackMinutes <= 0 {
		fallbackMinutes = DefaultDurationMinutes
	}
	raw := strings.TrimSpace(string(d))
	i := 0
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		i++
	}
	if i == 0 {
		return fallbackMinutes
	}
	minutes := 0
	for _, c := range raw[:i] {
		minutes = minutes*10 + int(c-'0')
		if minutes > 1<<30 {
			return fallbackMinutes
		}
	}
	if minutes <= 0 {
		return fallbackMinutes
	}
	return minutes
}

const (
	examDateLayout  = "2006-01-02"
	startTimeLayout = "15:04"
)

// StartAt combines exam_date and start_time into a wall-clock instant.
// A missing start_time defaults to midnight. The boolean reports
// whether the date parsed; callers decide how unparseable records sort
// or surface. Times carry no offset: the schedule is local wall-clock
// throughout, represented in UTC.
func (e ExamRecord) StartAt() (time.Time, bool) {
	day, err := time.Parse(examDateLayout, strings.TrimSpace(e.ExamDate))
	if err != nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(e.StartTime)
	if raw == "" {
		return day, true
	}
	clock, err := time.Parse(startTimeLayout, raw)
	if err != nil {
		return day, true
	}
	return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), true
}

// SortColumn identifies a sortable exam table column.
type SortColumn string

const (
	SortByCourseCode   SortColumn = "course_code"
	SortByExamDate     SortColumn = "exam_date"
	SortByStartTime    SortColumn = "start_time"
	SortByDuration     SortColumn = "duration"
	SortByRoom         SortColumn = "room"
	SortByStudentSplit SortColumn = "student_split"
)

// ParseSortColumn validates a raw column name.
func ParseSortColumn(raw string) (SortColumn, bool) {
	switch SortColumn(strings.ToLower(strings.TrimSpace(raw))) {
	case SortByCourseCode:
		return SortByCourseCode, true
	case SortByExamDate:
		return SortByExamDate, true
	case SortByStartTime:
		return SortByStartTime, true
	case SortByDuration:
		return SortByDuration, true
	case SortByRoom:
		return SortByRoom, true
	case SortByStudentSplit:
		return SortByStudentSplit, true
	}
	return "", false
}

// Chronological reports whether the column compares as a combined
// date-time rather than lexicographically.
func (c SortColumn) Chronological() bool {
	return c == SortByExamDate || c == SortByStartTime
}

// Value extracts the column's raw string value from a record.
func (c SortColumn) Value(e ExamRecord) string {
	switch c {
	case SortByCourseCode:
		return e.CourseCode
	case SortByExamDate:
		return e.ExamDate
	case SortByStartTime:
		return e.StartTime
	case SortByDuration:
		return string(e.Duration)
	case SortByRoom:
		return e.Room
	case SortByStudentSplit:
		return e.StudentSplit
	}
	return ""
}

// SortDirection is one of ascending, descending, or none.
type SortDirection string

const (
	SortNone       SortDirection = ""
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// ParseSortDirection maps raw query values onto a direction.
func ParseSortDirection(raw string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc", "ascending":
		return SortAscending
	case "desc", "descending":
		return SortDescending
	}
	return SortNone
}

// ScheduleFilter is the filter/sort state threaded through the
// pipeline. It is a plain value: callers own it, the pipeline never
// mutates it.
type ScheduleFilter struct {
	Query string
	Date  string
	Room  string

	SortColumn    SortColumn
	SortDirection SortDirection

	Page     int
	PageSize int
}

// ApplySortRequest advances the three-state sort cycle for a column:
// none -> ascending -> descending -> none on the same column, and a
// reset to ascending when the column changes.
func (f ScheduleFilter) ApplySortRequest(column SortColumn) ScheduleFilter {
	if f.SortColumn != column {
		f.SortColumn = column
		f.SortDirection = SortAscending
		return f
	}
	switch f.SortDirection {
	case SortNone:
		f.SortDirection = SortAscending
	case SortAscending:
		f.SortDirection = SortDescending
	default:
		f.SortColumn = ""
		f.SortDirection = SortNone
	}
	return f
}

// CacheKey derives a stable cache key from the filter state.
func (f ScheduleFilter) CacheKey() string {
	return fmt.Sprintf("exams:q=%s:d=%s:r=%s:s=%s:o=%s:p=%d:l=%d",
		strings.ToLower(f.Query), f.Date, f.Room, f.SortColumn, f.SortDirection, f.Page, f.PageSize)
}

// Pagination describes list slicing metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
