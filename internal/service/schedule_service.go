package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-schedule-api/internal/dto"
	"github.com/noah-isme/exam-schedule-api/internal/models"
)

type examSource interface {
	All() []models.ExamRecord
	Dates() []string
	Rooms() []string
}

// ScheduleService runs the filter -> sort -> project pipeline over the
// exam snapshot. Filter, Sort and Project are pure; List composes them
// with pagination and the optional response cache.
type ScheduleService struct {
	source examSource
	cache  *CacheService
	logger *zap.Logger
}

// NewScheduleService constructs the service. cache may be nil.
func NewScheduleService(source examSource, cache *CacheService, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{source: source, cache: cache, logger: logger}
}

// Filter returns the records matching the filter state, preserving
// input order. A record is included iff the search, date, and room
// predicates all match.
func (s *ScheduleService) Filter(records []models.ExamRecord, f models.ScheduleFilter) []models.ExamRecord {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.ExamRecord, 0, len(records))
	for _, rec := range records {
		// A record without a course_code only matches the empty query;
		// it stays visible rather than becoming unfindable.
		if query != "" && !strings.Contains(strings.ToLower(rec.CourseCode), query) {
			continue
		}
		if f.Date != "" && rec.ExamDate != f.Date {
			continue
		}
		if f.Room != "" && rec.Room != f.Room {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Sort orders the subset by the given column and direction. Direction
// none returns the input order unchanged. The sort is stable, and
// descending negates the ascending comparator rather than reversing
// the sorted slice, so equal-key records keep their relative order in
// both directions.
func (s *ScheduleService) Sort(subset []models.ExamRecord, column models.SortColumn, direction models.SortDirection) []models.ExamRecord {
	out := make([]models.ExamRecord, len(subset))
	copy(out, subset)
	if direction == models.SortNone || column == "" {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := compareRecords(out[i], out[j], column)
		if direction == models.SortDescending {
			return c > 0
		}
		return c < 0
	})
	return out
}

// compareRecords returns a three-way comparison for the given column.
// Chronological columns compare the combined exam_date + start_time;
// records whose date does not parse compare after every parseable one
// and equal to each other, so they stay adjacent and stable.
func compareRecords(a, b models.ExamRecord, column models.SortColumn) int {
	if column.Chronological() {
		aStart, aOK := a.StartAt()
		bStart, bOK := b.StartAt()
		switch {
		case aOK && bOK:
			if aStart.Before(bStart) {
				return -1
			}
			if aStart.After(bStart) {
				return 1
			}
			return 0
		case aOK:
			return -1
		case bOK:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(column.Value(a), column.Value(b))
}

// Project maps an ordered subset into the display-ready view. query is
// the active search text, used only for the status line.
func (s *ScheduleService) Project(ordered []models.ExamRecord, query string) dto.ScheduleView {
	view := dto.ScheduleView{
		Rows:    make([]dto.ExamRow, 0, len(ordered)),
		IsEmpty: len(ordered) == 0,
	}
	for _, rec := range ordered {
		view.Rows = append(view.Rows, dto.ExamRow{
			ExamID:       rec.ID,
			CourseCode:   orPlaceholder(rec.CourseCode),
			ExamDate:     orPlaceholder(rec.ExamDate),
			StartTime:    orPlaceholder(rec.StartTime),
			Duration:     orPlaceholder(string(rec.Duration)),
			Room:         orPlaceholder(rec.Room),
			StudentSplit: orPlaceholder(rec.StudentSplit),
		})
	}
	if !view.IsEmpty {
		view.CountLabel = fmt.Sprintf("Showing %d exam(s)", len(ordered))
	}

	if trimmed := strings.TrimSpace(query); trimmed != "" {
		if view.IsEmpty {
			view.SearchStatus = &dto.SearchStatus{
				Message: fmt.Sprintf("No results for %q", trimmed),
				Level:   "warning",
			}
		} else {
			view.SearchStatus = &dto.SearchStatus{
				Message: fmt.Sprintf("Found %d result(s) for %q", len(ordered), trimmed),
				Level:   "success",
			}
		}
	}
	return view
}

// cachedSchedule is the cache entry for a List response.
type cachedSchedule struct {
	View       dto.ScheduleView   `json:"view"`
	Pagination *models.Pagination `json:"pagination"`
}

// List runs the full pipeline against the current snapshot.
func (s *ScheduleService) List(ctx context.Context, f models.ScheduleFilter) (dto.ScheduleView, *models.Pagination, error) {
	if s.cache != nil {
		var entry cachedSchedule
		if raw, ok := s.cache.Get(ctx, f.CacheKey()); ok {
			if err := json.Unmarshal(raw, &entry); err == nil {
				return entry.View, entry.Pagination, nil
			}
		}
	}

	filtered := s.Filter(s.source.All(), f)
	ordered := s.Sort(filtered, f.SortColumn, f.SortDirection)

	pagination := &models.Pagination{Page: 1, PageSize: len(ordered), TotalCount: len(ordered)}
	paged := ordered
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PageSize
		if start > len(ordered) {
			start = len(ordered)
		}
		end := start + f.PageSize
		if end > len(ordered) {
			end = len(ordered)
		}
		paged = ordered[start:end]
		pagination = &models.Pagination{Page: page, PageSize: f.PageSize, TotalCount: len(ordered)}
	}

	view := s.Project(paged, f.Query)

	if s.cache != nil {
		if raw, err := json.Marshal(cachedSchedule{View: view, Pagination: pagination}); err == nil {
			s.cache.Set(ctx, f.CacheKey(), raw)
		}
	}
	return view, pagination, nil
}

// Dates exposes the distinct exam dates for the filter dropdown.
func (s *ScheduleService) Dates() []string { return s.source.Dates() }

// Rooms exposes the distinct rooms for the filter dropdown.
func (s *ScheduleService) Rooms() []string { return s.source.Rooms() }

func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return dto.Placeholder
	}
	return value
}
