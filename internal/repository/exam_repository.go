package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	"github.com/noah-isme/exam-schedule-api/pkg/config"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
)

// ExamRepository holds the in-memory exam list loaded from the JSON
// source document. Records are exposed read-only; Load swaps the whole
// snapshot atomically so a failed refresh keeps the previous one
// serving.
type ExamRepository struct {
	source config.SourceConfig
	client *http.Client
	logger *zap.Logger

	mu       sync.RWMutex
	records  []models.ExamRecord
	loadedAt time.Time
}

// NewExamRepository constructs the repository. Load must be called
// before the repository serves records.
func NewExamRepository(source config.SourceConfig, logger *zap.Logger) *ExamRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := source.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ExamRepository{
		source: source,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Load fetches and decodes the source document, replacing the current
// snapshot on success.
func (r *ExamRepository) Load(ctx context.Context) error {
	payload, err := r.fetch(ctx)
	if err != nil {
		return err
	}

	var records []models.ExamRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "exam source is not a valid JSON array")
	}

	for i := range records {
		// IDs give the UI a stable handle back to a record across
		// sorted/filtered renders. Source-provided IDs win.
		if records[i].ID == 0 {
			records[i].ID = i + 1
		}
		if strings.TrimSpace(records[i].CourseCode) == "" {
			r.logger.Sugar().Warnw("exam record missing course_code", "index", i, "exam_date", records[i].ExamDate)
		}
	}

	r.mu.Lock()
	r.records = records
	r.loadedAt = time.Now()
	r.mu.Unlock()

	r.logger.Sugar().Infow("exam source loaded", "source", r.source.Path, "count", len(records))
	return nil
}

func (r *ExamRepository) fetch(ctx context.Context) ([]byte, error) {
	path := strings.TrimSpace(r.source.Path)
	if path == "" {
		return nil, appErrors.Clone(appErrors.ErrSourceUnavailable, "no exam source configured")
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "build exam source request")
		}
		resp, err := r.client.Do(req)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "fetch exam source")
		}
		defer resp.Body.Close() //nolint:errcheck
		if resp.StatusCode != http.StatusOK {
			return nil, appErrors.Clone(appErrors.ErrSourceUnavailable, fmt.Sprintf("exam source returned status %d", resp.StatusCode))
		}
		return io.ReadAll(resp.Body)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		// The static page variant of this system fails the same way
		// when opened from disk; the remedy matches its hint.
		return nil, appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status,
			"read exam source file; check EXAM_SOURCE or serve the JSON document over a local HTTP server")
	}
	return payload, nil
}

// All returns a copy of the current snapshot in original load order.
func (r *ExamRepository) All() []models.ExamRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ExamRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Get returns the record with the given ID.
func (r *ExamRepository) Get(id int) (*models.ExamRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.records {
		if r.records[i].ID == id {
			rec := r.records[i]
			return &rec, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("exam %d not found", id))
}

// Count reports the snapshot size.
func (r *ExamRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// LoadedAt reports when the snapshot was last replaced.
func (r *ExamRepository) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}

// Dates returns the distinct exam dates in the snapshot, sorted, for
// the UI's date filter dropdown.
func (r *ExamRepository) Dates() []string {
	return r.distinct(func(e models.ExamRecord) string { return e.ExamDate })
}

// Rooms returns the distinct rooms in the snapshot, sorted.
func (r *ExamRepository) Rooms() []string {
	return r.distinct(func(e models.ExamRecord) string { return e.Room })
}

func (r *ExamRepository) distinct(field func(models.ExamRecord) string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.records))
	out := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		value := strings.TrimSpace(field(rec))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}
