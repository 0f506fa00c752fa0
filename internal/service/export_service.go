package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	"github.com/noah-isme/exam-schedule-api/pkg/export"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
	"github.com/noah-isme/exam-schedule-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes schedule file export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// CreateExportRequest describes a schedule download: the filter/sort
// state to render plus the output format.
type CreateExportRequest struct {
	Query  string `json:"query"`
	Date   string `json:"date"`
	Room   string `json:"room"`
	Sort   string `json:"sort"`
	Order  string `json:"order"`
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	ID           string    `json:"id"`
	RelativePath string    `json:"-"`
	Token        string    `json:"token"`
	URL          string    `json:"url"`
	Format       string    `json:"format"`
	RowCount     int       `json:"row_count"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ExportService renders the filtered/sorted schedule table to CSV or
// PDF and exposes the result through signed download URLs.
type ExportService struct {
	schedule  *ScheduleService
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(schedule *ScheduleService, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		schedule:  schedule,
		storage:   store,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

var scheduleExportHeaders = []string{"Course", "Date", "Start", "Duration", "Room", "Student Split"}

// Generate renders the schedule for the requested filter state and
// stores the file.
func (s *ExportService) Generate(ctx context.Context, req CreateExportRequest) (*ExportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}

	filter := models.ScheduleFilter{
		Query: req.Query,
		Date:  req.Date,
		Room:  req.Room,
	}
	if req.Sort != "" {
		column, ok := models.ParseSortColumn(req.Sort)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrBadSortColumn, fmt.Sprintf("unknown sort column %q", req.Sort))
		}
		filter.SortColumn = column
		filter.SortDirection = models.ParseSortDirection(req.Order)
	}

	view, _, err := s.schedule.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: scheduleExportHeaders, Rows: make([]map[string]string, 0, len(view.Rows))}
	for _, row := range view.Rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Course":        row.CourseCode,
			"Date":          row.ExamDate,
			"Start":         row.StartTime,
			"Duration":      row.Duration,
			"Room":          row.Room,
			"Student Split": row.StudentSplit,
		})
	}

	var payload []byte
	switch req.Format {
	case "csv":
		payload, err = s.csv.Render(dataset)
	case "pdf":
		payload, err = s.pdf.Render(dataset, "Exam Schedule")
	default:
		err = fmt.Errorf("unsupported format %s", req.Format)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render schedule export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("exam_schedule_%s.%s", time.Now().UTC().Format("20060102_150405"), req.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store schedule export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign download url")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		ID:           exportID,
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       req.Format,
		RowCount:     len(view.Rows),
		ExpiresAt:    expiresAt,
	}, nil
}

// Open resolves a download token to the stored file.
func (s *ExportService) Open(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export no longer available")
	}
	return file, nil
}

// Cleanup removes files older than ttl (defaults to the configured TTL
// when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}
