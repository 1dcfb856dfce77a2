package service

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/importer"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

// SnapshotName is the stored copy of the most recent live schedule page.
const SnapshotName = "exams_latest.html"

type reconciler interface {
	Reconcile(ctx context.Context, rows []models.ParsedExamRow, campus string, dryRun bool) (*models.ImportSummary, error)
}

type documentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type snapshotStore interface {
	Save(name string, data []byte) (string, error)
	ReadFile(name string) ([]byte, error)
	Exists(name string) bool
}

// ImportConfig carries import settings.
type ImportConfig struct {
	SearchURL     string
	DefaultCampus string
}

// ImportService ingests exam schedules from the live page, a stored snapshot or uploads.
type ImportService struct {
	reconciler reconciler
	fetcher    documentFetcher
	snapshots  snapshotStore
	parser     *importer.Parser
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        ImportConfig
}

// NewImportService wires import dependencies.
func NewImportService(
	rec reconciler,
	fetcher documentFetcher,
	snapshots snapshotStore,
	parser *importer.Parser,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ImportConfig,
) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultCampus == "" {
		cfg.DefaultCampus = "V"
	}
	return &ImportService{
		reconciler: rec,
		fetcher:    fetcher,
		snapshots:  snapshots,
		parser:     parser,
		cache:      cache,
		metrics:    metrics,
		validator:  withExamRules(validate),
		logger:     logger,
		cfg:        cfg,
	}
}

// ImportLive fetches the configured schedule page once, stores it as the latest snapshot and imports it.
func (s *ImportService) ImportLive(ctx context.Context, req dto.ImportRequest) (*models.ImportSummary, error) {
	req.Source = models.ImportSourceLive
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	if s.fetcher == nil || s.cfg.SearchURL == "" {
		return nil, appErrors.Clone(appErrors.ErrServiceDisabled, "live import is not configured")
	}

	target := s.searchURL(req)
	start := time.Now()
	body, err := s.fetcher.Fetch(ctx, target)
	s.metrics.ObserveFetch(err, time.Since(start))
	if err != nil {
		s.logger.Warn("schedule fetch failed", zap.String("url", target), zap.Error(err))
		wrapped := appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, appErrors.ErrFetchFailed.Message)
		s.metrics.RecordImport(req.Source, nil, req.DryRun, wrapped)
		return nil, wrapped
	}

	if s.snapshots != nil {
		if _, saveErr := s.snapshots.Save(SnapshotName, body); saveErr != nil {
			s.logger.Warn("failed to store schedule snapshot", zap.Error(saveErr))
		}
	}

	return s.importHTML(ctx, req, body)
}

// ImportStatic re-parses the last stored live snapshot without touching the network.
func (s *ImportService) ImportStatic(ctx context.Context, req dto.ImportRequest) (*models.ImportSummary, error) {
	req.Source = models.ImportSourceStatic
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	if s.snapshots == nil || !s.snapshots.Exists(SnapshotName) {
		return nil, appErrors.ErrSnapshotNotExists
	}
	body, err := s.snapshots.ReadFile(SnapshotName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read schedule snapshot")
	}
	return s.importHTML(ctx, req, body)
}

// ImportUpload imports an uploaded HTML schedule page.
func (s *ImportService) ImportUpload(ctx context.Context, req dto.ImportRequest, r io.Reader, contentType string) (*models.ImportSummary, error) {
	req.Source = models.ImportSourceUpload
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	if contentType != "" && !isHTMLContentType(contentType) {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, "upload must be an HTML document")
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	body, err := importer.DecodeHTML(raw, contentType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to decode upload")
	}
	return s.importHTML(ctx, req, body)
}

// ImportCSV imports a comma-delimited schedule. Lines with too few fields are counted as malformed.
func (s *ImportService) ImportCSV(ctx context.Context, req dto.ImportRequest, r io.Reader) (*models.ImportSummary, error) {
	req.Source = models.ImportSourceCSV
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	result, err := importer.ReadCSV(r, s.filter(req), s.parser)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid csv upload")
	}
	summary, err := s.reconcile(ctx, req, result.Rows)
	if err != nil {
		return nil, err
	}
	summary.Malformed = result.Malformed
	s.finish(ctx, req, summary)
	return summary, nil
}

func (s *ImportService) importHTML(ctx context.Context, req dto.ImportRequest, body []byte) (*models.ImportSummary, error) {
	rows, err := importer.ParseHTML(body, s.filter(req), s.parser)
	if err != nil {
		if !errors.Is(err, importer.ErrTableNotFound) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to parse schedule document")
		}
		s.logger.Info("no exam table found in document", zap.String("source", string(req.Source)))
		rows = nil
	}

	summary, err := s.reconcile(ctx, req, rows)
	if err != nil {
		return nil, err
	}
	s.finish(ctx, req, summary)
	return summary, nil
}

func (s *ImportService) reconcile(ctx context.Context, req dto.ImportRequest, rows []models.ParsedExamRow) (*models.ImportSummary, error) {
	summary, err := s.reconciler.Reconcile(ctx, rows, req.Campus, req.DryRun)
	if err != nil {
		s.metrics.RecordImport(req.Source, nil, req.DryRun, err)
		s.logger.Error("import failed",
			zap.String("source", string(req.Source)),
			zap.String("campus", req.Campus),
			zap.Bool("dry_run", req.DryRun),
			zap.Error(err),
		)
		return nil, err
	}
	summary.Source = req.Source
	return summary, nil
}

func (s *ImportService) finish(ctx context.Context, req dto.ImportRequest, summary *models.ImportSummary) {
	if !req.DryRun && summary.Inserted+summary.Updated > 0 {
		_ = s.cache.Invalidate(ctx, catalogCachePattern)
	}
	s.metrics.RecordImport(req.Source, summary, req.DryRun, nil)
	s.logger.Info("import completed",
		zap.String("source", string(req.Source)),
		zap.String("campus", summary.Campus),
		zap.Bool("dry_run", summary.DryRun),
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("malformed", summary.Malformed),
	)
}

func (s *ImportService) validate(req *dto.ImportRequest) error {
	req.Campus = NormalizeCampus(req.Campus, s.cfg.DefaultCampus)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Course = strings.TrimSpace(req.Course)
	req.Term = strings.TrimSpace(req.Term)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import request")
	}
	return nil
}

func (s *ImportService) filter(req dto.ImportRequest) importer.RowFilter {
	return importer.RowFilter{Subject: req.Subject, Course: req.Course}
}

// searchURL appends the term selector when present; subject and course are filtered locally.
func (s *ImportService) searchURL(req dto.ImportRequest) string {
	if req.Term == "" {
		return s.cfg.SearchURL
	}
	u, err := url.Parse(s.cfg.SearchURL)
	if err != nil {
		return s.cfg.SearchURL
	}
	q := u.Query()
	q.Set("term", req.Term)
	u.RawQuery = q.Encode()
	return u.String()
}

func isHTMLContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/html") ||
		strings.HasPrefix(ct, "application/xhtml") ||
		strings.HasPrefix(ct, "application/octet-stream") ||
		strings.HasPrefix(ct, "text/plain")
}
