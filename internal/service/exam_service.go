package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

const (
	defaultSearchPageSize = 20
	maxSearchPageSize     = 200
)

type examRepository interface {
	FindByNaturalKey(ctx context.Context, exec sqlx.ExtContext, key models.ExamKey) (*models.Exam, error)
	Create(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error
	GetByID(ctx context.Context, id string) (*models.Exam, error)
	Delete(ctx context.Context, id string) error
	ListByCampusAndFilters(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error)
	Search(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error)
}

// ExamService exposes exam listing and manual maintenance.
type ExamService struct {
	repo          examRepository
	cache         *CacheService
	validator     *validator.Validate
	logger        *zap.Logger
	defaultCampus string
}

// NewExamService constructs the exam service.
func NewExamService(repo examRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, defaultCampus string) *ExamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultCampus == "" {
		defaultCampus = "V"
	}
	return &ExamService{
		repo:          repo,
		cache:         cache,
		validator:     withExamRules(validate),
		logger:        logger,
		defaultCampus: defaultCampus,
	}
}

// List returns exams for a campus ordered by start time.
func (s *ExamService) List(ctx context.Context, query dto.ExamListQuery) ([]models.Exam, error) {
	exams, err := s.repo.ListByCampusAndFilters(ctx, models.ExamFilter{
		Campus:  NormalizeCampus(query.Campus, s.defaultCampus),
		Subject: query.Subject,
		Course:  query.Course,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return exams, nil
}

// Search returns one page of exams. Page size is clamped to 1..200 and sort accepts
// "startTime,asc" or "startTime,desc".
func (s *ExamService) Search(ctx context.Context, query dto.ExamSearchQuery) ([]models.Exam, *models.Pagination, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.Size
	switch {
	case size == 0:
		size = defaultSearchPageSize
	case size < 1:
		size = 1
	case size > maxSearchPageSize:
		size = maxSearchPageSize
	}

	order, err := parseSort(query.Sort)
	if err != nil {
		return nil, nil, err
	}

	filter := models.ExamFilter{
		Campus:    NormalizeCampus(query.Campus, s.defaultCampus),
		Subject:   query.Subject,
		Course:    query.Course,
		Section:   query.Section,
		Page:      page,
		PageSize:  size,
		SortOrder: order,
	}
	exams, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search exams")
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + size - 1) / size
	}
	return exams, &models.Pagination{Page: page, PageSize: size, TotalCount: total, TotalPages: totalPages}, nil
}

// Get returns one exam.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// Create stores a manually entered exam. A second exam with the same natural key is a conflict.
func (s *ExamService) Create(ctx context.Context, req dto.CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "startTime must be ISO-8601 with an offset")
	}

	exam := models.Exam{
		Campus:      NormalizeCampus(req.Campus, s.defaultCampus),
		Subject:     strings.TrimSpace(req.Subject),
		Course:      strings.TrimSpace(req.Course),
		Section:     strings.TrimSpace(req.Section),
		StartTime:   start,
		DurationMin: req.DurationMin,
		Building:    trimmedOrNil(req.Building),
		Room:        trimmedOrNil(req.Room),
	}

	existing, err := s.repo.FindByNaturalKey(ctx, nil, exam.Key())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check exam uniqueness")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "exam already exists for this course section and start time")
	}

	if err := s.repo.Create(ctx, nil, &exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	_ = s.cache.Invalidate(ctx, catalogCachePattern)
	s.logger.Info("exam created", zap.String("exam_id", exam.ID), zap.String("subject", exam.Subject), zap.String("course", exam.Course))
	return &exam, nil
}

// Delete removes an exam.
func (s *ExamService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam")
	}
	_ = s.cache.Invalidate(ctx, catalogCachePattern)
	return nil
}

func parseSort(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "ASC", nil
	}
	field, dir, found := strings.Cut(raw, ",")
	if !strings.EqualFold(strings.TrimSpace(field), "startTime") {
		return "", appErrors.Clone(appErrors.ErrValidation, "sort must be startTime,asc or startTime,desc")
	}
	if !found {
		return "ASC", nil
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "asc":
		return "ASC", nil
	case "desc":
		return "DESC", nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "sort direction must be asc or desc")
	}
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
