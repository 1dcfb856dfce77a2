package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

const (
	catalogCachePrefix  = "exam-planner:catalog"
	catalogCachePattern = catalogCachePrefix + ":*"
)

type catalogRepository interface {
	DistinctSubjects(ctx context.Context, filter models.CatalogFilter) ([]string, error)
	DistinctCourses(ctx context.Context, filter models.CatalogFilter) ([]string, error)
	DistinctSections(ctx context.Context, filter models.CatalogFilter) ([]string, error)
}

// CatalogService answers distinct subject, course and section lookups, cached in Redis when enabled.
type CatalogService struct {
	repo          catalogRepository
	cache         *CacheService
	ttl           time.Duration
	logger        *zap.Logger
	defaultCampus string
}

// NewCatalogService constructs the catalogue service.
func NewCatalogService(repo catalogRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger, defaultCampus string) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultCampus == "" {
		defaultCampus = "V"
	}
	return &CatalogService{repo: repo, cache: cache, ttl: ttl, logger: logger, defaultCampus: defaultCampus}
}

// Subjects lists subject codes for a campus.
func (s *CatalogService) Subjects(ctx context.Context, query dto.CatalogQuery) ([]string, bool, error) {
	filter := s.filter(query)
	return s.cached(ctx, "subjects", filter, s.repo.DistinctSubjects)
}

// Courses lists course codes for a subject.
func (s *CatalogService) Courses(ctx context.Context, query dto.CatalogQuery) ([]string, bool, error) {
	filter := s.filter(query)
	if filter.Subject == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "subject is required")
	}
	return s.cached(ctx, "courses", filter, s.repo.DistinctCourses)
}

// Sections lists section codes for a course.
func (s *CatalogService) Sections(ctx context.Context, query dto.CatalogQuery) ([]string, bool, error) {
	filter := s.filter(query)
	if filter.Subject == "" || filter.Course == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "subject and course are required")
	}
	return s.cached(ctx, "sections", filter, s.repo.DistinctSections)
}

func (s *CatalogService) filter(query dto.CatalogQuery) models.CatalogFilter {
	return models.CatalogFilter{
		Campus:  NormalizeCampus(query.Campus, s.defaultCampus),
		Subject: strings.TrimSpace(query.Subject),
		Course:  strings.TrimSpace(query.Course),
	}
}

func (s *CatalogService) cached(
	ctx context.Context,
	kind string,
	filter models.CatalogFilter,
	load func(context.Context, models.CatalogFilter) ([]string, error),
) ([]string, bool, error) {
	key := strings.ToLower(strings.Join([]string{catalogCachePrefix, kind, filter.Campus, filter.Subject, filter.Course}, ":"))

	var values []string
	if hit, err := s.cache.Get(ctx, key, &values); err == nil && hit {
		return values, true, nil
	}

	values, err := load(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalogue")
	}
	if values == nil {
		values = []string{}
	}
	_ = s.cache.Set(ctx, key, values, s.ttl)
	return values, false, nil
}
