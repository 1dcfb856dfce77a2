package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/export"
	"github.com/noah-isme/exam-planner-api/pkg/storage"
)

const (
	defaultCalendarFilename = "exams.ics"
	sharedCalendarDir       = "shared"
	maxCalendarIDs          = 500
)

type calendarExamReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Exam, error)
	ListByCampusAndFilters(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error)
}

type calendarRenderer interface {
	Render(events []export.CalendarEvent) []byte
}

type shareStore interface {
	Save(name string, data []byte) (string, error)
	ReadFile(name string) ([]byte, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type shareSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (string, string, time.Time, error)
	TTL() time.Duration
}

// CalendarConfig carries calendar settings.
type CalendarConfig struct {
	UIDDomain     string
	DefaultCampus string
	SharePath     string
}

// CalendarService turns stored exams into ICS feeds and shareable calendar links.
type CalendarService struct {
	exams    calendarExamReader
	renderer calendarRenderer
	shares   shareStore
	signer   shareSigner
	logger   *zap.Logger
	cfg      CalendarConfig
	now      func() time.Time
}

// NewCalendarService wires calendar dependencies. shares and signer may be nil when sharing is off.
func NewCalendarService(exams calendarExamReader, renderer calendarRenderer, shares shareStore, signer shareSigner, logger *zap.Logger, cfg CalendarConfig) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UIDDomain == "" {
		cfg.UIDDomain = "examplanner"
	}
	if cfg.DefaultCampus == "" {
		cfg.DefaultCampus = "V"
	}
	if cfg.SharePath == "" {
		cfg.SharePath = "/api/exams/ics/shared/"
	}
	return &CalendarService{
		exams:    exams,
		renderer: renderer,
		shares:   shares,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Build renders the calendar for a query. Explicit ids take precedence over filters and the
// result is ordered by start time either way.
func (s *CalendarService) Build(ctx context.Context, query dto.CalendarQuery) (*dto.CalendarFile, error) {
	exams, err := s.selectExams(ctx, query)
	if err != nil {
		return nil, err
	}
	return &dto.CalendarFile{
		Filename: SanitizeFilename(query.Filename),
		Events:   len(exams),
		Body:     s.Render(exams),
	}, nil
}

// Render serializes exams into an ICS document.
func (s *CalendarService) Render(exams []models.Exam) []byte {
	return s.renderer.Render(s.Events(exams))
}

// Events maps exams to calendar events. A missing duration is rendered as the default length
// without changing the exam.
func (s *CalendarService) Events(exams []models.Exam) []export.CalendarEvent {
	events := make([]export.CalendarEvent, 0, len(exams))
	for _, exam := range exams {
		duration := models.DefaultExamDurationMinutes
		if exam.DurationMin != nil {
			duration = *exam.DurationMin
		}
		stamp := exam.UpdatedAt
		if stamp.IsZero() {
			stamp = s.now()
		}
		events = append(events, export.CalendarEvent{
			UID:         fmt.Sprintf("exam-%s-%d@%s", exam.ID, exam.StartTime.Unix(), s.cfg.UIDDomain),
			Stamp:       stamp,
			Start:       exam.StartTime,
			End:         exam.StartTime.Add(time.Duration(duration) * time.Minute),
			Summary:     examSummary(exam),
			Location:    examLocation(exam),
			Description: examDescription(exam),
		})
	}
	return events
}

// Share stores the rendered calendar and returns a signed link that expires after the signer TTL.
func (s *CalendarService) Share(ctx context.Context, query dto.CalendarQuery) (*dto.CalendarShareResponse, error) {
	if s.shares == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceDisabled, "calendar sharing is not configured")
	}
	file, err := s.Build(ctx, query)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	rel := path.Join(sharedCalendarDir, id, file.Filename)
	if _, err := s.shares.Save(rel, file.Body); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store shared calendar")
	}
	token, expiresAt, err := s.signer.Generate(id, rel)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign calendar link")
	}

	s.logger.Info("calendar shared", zap.String("share_id", id), zap.Int("events", file.Events), zap.Time("expires_at", expiresAt))
	return &dto.CalendarShareResponse{
		Token:     token,
		URL:       s.cfg.SharePath + token,
		Filename:  file.Filename,
		Events:    file.Events,
		ExpiresAt: expiresAt,
	}, nil
}

// OpenShared resolves a share token to the stored calendar.
func (s *CalendarService) OpenShared(_ context.Context, token string) (*dto.CalendarFile, error) {
	if s.shares == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceDisabled, "calendar sharing is not configured")
	}
	_, rel, _, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.ErrLinkExpired
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "shared calendar not found")
	}
	body, err := s.shares.ReadFile(rel)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrLinkExpired, "shared calendar is no longer available")
	}
	return &dto.CalendarFile{Filename: path.Base(rel), Body: body}, nil
}

// CleanupShares removes shared calendars older than the link TTL.
func (s *CalendarService) CleanupShares(_ context.Context) (int, error) {
	if s.shares == nil || s.signer == nil {
		return 0, nil
	}
	deleted, err := s.shares.CleanupOlderThan(s.signer.TTL())
	if err != nil {
		return 0, err
	}
	if len(deleted) > 0 {
		s.logger.Info("expired shared calendars removed", zap.Int("count", len(deleted)))
	}
	return len(deleted), nil
}

func (s *CalendarService) selectExams(ctx context.Context, query dto.CalendarQuery) ([]models.Exam, error) {
	ids := cleanIDs(query.IDs)
	if len(ids) > maxCalendarIDs {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d ids per calendar", maxCalendarIDs))
	}
	if len(ids) > 0 {
		exams, err := s.exams.FindByIDs(ctx, ids)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exams")
		}
		sortByStart(exams)
		return exams, nil
	}
	if len(query.IDs) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ids must not be blank")
	}

	exams, err := s.exams.ListByCampusAndFilters(ctx, models.ExamFilter{
		Campus:  NormalizeCampus(query.Campus, s.cfg.DefaultCampus),
		Subject: query.Subject,
		Course:  query.Course,
		Section: query.Section,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exams")
	}
	return exams, nil
}

// SanitizeFilename strips CR, LF and quotes, trims, and guarantees a .ics suffix.
func SanitizeFilename(raw string) string {
	name := strings.NewReplacer("\r", "", "\n", "", `"`, "").Replace(raw)
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	if name == "" {
		return defaultCalendarFilename
	}
	if !strings.HasSuffix(strings.ToLower(name), ".ics") {
		name += ".ics"
	}
	return name
}

func examSummary(exam models.Exam) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s %s Final Exam", exam.Subject, exam.Course, exam.Section))
}

func examLocation(exam models.Exam) string {
	parts := make([]string, 0, 2)
	if exam.Building != nil && strings.TrimSpace(*exam.Building) != "" {
		parts = append(parts, strings.TrimSpace(*exam.Building))
	}
	if exam.Room != nil && strings.TrimSpace(*exam.Room) != "" {
		parts = append(parts, strings.TrimSpace(*exam.Room))
	}
	return strings.Join(parts, " ")
}

func examDescription(exam models.Exam) string {
	return fmt.Sprintf("Campus: %s\nCourse: %s %s\nSection: %s", exam.Campus, exam.Subject, exam.Course, exam.Section)
}

func cleanIDs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func sortByStart(exams []models.Exam) {
	sort.SliceStable(exams, func(i, j int) bool {
		return exams[i].StartTime.Before(exams[j].StartTime)
	})
}
