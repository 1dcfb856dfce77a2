package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/pkg/jobs"
)

const (
	SyncTaskName    = "exam-sync"
	CleanupTaskName = "calendar-share-cleanup"
)

type liveImporter interface {
	ImportLive(ctx context.Context, req dto.ImportRequest) (*models.ImportSummary, error)
}

type shareCleaner interface {
	CleanupShares(ctx context.Context) (int, error)
}

// SyncConfig scopes the periodic live import.
type SyncConfig struct {
	Interval time.Duration
	Campus   string
	Subject  string
	Course   string
}

// SyncService keeps stored exams aligned with the live schedule page.
type SyncService struct {
	importer liveImporter
	logger   *zap.Logger
	cfg      SyncConfig
}

// NewSyncService builds the scheduled importer.
func NewSyncService(importer liveImporter, logger *zap.Logger, cfg SyncConfig) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	return &SyncService{importer: importer, logger: logger, cfg: cfg}
}

// Run performs one committed live import.
func (s *SyncService) Run(ctx context.Context) error {
	summary, err := s.importer.ImportLive(ctx, dto.ImportRequest{
		Campus:  s.cfg.Campus,
		Subject: s.cfg.Subject,
		Course:  s.cfg.Course,
		DryRun:  false,
	})
	if err != nil {
		return err
	}
	s.logger.Info("scheduled sync finished",
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
	)
	return nil
}

// Task exposes the sync as a scheduler task.
func (s *SyncService) Task() jobs.Task {
	return jobs.Task{
		Name:       SyncTaskName,
		Interval:   s.cfg.Interval,
		RunOnStart: true,
		Run:        s.Run,
	}
}

// CleanupTask removes expired shared calendars on every tick.
func CleanupTask(cleaner shareCleaner, interval time.Duration) jobs.Task {
	if interval <= 0 {
		interval = time.Hour
	}
	return jobs.Task{
		Name:     CleanupTaskName,
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := cleaner.CleanupShares(ctx)
			return err
		},
	}
}
