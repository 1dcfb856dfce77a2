package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/exam-planner-api/api/swagger"
	"github.com/noah-isme/exam-planner-api/internal/handler"
	"github.com/noah-isme/exam-planner-api/internal/importer"
	"github.com/noah-isme/exam-planner-api/internal/repository"
	"github.com/noah-isme/exam-planner-api/internal/service"
	"github.com/noah-isme/exam-planner-api/pkg/cache"
	"github.com/noah-isme/exam-planner-api/pkg/config"
	"github.com/noah-isme/exam-planner-api/pkg/database"
	"github.com/noah-isme/exam-planner-api/pkg/export"
	"github.com/noah-isme/exam-planner-api/pkg/jobs"
	"github.com/noah-isme/exam-planner-api/pkg/logger"
	"github.com/noah-isme/exam-planner-api/pkg/storage"
)

// @title Exam Planner API
// @version 1.0.0
// @description Imports university final exam schedules and serves them as listings, exports and ICS calendars.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, catalogue cache disabled", zap.Error(err))
	}
	var cacheClient redis.Cmdable
	if redisClient != nil {
		cacheClient = redisClient
		defer redisClient.Close()
	}

	snapshots, err := storage.NewLocalStorage(cfg.Exams.SnapshotDir)
	if err != nil {
		return fmt.Errorf("snapshot storage: %w", err)
	}
	shares, err := storage.NewLocalStorage(cfg.Calendar.ShareDir)
	if err != nil {
		return fmt.Errorf("calendar share storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Calendar.SignedURLSecret, cfg.Calendar.SignedURLTTL)

	parser, err := importer.NewParser(cfg.Exams.TimeZone)
	if err != nil {
		return err
	}
	fetcher := importer.NewFetcher(importer.FetcherConfig{
		UserAgent: cfg.Exams.UserAgent,
		Referer:   cfg.Exams.Referer,
		Timeout:   cfg.Exams.FetchTimeout,
	})

	validate := validator.New()
	metrics := service.NewMetricsService()
	examRepo := repository.NewExamRepository(db)
	cacheRepo := repository.NewCacheRepository(cacheClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled && cacheRepo.Available())

	importSvc := service.NewImportService(
		service.NewReconciler(examRepo, db, logr),
		fetcher,
		snapshots,
		parser,
		cacheSvc,
		metrics,
		validate,
		logr,
		service.ImportConfig{SearchURL: cfg.Exams.SearchURL, DefaultCampus: cfg.Exams.DefaultCampus},
	)
	examSvc := service.NewExamService(examRepo, cacheSvc, validate, logr, cfg.Exams.DefaultCampus)
	catalogSvc := service.NewCatalogService(examRepo, cacheSvc, cfg.Catalog.CacheTTL, logr, cfg.Exams.DefaultCampus)
	calendarSvc := service.NewCalendarService(examRepo, export.NewICSExporter(cfg.Calendar.ProductID), shares, signer, logr, service.CalendarConfig{
		UIDDomain:     cfg.Calendar.UIDDomain,
		DefaultCampus: cfg.Exams.DefaultCampus,
		SharePath:     cfg.APIPrefix + "/exams/ics/shared/",
	})
	exportSvc := service.NewExportService(examRepo, export.NewCSVExporter(), export.NewPDFExporter(), parser.Location(), logr, cfg.Exams.DefaultCampus)

	scheduler := jobs.NewScheduler(jobs.SchedulerConfig{Logger: logr, OnResult: metrics.RecordJob})
	if err := scheduler.Register(service.CleanupTask(calendarSvc, cfg.Calendar.CleanupInterval)); err != nil {
		return err
	}
	if cfg.Sync.Enabled {
		syncSvc := service.NewSyncService(importSvc, logr, service.SyncConfig{
			Interval: cfg.Sync.Interval,
			Campus:   cfg.Sync.Campus,
			Subject:  cfg.Sync.Subject,
			Course:   cfg.Sync.Course,
		})
		if err := scheduler.Register(syncSvc.Task()); err != nil {
			return err
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := newRouter(cfg, logr, metrics, routes{
		imports:  handler.NewImportHandler(importSvc),
		exams:    handler.NewExamHandler(examSvc),
		catalog:  handler.NewCatalogHandler(catalogSvc),
		calendar: handler.NewCalendarHandler(calendarSvc),
		export:   handler.NewExportHandler(exportSvc),
		system:   handler.NewMetricsHandler(metrics, db),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
