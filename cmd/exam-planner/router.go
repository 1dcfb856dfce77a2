package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/handler"
	"github.com/noah-isme/exam-planner-api/internal/middleware"
	"github.com/noah-isme/exam-planner-api/internal/service"
	"github.com/noah-isme/exam-planner-api/pkg/config"
	"github.com/noah-isme/exam-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-planner-api/pkg/middleware/requestid"
)

type routes struct {
	imports  *handler.ImportHandler
	exams    *handler.ExamHandler
	catalog  *handler.CatalogHandler
	calendar *handler.CalendarHandler
	export   *handler.ExportHandler
	system   *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h routes) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.system.Health)
	r.GET("/ready", h.system.Ready)
	r.GET("/metrics", h.system.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := r.Group("/admin/import")
	admin.POST("/exams", h.imports.Import)
	admin.POST("/exams/upload", h.imports.Upload)
	admin.POST("/exams/csv", h.imports.CSV)

	api := r.Group(cfg.APIPrefix)
	exams := api.Group("/exams")
	exams.GET("", h.exams.List)
	exams.POST("", h.exams.Create)
	exams.GET("/search", h.exams.Search)
	exams.GET("/export", h.export.Export)
	exams.GET("/ics", h.calendar.Download)
	exams.POST("/ics/share", h.calendar.Share)
	exams.GET("/ics/shared/:token", h.calendar.Shared)
	exams.GET("/:id", h.exams.Get)
	exams.DELETE("/:id", h.exams.Delete)

	catalog := api.Group("/catalog")
	catalog.GET("/subjects", h.catalog.Subjects)
	catalog.GET("/courses", h.catalog.Courses)
	catalog.GET("/sections", h.catalog.Sections)

	return r
}
