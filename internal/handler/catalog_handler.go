package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/middleware"
	"github.com/noah-isme/exam-planner-api/pkg/response"
)

type catalogService interface {
	Subjects(ctx context.Context, query dto.CatalogQuery) ([]string, bool, error)
	Courses(ctx context.Context, query dto.CatalogQuery) ([]string, bool, error)
	Sections(ctx context.Context, query dto.CatalogQuery) ([]string, bool, error)
}

// CatalogHandler serves distinct subject, course and section lookups.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Subjects godoc
// @Summary List subjects with scheduled exams
// @Tags Catalog
// @Produce json
// @Param campus query string false "Campus code or name" default(V)
// @Success 200 {object} response.Envelope
// @Router /catalog/subjects [get]
func (h *CatalogHandler) Subjects(c *gin.Context) {
	h.respond(c, h.service.Subjects)
}

// Courses godoc
// @Summary List courses of a subject
// @Tags Catalog
// @Produce json
// @Param campus query string false "Campus code or name" default(V)
// @Param subject query string true "Subject"
// @Success 200 {object} response.Envelope
// @Router /catalog/courses [get]
func (h *CatalogHandler) Courses(c *gin.Context) {
	h.respond(c, h.service.Courses)
}

// Sections godoc
// @Summary List sections of a course
// @Tags Catalog
// @Produce json
// @Param campus query string false "Campus code or name" default(V)
// @Param subject query string true "Subject"
// @Param course query string true "Course"
// @Success 200 {object} response.Envelope
// @Router /catalog/sections [get]
func (h *CatalogHandler) Sections(c *gin.Context) {
	h.respond(c, h.service.Sections)
}

func (h *CatalogHandler) respond(c *gin.Context, lookup func(context.Context, dto.CatalogQuery) ([]string, bool, error)) {
	values, hit, err := lookup(c.Request.Context(), dto.CatalogQuery{
		Campus:  c.Query("campus"),
		Subject: c.Query("subject"),
		Course:  c.Query("course"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, values, nil, middleware.ExtractMeta(c))
}
