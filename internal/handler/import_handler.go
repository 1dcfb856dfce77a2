package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/response"
)

type importService interface {
	ImportLive(ctx context.Context, req dto.ImportRequest) (*models.ImportSummary, error)
	ImportStatic(ctx context.Context, req dto.ImportRequest) (*models.ImportSummary, error)
	ImportUpload(ctx context.Context, req dto.ImportRequest, r io.Reader, contentType string) (*models.ImportSummary, error)
	ImportCSV(ctx context.Context, req dto.ImportRequest, r io.Reader) (*models.ImportSummary, error)
}

// ImportHandler exposes the admin import endpoints.
type ImportHandler struct {
	service importService
}

// NewImportHandler constructs the handler.
func NewImportHandler(service importService) *ImportHandler {
	return &ImportHandler{service: service}
}

// Import godoc
// @Summary Import exams from the live schedule or the stored snapshot
// @Tags Import
// @Produce json
// @Param source query string false "live or static" default(live)
// @Param campus query string false "Campus code or name"
// @Param subject query string false "Subject filter"
// @Param course query string false "Course filter"
// @Param term query string false "Term selector passed to the schedule site"
// @Param dryRun query bool false "Report without writing" default(true)
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/import/exams [post]
func (h *ImportHandler) Import(c *gin.Context) {
	req, err := importRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var summary *models.ImportSummary
	switch strings.ToLower(strings.TrimSpace(c.DefaultQuery("source", string(models.ImportSourceLive)))) {
	case string(models.ImportSourceLive):
		summary, err = h.service.ImportLive(c.Request.Context(), req)
	case string(models.ImportSourceStatic):
		summary, err = h.service.ImportStatic(c.Request.Context(), req)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "source must be live or static"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Upload godoc
// @Summary Import exams from an uploaded HTML schedule page
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "HTML document"
// @Param campus query string false "Campus code or name"
// @Param subject query string false "Subject filter"
// @Param course query string false "Course filter"
// @Param dryRun query bool false "Report without writing" default(true)
// @Success 200 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /admin/import/exams/upload [post]
func (h *ImportHandler) Upload(c *gin.Context) {
	req, err := importRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.withUpload(c, func(r io.Reader, contentType string) (*models.ImportSummary, error) {
		return h.service.ImportUpload(c.Request.Context(), req, r, contentType)
	})
}

// CSV godoc
// @Summary Import exams from an uploaded CSV file
// @Description Columns: subject,course,section,date,time,duration[,building[,room]]. The first line is a header.
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param campus query string false "Campus code or name"
// @Param subject query string false "Subject filter"
// @Param course query string false "Course filter"
// @Param dryRun query bool false "Report without writing" default(true)
// @Success 200 {object} response.Envelope
// @Router /admin/import/exams/csv [post]
func (h *ImportHandler) CSV(c *gin.Context) {
	req, err := importRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.withUpload(c, func(r io.Reader, _ string) (*models.ImportSummary, error) {
		return h.service.ImportCSV(c.Request.Context(), req, r)
	})
}

func (h *ImportHandler) withUpload(c *gin.Context, run func(io.Reader, string) (*models.ImportSummary, error)) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	summary, err := run(src, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// importRequest reads filters from the query string, falling back to multipart form fields.
func importRequest(c *gin.Context) (dto.ImportRequest, error) {
	req := dto.ImportRequest{
		Campus:  formOrQuery(c, "campus"),
		Subject: formOrQuery(c, "subject"),
		Course:  formOrQuery(c, "course"),
		Term:    formOrQuery(c, "term"),
		DryRun:  true,
	}
	if raw := formOrQuery(c, "dryRun"); raw != "" {
		dryRun, err := strconv.ParseBool(raw)
		if err != nil {
			return req, appErrors.Clone(appErrors.ErrValidation, "dryRun must be true or false")
		}
		req.DryRun = dryRun
	}
	return req, nil
}

func formOrQuery(c *gin.Context, key string) string {
	if value, ok := c.GetQuery(key); ok {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(c.PostForm(key))
}
