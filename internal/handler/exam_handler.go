package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/response"
)

type examService interface {
	List(ctx context.Context, query dto.ExamListQuery) ([]models.Exam, error)
	Search(ctx context.Context, query dto.ExamSearchQuery) ([]models.Exam, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, req dto.CreateExamRequest) (*models.Exam, error)
	Delete(ctx context.Context, id string) error
}

// ExamHandler exposes exam listing and maintenance endpoints.
type ExamHandler struct {
	service examService
}

// NewExamHandler constructs the handler.
func NewExamHandler(service examService) *ExamHandler {
	return &ExamHandler{service: service}
}

// List godoc
// @Summary List exams ordered by start time
// @Tags Exams
// @Produce json
// @Param campus query string false "Campus code or name" default(V)
// @Param subject query string false "Subject"
// @Param course query string false "Course"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	exams, err := h.service.List(c.Request.Context(), dto.ExamListQuery{
		Campus:  c.Query("campus"),
		Subject: c.Query("subject"),
		Course:  c.Query("course"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, nil)
}

// Search godoc
// @Summary Search exams with paging
// @Tags Exams
// @Produce json
// @Param campus query string false "Campus code or name" default(V)
// @Param subject query string false "Subject"
// @Param course query string false "Course"
// @Param section query string false "Section"
// @Param page query int false "Page" default(1)
// @Param size query int false "Page size (1-200)" default(20)
// @Param sort query string false "startTime,asc or startTime,desc"
// @Success 200 {object} response.Envelope
// @Router /exams/search [get]
func (h *ExamHandler) Search(c *gin.Context) {
	page, err := optionalInt(c, "page")
	if err != nil {
		response.Error(c, err)
		return
	}
	size, err := optionalInt(c, "size")
	if err != nil {
		response.Error(c, err)
		return
	}
	exams, pagination, err := h.service.Search(c.Request.Context(), dto.ExamSearchQuery{
		Campus:  c.Query("campus"),
		Subject: c.Query("subject"),
		Course:  c.Query("course"),
		Section: c.Query("section"),
		Page:    page,
		Size:    size,
		Sort:    c.Query("sort"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, pagination)
}

// Get godoc
// @Summary Get exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	exam, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Create godoc
// @Summary Create exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body dto.CreateExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req dto.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid exam payload"))
		return
	}
	exam, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Delete godoc
// @Summary Delete exam
// @Tags Exams
// @Param id path string true "Exam ID"
// @Success 204
// @Router /exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func optionalInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be an integer")
	}
	return value, nil
}
