package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, query dto.ExamExportQuery) (*dto.ExportFile, error)
}

// ExportHandler serves printable schedule downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Export godoc
// @Summary Download the exam schedule as CSV or PDF
// @Tags Exams
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param campus query string false "Campus code or name" default(V)
// @Param subject query string false "Subject"
// @Param course query string false "Course"
// @Param section query string false "Section"
// @Success 200 {file} binary
// @Router /exams/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), dto.ExamExportQuery{
		Format:  c.Query("format"),
		Campus:  c.Query("campus"),
		Subject: c.Query("subject"),
		Course:  c.Query("course"),
		Section: c.Query("section"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Body)
}
