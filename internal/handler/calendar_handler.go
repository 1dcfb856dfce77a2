package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/response"
)

type calendarService interface {
	Build(ctx context.Context, query dto.CalendarQuery) (*dto.CalendarFile, error)
	Share(ctx context.Context, query dto.CalendarQuery) (*dto.CalendarShareResponse, error)
	OpenShared(ctx context.Context, token string) (*dto.CalendarFile, error)
}

// CalendarHandler serves ICS downloads and shared calendar links.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(service calendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// Download godoc
// @Summary Download exams as an ICS calendar
// @Description Either ids (comma separated or repeated) or the campus/subject/course/section filter selects exams.
// @Tags Calendar
// @Produce text/calendar
// @Param ids query string false "Exam ids"
// @Param campus query string false "Campus code or name" default(V)
// @Param subject query string false "Subject"
// @Param course query string false "Course"
// @Param section query string false "Section"
// @Param filename query string false "Download filename" default(exams.ics)
// @Success 200 {file} binary
// @Router /exams/ics [get]
func (h *CalendarHandler) Download(c *gin.Context) {
	file, err := h.service.Build(c.Request.Context(), calendarQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Calendar(c, file.Filename, file.Body)
}

// Share godoc
// @Summary Store a calendar and return an expiring link
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.CalendarQuery false "Selection; query parameters are used when the body is empty"
// @Success 201 {object} response.Envelope
// @Router /exams/ics/share [post]
func (h *CalendarHandler) Share(c *gin.Context) {
	query := calendarQuery(c)
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&query); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid calendar selection"))
			return
		}
	}
	share, err := h.service.Share(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, share)
}

// Shared godoc
// @Summary Download a shared calendar
// @Tags Calendar
// @Produce text/calendar
// @Param token path string true "Share token"
// @Success 200 {file} binary
// @Failure 410 {object} response.Envelope
// @Router /exams/ics/shared/{token} [get]
func (h *CalendarHandler) Shared(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, err := h.service.OpenShared(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Calendar(c, file.Filename, file.Body)
}

func calendarQuery(c *gin.Context) dto.CalendarQuery {
	var ids []string
	for _, raw := range c.QueryArray("ids") {
		ids = append(ids, strings.Split(raw, ",")...)
	}
	return dto.CalendarQuery{
		IDs:      ids,
		Campus:   c.Query("campus"),
		Subject:  c.Query("subject"),
		Course:   c.Query("course"),
		Section:  c.Query("section"),
		Filename: c.Query("filename"),
	}
}
