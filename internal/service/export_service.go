package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/export"
)

const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// scheduleHeaders match the CSV import layout so an export can be re-imported as is.
var scheduleHeaders = []string{"subject", "course", "section", "date", "time", "duration", "building", "room"}

type examLister interface {
	ListByCampusAndFilters(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders filtered exam schedules as CSV or PDF downloads.
type ExportService struct {
	exams         examLister
	csv           csvRenderer
	pdf           pdfRenderer
	loc           *time.Location
	logger        *zap.Logger
	defaultCampus string
}

// NewExportService builds the schedule exporter. Wall-clock columns are rendered in loc.
func NewExportService(exams examLister, csv csvRenderer, pdf pdfRenderer, loc *time.Location, logger *zap.Logger, defaultCampus string) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if defaultCampus == "" {
		defaultCampus = "V"
	}
	return &ExportService{exams: exams, csv: csv, pdf: pdf, loc: loc, logger: logger, defaultCampus: defaultCampus}
}

// Export renders the exams matching the query in the requested format.
func (s *ExportService) Export(ctx context.Context, query dto.ExamExportQuery) (*dto.ExportFile, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	campus := NormalizeCampus(query.Campus, s.defaultCampus)
	exams, err := s.exams.ListByCampusAndFilters(ctx, models.ExamFilter{
		Campus:  campus,
		Subject: query.Subject,
		Course:  query.Course,
		Section: query.Section,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exams")
	}

	data := s.dataset(exams)
	var (
		body        []byte
		contentType string
	)
	switch format {
	case ExportFormatPDF:
		body, err = s.pdf.Render(data, scheduleTitle(campus, query))
		contentType = "application/pdf"
	default:
		body, err = s.csv.Render(data)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule")
	}

	s.logger.Debug("schedule exported", zap.String("format", format), zap.Int("exams", len(exams)))
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("exam-schedule-%s.%s", strings.ToLower(campus), format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (s *ExportService) dataset(exams []models.Exam) export.Dataset {
	rows := make([][]string, 0, len(exams))
	for _, exam := range exams {
		local := exam.StartTime.In(s.loc)
		duration := ""
		if exam.DurationMin != nil {
			duration = strconv.Itoa(*exam.DurationMin)
		}
		rows = append(rows, []string{
			exam.Subject,
			exam.Course,
			exam.Section,
			local.Format("2006-01-02"),
			local.Format("15:04"),
			duration,
			deref(exam.Building),
			deref(exam.Room),
		})
	}
	return export.Dataset{Headers: scheduleHeaders, Rows: rows}
}

func scheduleTitle(campus string, query dto.ExamExportQuery) string {
	parts := []string{"Final exam schedule", "campus " + campus}
	if subject := strings.TrimSpace(query.Subject); subject != "" {
		parts = append(parts, strings.TrimSpace(subject+" "+strings.TrimSpace(query.Course)))
	}
	return strings.Join(parts, " - ")
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
