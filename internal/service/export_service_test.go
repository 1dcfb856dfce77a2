package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/importer"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/export"
)

func newExportService(t *testing.T, reader *stubCalendarReader) *ExportService {
	t.Helper()
	loc, err := time.LoadLocation("America/Vancouver")
	require.NoError(t, err)
	return NewExportService(reader, export.NewCSVExporter(), export.NewPDFExporter(), loc, nil, "V")
}

func TestExportCSVRoundTripsThroughImporter(t *testing.T) {
	exams := calendarExams()
	reader := &stubCalendarReader{listed: []models.Exam{exams["early"], exams["late"]}}
	svc := newExportService(t, reader)

	file, err := svc.Export(context.Background(), dto.ExamExportQuery{Campus: "Vancouver", Subject: "CPSC"})
	require.NoError(t, err)
	assert.Equal(t, "exam-schedule-v.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "CPSC", reader.lastFilter.Subject)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "subject,course,section,date,time,duration,building,room", lines[0])
	assert.Equal(t, "CPSC,221,101,2025-12-15,09:00,150,SRC,Hall A", lines[1])
	assert.Equal(t, "MATH,100,201,2025-12-16,09:00,,,", lines[2])

	parser, err := importer.NewParser("America/Vancouver")
	require.NoError(t, err)
	result, err := importer.ReadCSV(bytes.NewReader(file.Body), importer.RowFilter{}, parser)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.True(t, result.Rows[0].StartTime.Equal(scenarioStart))
	assert.Equal(t, 150, *result.Rows[0].DurationMin)
}

func TestExportPDF(t *testing.T) {
	exams := calendarExams()
	svc := newExportService(t, &stubCalendarReader{listed: []models.Exam{exams["early"]}})

	file, err := svc.Export(context.Background(), dto.ExamExportQuery{Format: "PDF", Campus: "o"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "exam-schedule-o.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newExportService(t, &stubCalendarReader{})

	_, err := svc.Export(context.Background(), dto.ExamExportQuery{Format: "xlsx"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
