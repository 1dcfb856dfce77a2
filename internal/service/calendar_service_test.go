package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/export"
	"github.com/noah-isme/exam-planner-api/pkg/storage"
)

type stubCalendarReader struct {
	byID       map[string]models.Exam
	listed     []models.Exam
	lastFilter models.ExamFilter
}

func (s *stubCalendarReader) FindByIDs(_ context.Context, ids []string) ([]models.Exam, error) {
	exams := make([]models.Exam, 0, len(ids))
	for _, id := range ids {
		if exam, ok := s.byID[id]; ok {
			exams = append(exams, exam)
		}
	}
	return exams, nil
}

func (s *stubCalendarReader) ListByCampusAndFilters(_ context.Context, filter models.ExamFilter) ([]models.Exam, error) {
	s.lastFilter = filter
	return s.listed, nil
}

type expiredSigner struct{}

func (expiredSigner) Generate(string, string) (string, time.Time, error) {
	return "", time.Time{}, nil
}

func (expiredSigner) Parse(string, bool) (string, string, time.Time, error) {
	return "", "", time.Time{}, storage.ErrTokenExpired
}

func (expiredSigner) TTL() time.Duration { return time.Minute }

func calendarExams() map[string]models.Exam {
	updated := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	return map[string]models.Exam{
		"late": {
			ID: "late", Campus: "V", Subject: "MATH", Course: "100", Section: "201",
			StartTime: time.Date(2025, 12, 16, 17, 0, 0, 0, time.UTC), UpdatedAt: updated,
		},
		"early": {
			ID: "early", Campus: "V", Subject: "CPSC", Course: "221", Section: "101",
			StartTime: scenarioStart, DurationMin: intPtr(150), Building: strPtr("SRC"), Room: strPtr("Hall A"),
			UpdatedAt: updated,
		},
	}
}

func newCalendarService(t *testing.T, reader *stubCalendarReader) (*CalendarService, *storage.LocalStorage) {
	t.Helper()
	shares, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewCalendarService(reader, export.NewICSExporter(""), shares, signer, nil, CalendarConfig{
		UIDDomain: "examplanner.test",
		SharePath: "/api/exams/ics/shared/",
	})
	return svc, shares
}

func TestCalendarBuildByIDsSortsByStart(t *testing.T) {
	svc, _ := newCalendarService(t, &stubCalendarReader{byID: calendarExams()})

	file, err := svc.Build(context.Background(), dto.CalendarQuery{IDs: []string{"late", " early ", "late", "missing"}})
	require.NoError(t, err)
	assert.Equal(t, "exams.ics", file.Filename)
	assert.Equal(t, 2, file.Events)

	body := string(file.Body)
	first := strings.Index(body, "SUMMARY:CPSC 221 101 Final Exam")
	second := strings.Index(body, "SUMMARY:MATH 100 201 Final Exam")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)

	assert.Contains(t, body, "UID:exam-early-1765818000@examplanner.test\r\n")
	assert.Contains(t, body, "DTSTART:20251215T170000Z\r\n")
	assert.Contains(t, body, "DTEND:20251215T193000Z\r\n")
	assert.Contains(t, body, "DTSTAMP:20251101T120000Z\r\n")
	assert.Contains(t, body, "LOCATION:SRC Hall A\r\n")
	assert.Contains(t, body, `DESCRIPTION:Campus: V\nCourse: CPSC 221\nSection: 101`)
	assert.Contains(t, body, "DTEND:20251216T190000Z\r\n")
}

func TestCalendarEventsAreDeterministic(t *testing.T) {
	svc, _ := newCalendarService(t, &stubCalendarReader{})
	exams := []models.Exam{calendarExams()["early"]}

	assert.Equal(t, svc.Render(exams), svc.Render(exams))
}

func TestCalendarDefaultDurationIsNotPersisted(t *testing.T) {
	svc, _ := newCalendarService(t, &stubCalendarReader{})
	exam := calendarExams()["late"]

	events := svc.Events([]models.Exam{exam})
	require.Len(t, events, 1)
	assert.Equal(t, 2*time.Hour, events[0].End.Sub(events[0].Start))
	assert.Empty(t, events[0].Location)
	assert.Nil(t, exam.DurationMin)
}

func TestCalendarEmptyFilterYieldsEmptyCalendar(t *testing.T) {
	reader := &stubCalendarReader{}
	svc, _ := newCalendarService(t, reader)

	file, err := svc.Build(context.Background(), dto.CalendarQuery{Campus: "okanagan", Subject: "CPSC", Filename: "my\r\n\"plan\""})
	require.NoError(t, err)
	assert.Equal(t, 0, file.Events)
	assert.Equal(t, "myplan.ics", file.Filename)
	assert.Equal(t, "O", reader.lastFilter.Campus)
	assert.Equal(t, "CPSC", reader.lastFilter.Subject)

	body := string(file.Body)
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n"))
	assert.True(t, strings.HasSuffix(body, "END:VCALENDAR\r\n"))
	assert.NotContains(t, body, "BEGIN:VEVENT")
}

func TestCalendarRejectsBlankIDs(t *testing.T) {
	svc, _ := newCalendarService(t, &stubCalendarReader{})

	_, err := svc.Build(context.Background(), dto.CalendarQuery{IDs: []string{" ", ""}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"":                 "exams.ics",
		"  ":               "exams.ics",
		"winter.ICS":       "winter.ICS",
		"term\r\n1":        "term1",
		`"quoted".ics`:     "quoted.ics",
		"../../etc/passwd": ".._.._etc_passwd.ics",
		" finals 2025 ":    "finals 2025.ics",
	}
	for input, want := range cases {
		assert.Equal(t, want, SanitizeFilename(input), input)
	}
}

func TestCalendarShareAndOpen(t *testing.T) {
	svc, shares := newCalendarService(t, &stubCalendarReader{byID: calendarExams()})

	share, err := svc.Share(context.Background(), dto.CalendarQuery{IDs: []string{"early"}, Filename: "finals"})
	require.NoError(t, err)
	assert.Equal(t, "finals.ics", share.Filename)
	assert.Equal(t, 1, share.Events)
	assert.Equal(t, "/api/exams/ics/shared/"+share.Token, share.URL)
	assert.True(t, share.ExpiresAt.After(time.Now()))

	file, err := svc.OpenShared(context.Background(), share.Token)
	require.NoError(t, err)
	assert.Equal(t, "finals.ics", file.Filename)
	assert.Contains(t, string(file.Body), "SUMMARY:CPSC 221 101 Final Exam")

	_, err = svc.OpenShared(context.Background(), share.Token+"x")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	removed, err := svc.CleanupShares(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.NotEmpty(t, share.Token)
	assert.DirExists(t, shares.Path("shared"))
}

func TestCalendarOpenSharedExpired(t *testing.T) {
	shares, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewCalendarService(&stubCalendarReader{}, export.NewICSExporter(""), shares, expiredSigner{}, nil, CalendarConfig{})

	_, err = svc.OpenShared(context.Background(), "a.b.c.d")
	assert.ErrorIs(t, err, appErrors.ErrLinkExpired)
}

func TestCalendarShareDisabled(t *testing.T) {
	svc := NewCalendarService(&stubCalendarReader{}, export.NewICSExporter(""), nil, nil, nil, CalendarConfig{})

	_, err := svc.Share(context.Background(), dto.CalendarQuery{})
	assert.ErrorIs(t, err, appErrors.ErrServiceDisabled)

	removed, err := svc.CleanupShares(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}
