package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type memoryExamStore struct {
	exams     map[string]models.Exam
	creates   int
	updates   int
	createErr error
	nextID    int
}

func newMemoryExamStore(seed ...models.Exam) *memoryExamStore {
	store := &memoryExamStore{exams: make(map[string]models.Exam)}
	for _, exam := range seed {
		store.exams[exam.Key().Normalized()] = exam
	}
	return store
}

func (m *memoryExamStore) FindByNaturalKey(_ context.Context, _ sqlx.ExtContext, key models.ExamKey) (*models.Exam, error) {
	exam, ok := m.exams[key.Normalized()]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &exam, nil
}

func (m *memoryExamStore) Create(_ context.Context, _ sqlx.ExtContext, exam *models.Exam) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	m.creates++
	exam.ID = fmt.Sprintf("exam-%d", m.nextID)
	m.exams[exam.Key().Normalized()] = *exam
	return nil
}

func (m *memoryExamStore) Update(_ context.Context, _ sqlx.ExtContext, exam *models.Exam) error {
	m.updates++
	m.exams[exam.Key().Normalized()] = *exam
	return nil
}

func (m *memoryExamStore) writes() int {
	return m.creates + m.updates
}

func intPtr(v int) *int              { return &v }
func strPtr(v string) *string        { return &v }
func timePtr(v time.Time) *time.Time { return &v }

var scenarioStart = time.Date(2025, 12, 15, 17, 0, 0, 0, time.UTC)

func scenarioRow() models.ParsedExamRow {
	return models.ParsedExamRow{
		Subject:     "CPSC",
		Course:      "221",
		Section:     "101",
		StartTime:   timePtr(scenarioStart),
		DurationMin: intPtr(150),
		Building:    strPtr("SRC"),
		Room:        strPtr("A"),
	}
}

func TestReconcileClassifiesRows(t *testing.T) {
	stored := models.Exam{
		ID: "stored", Campus: "V", Subject: "MATH", Course: "100", Section: "001",
		StartTime: scenarioStart.Add(24 * time.Hour), DurationMin: intPtr(120), Room: strPtr("B1"),
	}
	unchanged := models.Exam{
		ID: "same", Campus: "V", Subject: "PHYS", Course: "101", Section: "002",
		StartTime: scenarioStart.Add(48 * time.Hour), DurationMin: intPtr(90),
	}
	store := newMemoryExamStore(stored, unchanged)
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rows := []models.ParsedExamRow{
		scenarioRow(),
		{Subject: "math", Course: "100", Section: "001", StartTime: timePtr(stored.StartTime), DurationMin: intPtr(120), Room: strPtr("B2")},
		{Subject: "PHYS", Course: "101", Section: "002", StartTime: timePtr(unchanged.StartTime), DurationMin: intPtr(90)},
		{Subject: "CHEM", Course: "121", Section: "101"},
	}

	summary, err := NewReconciler(store, tx, nil).Reconcile(context.Background(), rows, "V", false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 2, summary.Skipped)
	assert.Len(t, summary.Samples, models.MaxImportSamples)
	assert.False(t, summary.DryRun)
	assert.Equal(t, "V", summary.Campus)

	updated := store.exams[stored.Key().Normalized()]
	assert.Equal(t, "stored", updated.ID)
	assert.Equal(t, "B2", *updated.Room)

	inserted, ok := store.exams[models.ExamKey{Campus: "V", Subject: "CPSC", Course: "221", Section: "101", StartTime: scenarioStart}.Normalized()]
	require.True(t, ok)
	assert.Equal(t, 150, *inserted.DurationMin)
	assert.Equal(t, "SRC", *inserted.Building)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := newMemoryExamStore()
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rec := NewReconciler(store, tx, nil)
	rows := []models.ParsedExamRow{scenarioRow()}

	first, err := rec.Reconcile(context.Background(), rows, "V", false)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	second, err := rec.Reconcile(context.Background(), rows, "V", false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 1, store.creates)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileDryRunNeverMutates(t *testing.T) {
	stored := models.Exam{ID: "stored", Campus: "V", Subject: "CPSC", Course: "221", Section: "101", StartTime: scenarioStart, DurationMin: intPtr(120)}
	store := newMemoryExamStore(stored)
	tx, mock := newTxProviderMock(t)

	other := scenarioRow()
	other.Section = "102"
	rows := []models.ParsedExamRow{scenarioRow(), other}

	summary, err := NewReconciler(store, tx, nil).Reconcile(context.Background(), rows, "V", true)
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, store.writes())
	assert.Len(t, store.exams, 1)
	assert.Equal(t, 120, *store.exams[stored.Key().Normalized()].DurationMin)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileDuplicateKeyInBatch(t *testing.T) {
	first := scenarioRow()
	second := scenarioRow()
	second.DurationMin = intPtr(180)
	rows := []models.ParsedExamRow{first, second}

	t.Run("real run sees its own writes", func(t *testing.T) {
		store := newMemoryExamStore()
		tx, mock := newTxProviderMock(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		summary, err := NewReconciler(store, tx, nil).Reconcile(context.Background(), rows, "V", false)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Inserted)
		assert.Equal(t, 1, summary.Updated)
		assert.Len(t, store.exams, 1)
		for _, exam := range store.exams {
			assert.Equal(t, 180, *exam.DurationMin)
		}
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("dry run compares against the pre-batch state", func(t *testing.T) {
		store := newMemoryExamStore()
		tx, mock := newTxProviderMock(t)

		summary, err := NewReconciler(store, tx, nil).Reconcile(context.Background(), rows, "V", true)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Inserted)
		assert.Equal(t, 0, summary.Updated)
		assert.Empty(t, store.exams)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReconcileRollsBackOnStoreError(t *testing.T) {
	store := newMemoryExamStore()
	store.createErr = errors.New("disk full")
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	summary, err := NewReconciler(store, tx, nil).Reconcile(context.Background(), []models.ParsedExamRow{scenarioRow()}, "V", false)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileEmptyBatchOpensNoTransaction(t *testing.T) {
	tx, mock := newTxProviderMock(t)

	summary, err := NewReconciler(newMemoryExamStore(), tx, nil).Reconcile(context.Background(), nil, "O", false)
	require.NoError(t, err)
	assert.Zero(t, summary.Inserted+summary.Updated+summary.Skipped)
	assert.Empty(t, summary.Samples)
	assert.Equal(t, "O", summary.Campus)
	require.NoError(t, mock.ExpectationsWereMet())
}
