package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type examWriter interface {
	FindByNaturalKey(ctx context.Context, exec sqlx.ExtContext, key models.ExamKey) (*models.Exam, error)
	Create(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error
	Update(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// Reconciler merges parsed rows into the exam store by natural key.
type Reconciler struct {
	exams  examWriter
	tx     txProvider
	logger *zap.Logger
}

// NewReconciler wires the reconciliation dependencies.
func NewReconciler(exams examWriter, tx txProvider, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{exams: exams, tx: tx, logger: logger}
}

// Reconcile classifies every row as inserted, updated or skipped.
//
// A real run executes inside one transaction, so later rows observe writes made by earlier
// rows of the same batch. A dry run opens no transaction, writes nothing, and compares every
// row against the state that existed before the batch.
func (r *Reconciler) Reconcile(ctx context.Context, rows []models.ParsedExamRow, campus string, dryRun bool) (summary *models.ImportSummary, err error) {
	summary = &models.ImportSummary{
		Samples: sampleRows(rows),
		DryRun:  dryRun,
		Campus:  campus,
	}

	var exec sqlx.ExtContext
	var tx *sqlx.Tx
	if !dryRun && len(rows) > 0 {
		tx, err = r.tx.BeginTxx(ctx, nil)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin import transaction")
		}
		exec = tx
		defer func() {
			if err != nil {
				_ = tx.Rollback()
			}
		}()
	}

	for i := range rows {
		row := rows[i]
		if row.StartTime == nil {
			summary.Skipped++
			continue
		}

		key := models.ExamKey{
			Campus:    campus,
			Subject:   row.Subject,
			Course:    row.Course,
			Section:   row.Section,
			StartTime: *row.StartTime,
		}
		existing, findErr := r.exams.FindByNaturalKey(ctx, exec, key)
		if findErr != nil && !errors.Is(findErr, sql.ErrNoRows) {
			err = appErrors.Wrap(findErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up exam")
			return nil, err
		}

		if existing == nil {
			summary.Inserted++
			if dryRun {
				continue
			}
			exam := newExamFromRow(campus, row)
			if err = r.exams.Create(ctx, exec, &exam); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert exam")
				return nil, err
			}
			continue
		}

		diff := models.DiffExam(*existing, row)
		if diff.Empty() {
			summary.Skipped++
			continue
		}
		summary.Updated++
		if dryRun {
			continue
		}
		diff.Apply(existing)
		if err = r.exams.Update(ctx, exec, existing); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam")
			return nil, err
		}
		r.logger.Debug("exam updated",
			zap.String("exam_id", existing.ID),
			zap.Strings("fields", diff.Changed()),
		)
	}

	if tx != nil {
		if err = tx.Commit(); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit import transaction")
			return nil, err
		}
	}
	return summary, nil
}

func newExamFromRow(campus string, row models.ParsedExamRow) models.Exam {
	return models.Exam{
		Campus:      campus,
		Subject:     row.Subject,
		Course:      row.Course,
		Section:     row.Section,
		StartTime:   *row.StartTime,
		DurationMin: row.DurationMin,
		Building:    row.Building,
		Room:        row.Room,
	}
}

func sampleRows(rows []models.ParsedExamRow) []models.ParsedExamRow {
	n := len(rows)
	if n > models.MaxImportSamples {
		n = models.MaxImportSamples
	}
	samples := make([]models.ParsedExamRow, n)
	copy(samples, rows[:n])
	return samples
}
