package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

const examColumns = "id, campus, subject, course, section, start_time, duration_min, building, room, created_at, updated_at"

// ExamRepository persists exams in PostgreSQL.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new repository instance.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

func (r *ExamRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByNaturalKey returns the exam matching key, comparing text case-insensitively and the
// start instant exactly. It returns sql.ErrNoRows when absent.
func (r *ExamRepository) FindByNaturalKey(ctx context.Context, exec sqlx.ExtContext, key models.ExamKey) (*models.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams
WHERE LOWER(campus) = LOWER($1) AND LOWER(subject) = LOWER($2) AND LOWER(course) = LOWER($3)
AND LOWER(section) = LOWER($4) AND start_time = $5
LIMIT 1`
	var exam models.Exam
	if err := sqlx.GetContext(ctx, r.exec(exec), &exam, query, key.Campus, key.Subject, key.Course, key.Section, key.StartTime); err != nil {
		return nil, err
	}
	return &exam, nil
}

// GetByID returns an exam by id.
func (r *ExamRepository) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// Create persists a new exam, assigning id and timestamps when unset.
func (r *ExamRepository) Create(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now

	const query = `INSERT INTO exams (id, campus, subject, course, section, start_time, duration_min, building, room, created_at, updated_at)
VALUES (:id, :campus, :subject, :course, :section, :start_time, :duration_min, :building, :room, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// Update writes the mutable fields of an existing exam.
func (r *ExamRepository) Update(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error {
	exam.UpdatedAt = time.Now().UTC()

	const query = `UPDATE exams SET duration_min = :duration_min, building = :building, room = :room, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, exam)
	if err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an exam by id. It returns sql.ErrNoRows when nothing was deleted.
func (r *ExamRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByIDs returns the exams with the given ids ordered by start time. Unknown ids are ignored.
func (r *ExamRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Exam, error) {
	if len(ids) == 0 {
		return []models.Exam{}, nil
	}
	query := `SELECT ` + examColumns + ` FROM exams WHERE id = ANY($1) ORDER BY start_time ASC, id ASC`
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find exams by ids: %w", err)
	}
	return exams, nil
}

// ListByCampusAndFilters returns every exam matching the filter ordered by start time.
func (r *ExamRepository) ListByCampusAndFilters(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error) {
	where, args := examConditions(filter)
	query := `SELECT ` + examColumns + ` FROM exams` + where + ` ORDER BY start_time ASC, subject ASC, course ASC, section ASC`
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// Search returns one page of exams and the total number of matches.
func (r *ExamRepository) Search(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error) {
	where, args := examConditions(filter)

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM exams%s ORDER BY start_time %s, id ASC LIMIT %d OFFSET %d", examColumns, where, order, size, offset)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search exams: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM exams"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count exams: %w", err)
	}
	return exams, total, nil
}

// DistinctSubjects lists subject codes offered on a campus.
func (r *ExamRepository) DistinctSubjects(ctx context.Context, filter models.CatalogFilter) ([]string, error) {
	return r.distinct(ctx, "subject", models.ExamFilter{Campus: filter.Campus})
}

// DistinctCourses lists course codes for a subject.
func (r *ExamRepository) DistinctCourses(ctx context.Context, filter models.CatalogFilter) ([]string, error) {
	return r.distinct(ctx, "course", models.ExamFilter{Campus: filter.Campus, Subject: filter.Subject})
}

// DistinctSections lists section codes for a course.
func (r *ExamRepository) DistinctSections(ctx context.Context, filter models.CatalogFilter) ([]string, error) {
	return r.distinct(ctx, "section", models.ExamFilter{Campus: filter.Campus, Subject: filter.Subject, Course: filter.Course})
}

func (r *ExamRepository) distinct(ctx context.Context, column string, filter models.ExamFilter) ([]string, error) {
	where, args := examConditions(filter)
	query := fmt.Sprintf("SELECT DISTINCT %s FROM exams%s ORDER BY %s ASC", column, where, column)
	values := []string{}
	if err := r.db.SelectContext(ctx, &values, query, args...); err != nil {
		return nil, fmt.Errorf("list distinct %s: %w", column, err)
	}
	return values, nil
}

func examConditions(filter models.ExamFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	add := func(column, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("LOWER(%s) = LOWER($%d)", column, len(args)))
	}
	add("campus", filter.Campus)
	add("subject", filter.Subject)
	add("course", filter.Course)
	add("section", filter.Section)

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
