package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/srisai/college-api/internal/models"
)

const examDetailColumns = `e.id, e.name, e.subject_id, e.exam_date, e.start_time, e.end_time,
    e.total_marks, e.pass_marks, e.exam_type, e.instructions, e.active, e.created_at, e.updated_at,
    s.name AS subject_name, s.code AS subject_code`

// ExamRepository manages persistence for exams.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs an ExamRepository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// List returns exams matching the filter with pagination.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filter.SubjectID != "" {
		where = append(where, fmt.Sprintf("e.subject_id = $%d", idx))
		args = append(args, filter.SubjectID)
		idx++
	}
	if filter.TeacherID != "" {
		where = append(where, fmt.Sprintf("s.teacher_id = $%d", idx))
		args = append(args, filter.TeacherID)
		idx++
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("e.active = $%d", idx))
		args = append(args, *filter.Active)
		idx++
	}
	if filter.FutureOnly {
		where = append(where, fmt.Sprintf("e.exam_date >= $%d", idx))
		args = append(args, time.Now().UTC())
		idx++
	}
	whereClause := strings.Join(where, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM exams e JOIN subjects s ON s.id = e.subject_id WHERE %s`, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count exams: %w", err)
	}

	allowedSorts := map[string]string{
		"exam_date":  "e.exam_date",
		"name":       "e.name",
		"created_at": "e.created_at",
	}
	sortCol, ok := allowedSorts[filter.SortBy]
	if !ok {
		sortCol = "e.exam_date"
	}
	sortDir := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		sortDir = "DESC"
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM exams e JOIN subjects s ON s.id = e.subject_id
        WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		examDetailColumns, whereClause, sortCol, sortDir, idx, idx+1)
	args = append(args, size, (page-1)*size)

	var exams []models.ExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list exams: %w", err)
	}
	return exams, total, nil
}

// FindByID fetches one exam with subject context.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.ExamDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM exams e JOIN subjects s ON s.id = e.subject_id WHERE e.id = $1`, examDetailColumns)
	var exam models.ExamDetail
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListUpcoming returns the soonest future active exams, capped at limit.
func (r *ExamRepository) ListUpcoming(ctx context.Context, limit int) ([]models.ExamDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM exams e JOIN subjects s ON s.id = e.subject_id
        WHERE e.active = TRUE AND e.exam_date >= $1 ORDER BY e.exam_date ASC LIMIT $2`, examDetailColumns)
	var exams []models.ExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, time.Now().UTC(), limit); err != nil {
		return nil, fmt.Errorf("list upcoming exams: %w", err)
	}
	return exams, nil
}

// ListUpcomingForStudent returns future active exams scheduled for the
// student's enrolled subjects, soonest first.
func (r *ExamRepository) ListUpcomingForStudent(ctx context.Context, studentID string, limit int) ([]models.ExamDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM exams e
        JOIN subjects s ON s.id = e.subject_id
        JOIN enrollments en ON en.subject_id = e.subject_id
        WHERE en.student_id = $1 AND en.active = TRUE AND e.active = TRUE AND e.exam_date >= $2
        ORDER BY e.exam_date ASC LIMIT $3`, examDetailColumns)
	var exams []models.ExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, studentID, time.Now().UTC(), limit); err != nil {
		return nil, fmt.Errorf("list upcoming exams for student: %w", err)
	}
	return exams, nil
}

// Create inserts a new exam record.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now
	const query = `INSERT INTO exams (id, name, subject_id, exam_date, start_time, end_time,
        total_marks, pass_marks, exam_type, instructions, active, created_at, updated_at)
        VALUES (:id, :name, :subject_id, :exam_date, :start_time, :end_time,
        :total_marks, :pass_marks, :exam_type, :instructions, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an exam.
func (r *ExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	exam.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exams SET name = :name, subject_id = :subject_id, exam_date = :exam_date,
        start_time = :start_time, end_time = :end_time, total_marks = :total_marks,
        pass_marks = :pass_marks, exam_type = :exam_type, instructions = :instructions,
        active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	return nil
}

// SetActive toggles the soft-delete flag.
func (r *ExamRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE exams SET active = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set exam active: %w", err)
	}
	return nil
}
