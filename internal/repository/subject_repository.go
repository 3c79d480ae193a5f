package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/srisai/college-api/internal/models"
)

// SubjectRepository manages persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectDetailColumns = `s.id, s.code, s.name, s.credits, s.course_id, s.semester, s.teacher_id, s.active, s.created_at, s.updated_at,
        c.name AS course_name, c.code AS course_code, t.full_name AS teacher_name`

const subjectDetailJoins = `FROM subjects s
        JOIN courses c ON c.id = s.course_id
        LEFT JOIN teachers t ON t.id = s.teacher_id`

// List returns subjects with course and teacher context.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, int, error) {
	base := subjectDetailJoins
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("s.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("s.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("s.semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("s.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.name) LIKE $%d OR LOWER(s.code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	clause := " WHERE " + strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"code":     "s.code",
		"name":     "s.name",
		"semester": "s.semester",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "s.code"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", subjectDetailColumns, base+clause, column, order, size, offset)

	var subjects []models.SubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}
	return subjects, total, nil
}

// FindByID fetches a subject detail by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.SubjectDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE s.id = $1", subjectDetailColumns, subjectDetailJoins)
	var detail models.SubjectDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByCode checks whether a subject code is already taken.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM subjects WHERE code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return true, nil
}

// ListActiveByCourseSemester returns active subjects for a (course, semester)
// pairing; the enrollment workflow fans out over this set.
func (r *SubjectRepository) ListActiveByCourseSemester(ctx context.Context, courseID string, semester int) ([]models.Subject, error) {
	const query = `SELECT id, code, name, credits, course_id, semester, teacher_id, active, created_at, updated_at
        FROM subjects WHERE course_id = $1 AND semester = $2 AND active = TRUE`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, courseID, semester); err != nil {
		return nil, fmt.Errorf("list course semester subjects: %w", err)
	}
	return subjects, nil
}

// ListActiveByTeacher returns the subjects currently assigned to a teacher.
func (r *SubjectRepository) ListActiveByTeacher(ctx context.Context, teacherID string) ([]models.SubjectDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE s.teacher_id = $1 AND s.active = TRUE ORDER BY s.code", subjectDetailColumns, subjectDetailJoins)
	var subjects []models.SubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return subjects, nil
}

// ListEnrolledByStudent returns the subjects a student is actively enrolled in.
func (r *SubjectRepository) ListEnrolledByStudent(ctx context.Context, studentID string) ([]models.SubjectDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s
        JOIN enrollments e ON e.subject_id = s.id
        WHERE e.student_id = $1 AND e.active = TRUE ORDER BY s.semester, s.code`, subjectDetailColumns, subjectDetailJoins)
	var subjects []models.SubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrolled subjects: %w", err)
	}
	return subjects, nil
}

// Create inserts a new subject record.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now
	const query = `INSERT INTO subjects (id, code, name, credits, course_id, semester, teacher_id, active, created_at, updated_at)
        VALUES (:id, :code, :name, :credits, :course_id, :semester, :teacher_id, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET name = :name, credits = :credits, semester = :semester,
        teacher_id = :teacher_id, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// SetActive toggles the soft-delete flag.
func (r *SubjectRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE subjects SET active = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set subject active: %w", err)
	}
	return nil
}
