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

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentDetailColumns = `s.id, s.student_code, s.full_name, s.email, s.phone, s.date_of_birth, s.gender, s.address,
        s.course_id, s.semester, s.admission_date, s.active, s.created_at, s.updated_at,
        c.name AS course_name, c.code AS course_code`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	base := "FROM students s JOIN courses c ON c.id = s.course_id"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("s.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
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
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(s.student_code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"student_code": "s.student_code",
		"full_name":    "s.full_name",
		"created_at":   "s.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "s.student_code"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentDetailColumns, base, column, order, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student detail by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM students s JOIN courses c ON c.id = s.course_id WHERE s.id = $1", studentDetailColumns)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByEmail resolves a student profile from the authenticated principal's email.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.StudentDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM students s JOIN courses c ON c.id = s.course_id WHERE s.email = $1", studentDetailColumns)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, email); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByEmail checks whether a student already uses the email.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM students WHERE email = $1 LIMIT 1", email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student email: %w", err)
	}
	return true, nil
}

// CreateWithEnrollments inserts the login account, the student and one
// enrollment per subject in a single transaction so registration is
// all-or-nothing: a failed profile insert also discards the account.
func (r *StudentRepository) CreateWithEnrollments(ctx context.Context, student *models.Student, user *models.User, subjectIDs []string) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	const insertUser = `INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :full_name, :role, :active, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertUser, user); err != nil {
		return err
	}

	const insertStudent = `INSERT INTO students (id, student_code, full_name, email, phone, date_of_birth, gender, address,
        course_id, semester, admission_date, active, created_at, updated_at)
        VALUES (:id, :student_code, :full_name, :email, :phone, :date_of_birth, :gender, :address,
        :course_id, :semester, :admission_date, :active, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertStudent, student); err != nil {
		return err
	}

	const insertEnrollment = `INSERT INTO enrollments (id, student_id, subject_id, enrolled_at, active)
        VALUES ($1, $2, $3, $4, TRUE)`
	for _, subjectID := range subjectIDs {
		if _, err := tx.ExecContext(ctx, insertEnrollment, uuid.NewString(), student.ID, subjectID, now); err != nil {
			return fmt.Errorf("enroll student in subject %s: %w", subjectID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create student: %w", err)
	}
	committed = true
	return nil
}

// Update rewrites the mutable fields of a student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET full_name = :full_name, phone = :phone, gender = :gender, address = :address,
        semester = :semester, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// SetActive toggles the soft-delete flag.
func (r *StudentRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE students SET active = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set student active: %w", err)
	}
	return nil
}

// CountDistinctBySubjects counts distinct students actively enrolled in any
// of the given subjects.
func (r *StudentRepository) CountDistinctBySubjects(ctx context.Context, subjectIDs []string) (int, error) {
	if len(subjectIDs) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(subjectIDs))
	args := make([]interface{}, len(subjectIDs))
	for i, id := range subjectIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT COUNT(DISTINCT e.student_id) FROM enrollments e
        WHERE e.subject_id IN (%s) AND e.active = TRUE`, strings.Join(placeholders, ","))
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count enrolled students: %w", err)
	}
	return count, nil
}
