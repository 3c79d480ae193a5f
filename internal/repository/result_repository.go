package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/srisai/college-api/internal/models"
)

// ResultRepository manages persistence for exam results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs a ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// BulkUpsert writes a batch of results in one transaction. Each row is
// keyed on (student, exam): re-entering marks overwrites the prior row.
func (r *ResultRepository) BulkUpsert(ctx context.Context, results []models.Result) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert results: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	const query = `INSERT INTO results (id, student_id, exam_id, marks_obtained, grade, passed, result_date, remarks)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (student_id, exam_id) DO UPDATE SET
            marks_obtained = EXCLUDED.marks_obtained,
            grade = EXCLUDED.grade,
            passed = EXCLUDED.passed,
            result_date = EXCLUDED.result_date,
            remarks = EXCLUDED.remarks`
	for i := range results {
		res := &results[i]
		if res.ID == "" {
			res.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, query,
			res.ID, res.StudentID, res.ExamID, res.MarksObtained,
			res.Grade, res.Passed, res.ResultDate, res.Remarks); err != nil {
			return fmt.Errorf("upsert result for student %s: %w", res.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert results: %w", err)
	}
	committed = true
	return nil
}

// ListByStudent returns a student's results with exam and subject context,
// most recent first.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ResultDetail, error) {
	const query = `SELECT res.id, res.student_id, res.exam_id, res.marks_obtained, res.grade,
        res.passed, res.result_date, res.remarks,
        e.name AS exam_name, e.total_marks, e.pass_marks,
        s.name AS subject_name, s.code AS subject_code
        FROM results res
        JOIN exams e ON e.id = res.exam_id
        JOIN subjects s ON s.id = e.subject_id
        WHERE res.student_id = $1
        ORDER BY res.result_date DESC`
	var results []models.ResultDetail
	if err := r.db.SelectContext(ctx, &results, query, studentID); err != nil {
		return nil, fmt.Errorf("list student results: %w", err)
	}
	return results, nil
}

// ListByExam returns results entered for an exam, joined with student names.
func (r *ResultRepository) ListByExam(ctx context.Context, examID string) ([]models.ResultRosterEntry, error) {
	const query = `SELECT st.id AS student_id, st.full_name AS student_name, st.student_code,
        res.marks_obtained, res.grade, res.passed, res.remarks, TRUE AS has_existing
        FROM results res
        JOIN students st ON st.id = res.student_id
        WHERE res.exam_id = $1
        ORDER BY st.student_code`
	var entries []models.ResultRosterEntry
	if err := r.db.SelectContext(ctx, &entries, query, examID); err != nil {
		return nil, fmt.Errorf("list exam results: %w", err)
	}
	return entries, nil
}

// Roster returns the roster of students enrolled in the exam's subject,
// left-joined with any results already entered for the exam.
func (r *ResultRepository) Roster(ctx context.Context, examID string) ([]models.ResultRosterEntry, error) {
	const query = `SELECT st.id AS student_id, st.full_name AS student_name, st.student_code,
        COALESCE(res.marks_obtained, 0) AS marks_obtained, res.grade,
        COALESCE(res.passed, FALSE) AS passed, res.remarks,
        (res.id IS NOT NULL) AS has_existing
        FROM exams e
        JOIN enrollments en ON en.subject_id = e.subject_id AND en.active = TRUE
        JOIN students st ON st.id = en.student_id
        LEFT JOIN results res ON res.student_id = st.id AND res.exam_id = e.id
        WHERE e.id = $1
        ORDER BY st.student_code`
	var roster []models.ResultRosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, examID); err != nil {
		return nil, fmt.Errorf("result roster: %w", err)
	}
	return roster, nil
}

// CountByExam counts results already entered for an exam.
func (r *ResultRepository) CountByExam(ctx context.Context, examID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM results WHERE exam_id = $1`, examID); err != nil {
		return 0, fmt.Errorf("count exam results: %w", err)
	}
	return count, nil
}
