package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/srisai/college-api/internal/models"
)

// AttendanceRepository manages persistence for attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Replace deletes every attendance row for (subject, date) and inserts the
// submitted rows in one transaction. The date is truncated to the day, and
// the write is a full replace: students absent from the input lose their
// record for that date.
func (r *AttendanceRepository) Replace(ctx context.Context, subjectID string, date time.Time, rows []models.Attendance) error {
	day := date.Truncate(24 * time.Hour)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace attendance: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE subject_id = $1 AND date = $2`, subjectID, day); err != nil {
		return fmt.Errorf("delete attendance for subject %s: %w", subjectID, err)
	}

	const insert = `INSERT INTO attendance (id, student_id, subject_id, date, present, remarks)
        VALUES ($1, $2, $3, $4, $5, $6)`
	for i := range rows {
		row := &rows[i]
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		row.SubjectID = subjectID
		row.Date = day
		if _, err := tx.ExecContext(ctx, insert, row.ID, row.StudentID, row.SubjectID, row.Date, row.Present, row.Remarks); err != nil {
			return fmt.Errorf("insert attendance for student %s: %w", row.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace attendance: %w", err)
	}
	committed = true
	return nil
}

// Roster returns the enrolled-student roster for a subject joined with any
// attendance already recorded on the date, flagging existing records.
func (r *AttendanceRepository) Roster(ctx context.Context, subjectID string, date time.Time) ([]models.AttendanceRosterEntry, error) {
	day := date.Truncate(24 * time.Hour)
	const query = `SELECT st.id AS student_id, st.full_name AS student_name, st.student_code,
        COALESCE(a.present, FALSE) AS is_present, a.remarks,
        (a.id IS NOT NULL) AS has_existing
        FROM enrollments e
        JOIN students st ON st.id = e.student_id
        LEFT JOIN attendance a ON a.student_id = st.id AND a.subject_id = e.subject_id AND a.date = $2
        WHERE e.subject_id = $1 AND e.active = TRUE
        ORDER BY st.student_code`
	var roster []models.AttendanceRosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, subjectID, day); err != nil {
		return nil, fmt.Errorf("attendance roster: %w", err)
	}
	return roster, nil
}

// ListByStudent returns a student's attendance rows with subject context,
// most recent first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error) {
	const query = `SELECT a.id, a.student_id, a.subject_id, a.date, a.present, a.remarks,
        s.name AS subject_name, s.code AS subject_code
        FROM attendance a
        JOIN subjects s ON s.id = a.subject_id
        WHERE a.student_id = $1
        ORDER BY a.date DESC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list student attendance: %w", err)
	}
	return records, nil
}

// StudentSummary counts a student's total and present rows.
func (r *AttendanceRepository) StudentSummary(ctx context.Context, studentID string) (total int, present int, err error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE present) AS present
        FROM attendance WHERE student_id = $1`
	row := struct {
		Total   int `db:"total"`
		Present int `db:"present"`
	}{}
	if err := r.db.GetContext(ctx, &row, query, studentID); err != nil {
		return 0, 0, fmt.Errorf("student attendance summary: %w", err)
	}
	return row.Total, row.Present, nil
}
