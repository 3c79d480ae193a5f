package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/srisai/college-api/internal/models"
)

func TestAttendanceRepositoryReplace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	day := date.Truncate(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance WHERE subject_id = $1 AND date = $2")).
		WithArgs("sub1", day).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance (id, student_id, subject_id, date, present, remarks)")).
		WithArgs(sqlmock.AnyArg(), "stu1", "sub1", day, true, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance (id, student_id, subject_id, date, present, remarks)")).
		WithArgs(sqlmock.AnyArg(), "stu2", "sub1", day, false, "sick leave").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	remarks := "sick leave"
	err := repo.Replace(context.Background(), "sub1", date, []models.Attendance{
		{StudentID: "stu1", Present: true},
		{StudentID: "stu2", Present: false, Remarks: &remarks},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryReplaceRollsBackOnInsertError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance")).
		WithArgs("sub1", date).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance")).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), "sub1", date, []models.Attendance{
		{StudentID: "stu1", Present: true},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryRoster(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"student_id", "student_name", "student_code", "is_present", "remarks", "has_existing"}).
		AddRow("stu1", "Asha Verma", "SSC20240001", true, nil, true).
		AddRow("stu2", "Ravi Kumar", "SSC20240002", false, nil, false)
	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments e")).
		WithArgs("sub1", date).
		WillReturnRows(rows)

	roster, err := repo.Roster(context.Background(), "sub1", date)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.True(t, roster[0].HasExistingAttendance)
	require.False(t, roster[1].HasExistingAttendance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryStudentSummary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE present) AS present")).
		WithArgs("stu1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "present"}).AddRow(10, 8))

	total, present, err := repo.StudentSummary(context.Background(), "stu1")
	require.NoError(t, err)
	require.Equal(t, 10, total)
	require.Equal(t, 8, present)
	require.NoError(t, mock.ExpectationsWereMet())
}
