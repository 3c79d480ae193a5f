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

func TestResultRepositoryBulkUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO results (id, student_id, exam_id, marks_obtained, grade, passed, result_date, remarks)")).
		WithArgs(sqlmock.AnyArg(), "stu1", "exam1", 85, "A", true, now, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id, exam_id) DO UPDATE SET")).
		WithArgs(sqlmock.AnyArg(), "stu2", "exam1", 30, "F", false, now, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.BulkUpsert(context.Background(), []models.Result{
		{StudentID: "stu1", ExamID: "exam1", MarksObtained: 85, Grade: "A", Passed: true, ResultDate: now},
		{StudentID: "stu2", ExamID: "exam1", MarksObtained: 30, Grade: "F", Passed: false, ResultDate: now},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryBulkUpsertRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO results")).
		WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	err := repo.BulkUpsert(context.Background(), []models.Result{
		{StudentID: "ghost", ExamID: "exam1", MarksObtained: 50, Grade: "C+", ResultDate: time.Now()},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryRoster(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "student_name", "student_code", "marks_obtained", "grade", "passed", "remarks", "has_existing"}).
		AddRow("stu1", "Asha Verma", "SSC20240001", 85, "A", true, nil, true).
		AddRow("stu2", "Ravi Kumar", "SSC20240002", 0, nil, false, nil, false)
	mock.ExpectQuery(regexp.QuoteMeta("FROM exams")).
		WithArgs("exam1").
		WillReturnRows(rows)

	roster, err := repo.Roster(context.Background(), "exam1")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.True(t, roster[0].HasExistingResult)
	require.False(t, roster[1].HasExistingResult)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryCountByExam(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewResultRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM results WHERE exam_id = $1")).
		WithArgs("exam1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountByExam(context.Background(), "exam1")
	require.NoError(t, err)
	require.Equal(t, 12, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
