package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srisai/college-api/internal/models"
	appErrors "github.com/srisai/college-api/pkg/errors"
)

type mockAttendanceRepo struct {
	// keyed on subjectID + date, each value is the full replacement set
	marked  map[string][]models.Attendance
	records []models.AttendanceRecord
}

func attendanceKey(subjectID string, date time.Time) string {
	return subjectID + "|" + date.Format("2006-01-02")
}

func (m *mockAttendanceRepo) Replace(ctx context.Context, subjectID string, date time.Time, rows []models.Attendance) error {
	if m.marked == nil {
		m.marked = make(map[string][]models.Attendance)
	}
	m.marked[attendanceKey(subjectID, date)] = rows
	return nil
}

func (m *mockAttendanceRepo) Roster(ctx context.Context, subjectID string, date time.Time) ([]models.AttendanceRosterEntry, error) {
	var roster []models.AttendanceRosterEntry
	for _, row := range m.marked[attendanceKey(subjectID, date)] {
		roster = append(roster, models.AttendanceRosterEntry{
			StudentID:             row.StudentID,
			IsPresent:             row.Present,
			Remarks:               row.Remarks,
			HasExistingAttendance: true,
		})
	}
	return roster, nil
}

func (m *mockAttendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error) {
	var list []models.AttendanceRecord
	for _, record := range m.records {
		if record.StudentID == studentID {
			list = append(list, record)
		}
	}
	return list, nil
}

func (m *mockAttendanceRepo) StudentSummary(ctx context.Context, studentID string) (int, int, error) {
	total, present := 0, 0
	for _, record := range m.records {
		if record.StudentID != studentID {
			continue
		}
		total++
		if record.Present {
			present++
		}
	}
	return total, present, nil
}

func attendanceFixtures() (*mockAttendanceRepo, *mockSubjectReader) {
	repo := &mockAttendanceRepo{}
	subjects := &mockSubjectReader{subjects: map[string]*models.SubjectDetail{
		"sub1": {Subject: models.Subject{ID: "sub1", TeacherID: ptrString("teach1"), Active: true}},
	}}
	return repo, subjects
}

func TestAttendanceServiceMarkReplaces(t *testing.T) {
	repo, subjects := attendanceFixtures()
	svc := NewAttendanceService(repo, subjects, validator.New(), zap.NewNop())

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	err := svc.Mark(context.Background(), "sub1", "teach1", MarkAttendanceRequest{
		Date: date,
		Entries: []models.AttendanceEntry{
			{StudentID: "stu1", Present: true},
			{StudentID: "stu2", Present: false},
		},
	})
	require.NoError(t, err)

	err = svc.Mark(context.Background(), "sub1", "teach1", MarkAttendanceRequest{
		Date: date,
		Entries: []models.AttendanceEntry{
			{StudentID: "stu1", Present: false, Remarks: ptrString("late")},
		},
	})
	require.NoError(t, err)

	rows := repo.marked[attendanceKey("sub1", date)]
	require.Len(t, rows, 1)
	assert.Equal(t, "stu1", rows[0].StudentID)
	assert.False(t, rows[0].Present)
	require.NotNil(t, rows[0].Remarks)
	assert.Equal(t, "late", *rows[0].Remarks)
}

func TestAttendanceServiceMarkForbiddenForOtherTeacher(t *testing.T) {
	repo, subjects := attendanceFixtures()
	svc := NewAttendanceService(repo, subjects, validator.New(), zap.NewNop())

	err := svc.Mark(context.Background(), "sub1", "other-teacher", MarkAttendanceRequest{
		Date:    time.Now().UTC(),
		Entries: []models.AttendanceEntry{{StudentID: "stu1", Present: true}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.marked)
}

func TestAttendanceServiceMarkUnknownSubject(t *testing.T) {
	repo, subjects := attendanceFixtures()
	svc := NewAttendanceService(repo, subjects, validator.New(), zap.NewNop())

	err := svc.Mark(context.Background(), "missing", "", MarkAttendanceRequest{
		Date:    time.Now().UTC(),
		Entries: []models.AttendanceEntry{{StudentID: "stu1", Present: true}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceMarkRejectsDuplicateStudent(t *testing.T) {
	repo, subjects := attendanceFixtures()
	svc := NewAttendanceService(repo, subjects, validator.New(), zap.NewNop())

	err := svc.Mark(context.Background(), "sub1", "teach1", MarkAttendanceRequest{
		Date: time.Now().UTC(),
		Entries: []models.AttendanceEntry{
			{StudentID: "stu1", Present: true},
			{StudentID: "stu1", Present: false},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.marked)
}

func TestAttendanceServiceEmptyEntriesRejected(t *testing.T) {
	repo, subjects := attendanceFixtures()
	svc := NewAttendanceService(repo, subjects, validator.New(), zap.NewNop())

	err := svc.Mark(context.Background(), "sub1", "teach1", MarkAttendanceRequest{
		Date:    time.Now().UTC(),
		Entries: nil,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceStudentAttendance(t *testing.T) {
	repo, subjects := attendanceFixtures()
	repo.records = []models.AttendanceRecord{
		{Attendance: models.Attendance{StudentID: "stu1", SubjectID: "sub1", Present: true}, SubjectName: "Databases", SubjectCode: "DB101"},
		{Attendance: models.Attendance{StudentID: "stu1", SubjectID: "sub1", Present: true}, SubjectName: "Databases", SubjectCode: "DB101"},
		{Attendance: models.Attendance{StudentID: "stu1", SubjectID: "sub1", Present: false}, SubjectName: "Databases", SubjectCode: "DB101"},
		{Attendance: models.Attendance{StudentID: "stu1", SubjectID: "sub2", Present: true}, SubjectName: "Networks", SubjectCode: "NW201"},
		{Attendance: models.Attendance{StudentID: "other", SubjectID: "sub1", Present: false}},
	}
	svc := NewAttendanceService(repo, subjects, validator.New(), zap.NewNop())

	summary, breakdown, err := svc.StudentAttendance(context.Background(), "stu1")
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalClasses)
	assert.Equal(t, 3, summary.PresentClasses)
	assert.InDelta(t, 75.0, summary.Percentage, 0.001)

	require.Len(t, breakdown, 2)
	assert.Equal(t, "sub1", breakdown[0].SubjectID)
	assert.Equal(t, 3, breakdown[0].TotalClasses)
	assert.Equal(t, 2, breakdown[0].PresentClasses)
	assert.InDelta(t, 66.666, breakdown[0].Percentage, 0.01)
	assert.Equal(t, "sub2", breakdown[1].SubjectID)
	assert.InDelta(t, 100.0, breakdown[1].Percentage, 0.001)
}

func TestAttendanceServicePercentageZeroGuard(t *testing.T) {
	repo, subjects := attendanceFixtures()
	svc := NewAttendanceService(repo, subjects, validator.New(), zap.NewNop())

	pct, err := svc.OverallPercentage(context.Background(), "stu-without-rows")
	require.NoError(t, err)
	assert.Zero(t, pct)
}

func TestAttendancePercentage(t *testing.T) {
	assert.InDelta(t, 80.0, attendancePercentage(8, 10), 0.001)
	assert.Zero(t, attendancePercentage(0, 0))
}
