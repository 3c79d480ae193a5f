package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srisai/college-api/internal/models"
	appErrors "github.com/srisai/college-api/pkg/errors"
)

type mockResultRepo struct {
	stored map[string]models.Result
}

func (m *mockResultRepo) BulkUpsert(ctx context.Context, results []models.Result) error {
	if m.stored == nil {
		m.stored = make(map[string]models.Result)
	}
	for _, res := range results {
		m.stored[res.StudentID+"|"+res.ExamID] = res
	}
	return nil
}

func (m *mockResultRepo) ListByStudent(ctx context.Context, studentID string) ([]models.ResultDetail, error) {
	var list []models.ResultDetail
	for _, res := range m.stored {
		if res.StudentID == studentID {
			list = append(list, models.ResultDetail{Result: res})
		}
	}
	return list, nil
}

func (m *mockResultRepo) ListByExam(ctx context.Context, examID string) ([]models.ResultRosterEntry, error) {
	var list []models.ResultRosterEntry
	for _, res := range m.stored {
		if res.ExamID == examID {
			grade := res.Grade
			list = append(list, models.ResultRosterEntry{
				StudentID:         res.StudentID,
				MarksObtained:     res.MarksObtained,
				Grade:             &grade,
				Passed:            res.Passed,
				HasExistingResult: true,
			})
		}
	}
	return list, nil
}

func (m *mockResultRepo) Roster(ctx context.Context, examID string) ([]models.ResultRosterEntry, error) {
	return m.ListByExam(ctx, examID)
}

func (m *mockResultRepo) CountByExam(ctx context.Context, examID string) (int, error) {
	count := 0
	for _, res := range m.stored {
		if res.ExamID == examID {
			count++
		}
	}
	return count, nil
}

type mockExamReader struct {
	exams map[string]*models.ExamDetail
}

func (m *mockExamReader) FindByID(ctx context.Context, id string) (*models.ExamDetail, error) {
	if exam, ok := m.exams[id]; ok {
		return exam, nil
	}
	return nil, sql.ErrNoRows
}

type mockSubjectReader struct {
	subjects map[string]*models.SubjectDetail
}

func (m *mockSubjectReader) FindByID(ctx context.Context, id string) (*models.SubjectDetail, error) {
	if subject, ok := m.subjects[id]; ok {
		return subject, nil
	}
	return nil, sql.ErrNoRows
}

func ptrString(v string) *string {
	return &v
}

func resultFixtures() (*mockResultRepo, *mockExamReader, *mockSubjectReader) {
	repo := &mockResultRepo{}
	exams := &mockExamReader{exams: map[string]*models.ExamDetail{
		"exam1": {Exam: models.Exam{ID: "exam1", SubjectID: "sub1", TotalMarks: 100, PassMarks: 40, Active: true}},
	}}
	subjects := &mockSubjectReader{subjects: map[string]*models.SubjectDetail{
		"sub1": {Subject: models.Subject{ID: "sub1", TeacherID: ptrString("teach1"), Active: true}},
	}}
	return repo, exams, subjects
}

func TestResultServiceGradeTable(t *testing.T) {
	repo, exams, subjects := resultFixtures()
	svc := NewResultService(repo, exams, subjects, validator.New(), zap.NewNop())

	cases := []struct {
		studentID string
		marks     int
		grade     string
		passed    bool
	}{
		{"11111111-1111-1111-1111-111111111111", 95, "A+", true},
		{"22222222-2222-2222-2222-222222222222", 85, "A", true},
		{"33333333-3333-3333-3333-333333333333", 72, "B+", true},
		{"44444444-4444-4444-4444-444444444444", 65, "B", true},
		{"55555555-5555-5555-5555-555555555555", 55, "C+", true},
		{"66666666-6666-6666-6666-666666666666", 45, "C", true},
		{"77777777-7777-7777-7777-777777777777", 30, "F", false},
	}

	entries := make([]ResultEntry, 0, len(cases))
	for _, tc := range cases {
		entries = append(entries, ResultEntry{StudentID: tc.studentID, MarksObtained: tc.marks})
	}

	err := svc.Submit(context.Background(), "exam1", "teach1", SubmitResultsRequest{Entries: entries})
	require.NoError(t, err)

	for _, tc := range cases {
		stored, ok := repo.stored[tc.studentID+"|exam1"]
		require.True(t, ok, "missing result for %s", tc.studentID)
		assert.Equal(t, tc.grade, stored.Grade, "marks=%d", tc.marks)
		assert.Equal(t, tc.passed, stored.Passed, "marks=%d", tc.marks)
	}
}

func TestResultServicePercentageScaling(t *testing.T) {
	repo, exams, subjects := resultFixtures()
	exams.exams["exam1"].TotalMarks = 200
	exams.exams["exam1"].PassMarks = 80
	svc := NewResultService(repo, exams, subjects, validator.New(), zap.NewNop())

	err := svc.Submit(context.Background(), "exam1", "", SubmitResultsRequest{Entries: []ResultEntry{
		{StudentID: "11111111-1111-1111-1111-111111111111", MarksObtained: 180},
		{StudentID: "22222222-2222-2222-2222-222222222222", MarksObtained: 79},
	}})
	require.NoError(t, err)

	// 180/200 = 90% and clears pass_marks.
	first := repo.stored["11111111-1111-1111-1111-111111111111|exam1"]
	assert.Equal(t, "A+", first.Grade)
	assert.True(t, first.Passed)

	// 79/200 = 39.5% maps to F and misses pass_marks by one.
	second := repo.stored["22222222-2222-2222-2222-222222222222|exam1"]
	assert.Equal(t, "F", second.Grade)
	assert.False(t, second.Passed)
}

func TestResultServiceResubmissionOverwrites(t *testing.T) {
	repo, exams, subjects := resultFixtures()
	svc := NewResultService(repo, exams, subjects, validator.New(), zap.NewNop())

	studentID := "11111111-1111-1111-1111-111111111111"
	err := svc.Submit(context.Background(), "exam1", "teach1", SubmitResultsRequest{Entries: []ResultEntry{
		{StudentID: studentID, MarksObtained: 35},
	}})
	require.NoError(t, err)

	err = svc.Submit(context.Background(), "exam1", "teach1", SubmitResultsRequest{Entries: []ResultEntry{
		{StudentID: studentID, MarksObtained: 75},
	}})
	require.NoError(t, err)

	count, err := repo.CountByExam(context.Background(), "exam1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored := repo.stored[studentID+"|exam1"]
	assert.Equal(t, 75, stored.MarksObtained)
	assert.Equal(t, "B+", stored.Grade)
	assert.True(t, stored.Passed)
}

func TestResultServiceMarksAboveTotalRejected(t *testing.T) {
	repo, exams, subjects := resultFixtures()
	svc := NewResultService(repo, exams, subjects, validator.New(), zap.NewNop())

	err := svc.Submit(context.Background(), "exam1", "teach1", SubmitResultsRequest{Entries: []ResultEntry{
		{StudentID: "11111111-1111-1111-1111-111111111111", MarksObtained: 101},
	}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.stored)
}

func TestResultServiceForbiddenForOtherTeacher(t *testing.T) {
	repo, exams, subjects := resultFixtures()
	svc := NewResultService(repo, exams, subjects, validator.New(), zap.NewNop())

	err := svc.Submit(context.Background(), "exam1", "other-teacher", SubmitResultsRequest{Entries: []ResultEntry{
		{StudentID: "11111111-1111-1111-1111-111111111111", MarksObtained: 50},
	}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Roster(context.Background(), "exam1", "other-teacher")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestResultServiceUnknownExam(t *testing.T) {
	repo, exams, subjects := resultFixtures()
	svc := NewResultService(repo, exams, subjects, validator.New(), zap.NewNop())

	err := svc.Submit(context.Background(), "missing", "", SubmitResultsRequest{Entries: []ResultEntry{
		{StudentID: "11111111-1111-1111-1111-111111111111", MarksObtained: 50},
	}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
