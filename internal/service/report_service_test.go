package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srisai/college-api/internal/models"
	appErrors "github.com/srisai/college-api/pkg/errors"
)

type fakeReportStudents struct {
	students map[string]*models.StudentDetail
}

func (f *fakeReportStudents) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if student, ok := f.students[id]; ok {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

func reportFixtures() *ReportService {
	students := &fakeReportStudents{students: map[string]*models.StudentDetail{
		"stu1": {
			Student:    models.Student{ID: "stu1", StudentCode: "SSC20240001", FullName: "Ravi Kumar"},
			CourseName: "Bachelor of Computer Applications",
		},
	}}
	results := &fakeDashResults{results: []models.ResultDetail{
		{
			Result:      models.Result{StudentID: "stu1", MarksObtained: 85, Grade: "A", Passed: true},
			ExamName:    "Midterm",
			TotalMarks:  100,
			SubjectName: "Databases",
			SubjectCode: "BCA301",
		},
		{
			Result:      models.Result{StudentID: "stu1", MarksObtained: 30, Grade: "F", Passed: false},
			ExamName:    "Midterm",
			TotalMarks:  100,
			SubjectName: "Networks",
			SubjectCode: "BCA302",
		},
	}}
	attendance := &fakeDashAttendance{total: 10, present: 8}
	return NewReportService(students, results, attendance, "Sri Sai College", zap.NewNop())
}

func TestReportCardCSV(t *testing.T) {
	svc := reportFixtures()

	file, err := svc.ReportCard(context.Background(), "stu1", ReportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "report-card-SSC20240001.csv", file.FileName)
	assert.Equal(t, "text/csv", file.ContentType)

	body := string(file.Payload)
	assert.Contains(t, body, "Subject,Exam,Marks,Total,Grade,Status")
	assert.Contains(t, body, "Databases (BCA301),Midterm,85,100,A,PASS")
	assert.Contains(t, body, "Networks (BCA302),Midterm,30,100,F,FAIL")
	assert.Contains(t, body, "8 of 10 classes")
	assert.Contains(t, body, "80.0%")
	assert.Contains(t, body, "Ravi Kumar / SSC20240001 / Bachelor of Computer Applications")
}

func TestReportCardPDF(t *testing.T) {
	svc := reportFixtures()

	file, err := svc.ReportCard(context.Background(), "stu1", ReportFormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "report-card-SSC20240001.pdf", file.FileName)
	assert.Equal(t, "application/pdf", file.ContentType)
	require.NotEmpty(t, file.Payload)
	assert.Equal(t, "%PDF", string(file.Payload[:4]))
}

func TestReportCardUnknownStudent(t *testing.T) {
	svc := reportFixtures()

	_, err := svc.ReportCard(context.Background(), "missing", ReportFormatPDF)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportCardUnsupportedFormat(t *testing.T) {
	svc := reportFixtures()

	_, err := svc.ReportCard(context.Background(), "stu1", ReportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
