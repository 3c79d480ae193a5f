package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/srisai/college-api/internal/models"
	appErrors "github.com/srisai/college-api/pkg/errors"
	"github.com/srisai/college-api/pkg/export"
)

// ReportFormat selects the report-card rendering.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type reportStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type reportResultRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ResultDetail, error)
}

type reportAttendanceRepository interface {
	StudentSummary(ctx context.Context, studentID string) (total int, present int, err error)
}

// ReportFile is a rendered export ready to stream to the client.
type ReportFile struct {
	FileName    string
	ContentType string
	Payload     []byte
}

// ReportService renders student report cards as PDF or CSV.
type ReportService struct {
	students    reportStudentRepository
	results     reportResultRepository
	attendance  reportAttendanceRepository
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	institution string
	logger      *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(students reportStudentRepository, results reportResultRepository, attendance reportAttendanceRepository, institution string, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students:    students,
		results:     results,
		attendance:  attendance,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		institution: institution,
		logger:      logger,
	}
}

// ReportCard renders a student's results and attendance summary in the
// requested format.
func (s *ReportService) ReportCard(ctx context.Context, studentID string, format ReportFormat) (*ReportFile, error) {
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	results, err := s.results.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results")
	}

	total, present, err := s.attendance.StudentSummary(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance summary")
	}

	data := s.buildDataset(student, results, total, present)
	title := fmt.Sprintf("%s - Report Card - %s", s.institution, student.StudentCode)

	var payload []byte
	var contentType, extension string
	switch format {
	case ReportFormatPDF:
		payload, err = s.pdf.Render(data, title)
		contentType = "application/pdf"
		extension = "pdf"
	default:
		payload, err = s.csv.Render(data)
		contentType = "text/csv"
		extension = "csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report card")
	}

	return &ReportFile{
		FileName:    fmt.Sprintf("report-card-%s.%s", student.StudentCode, extension),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func (s *ReportService) buildDataset(student *models.StudentDetail, results []models.ResultDetail, totalClasses, presentClasses int) export.Dataset {
	headers := []string{"Subject", "Exam", "Marks", "Total", "Grade", "Status"}
	rows := make([]map[string]string, 0, len(results)+2)
	for _, result := range results {
		status := "FAIL"
		if result.Passed {
			status = "PASS"
		}
		rows = append(rows, map[string]string{
			"Subject": fmt.Sprintf("%s (%s)", result.SubjectName, result.SubjectCode),
			"Exam":    result.ExamName,
			"Marks":   strconv.Itoa(result.MarksObtained),
			"Total":   strconv.Itoa(result.TotalMarks),
			"Grade":   result.Grade,
			"Status":  status,
		})
	}
	rows = append(rows, map[string]string{
		"Subject": "Attendance",
		"Exam":    fmt.Sprintf("%d of %d classes", presentClasses, totalClasses),
		"Marks":   fmt.Sprintf("%.1f%%", attendancePercentage(presentClasses, totalClasses)),
	})
	rows = append(rows, map[string]string{
		"Subject": "Student",
		"Exam":    fmt.Sprintf("%s / %s / %s", student.FullName, student.StudentCode, student.CourseName),
	})
	return export.Dataset{Headers: headers, Rows: rows}
}
