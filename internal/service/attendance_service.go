package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/srisai/college-api/internal/models"
	"github.com/srisai/college-api/pkg/database"
	appErrors "github.com/srisai/college-api/pkg/errors"
)

type attendanceRepository interface {
	Replace(ctx context.Context, subjectID string, date time.Time, rows []models.Attendance) error
	Roster(ctx context.Context, subjectID string, date time.Time) ([]models.AttendanceRosterEntry, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error)
	StudentSummary(ctx context.Context, studentID string) (total int, present int, err error)
}

type attendanceSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.SubjectDetail, error)
}

// MarkAttendanceRequest carries one day's marks for a subject.
type MarkAttendanceRequest struct {
	Date    time.Time                `json:"date" validate:"required"`
	Entries []models.AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceService orchestrates attendance marking and reporting.
type AttendanceService struct {
	repo      attendanceRepository
	subjects  attendanceSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, subjects attendanceSubjectRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, subjects: subjects, validator: validate, logger: logger}
}

// Mark replaces the attendance for (subject, date) with the submitted
// entries. actorTeacherID scopes the write to the subject's assigned
// teacher; an empty id skips the ownership check (admin path).
func (s *AttendanceService) Mark(ctx context.Context, subjectID string, actorTeacherID string, req MarkAttendanceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	if err := s.authorizeSubject(ctx, subjectID, actorTeacherID); err != nil {
		return err
	}

	rows := make([]models.Attendance, 0, len(req.Entries))
	seen := make(map[string]struct{}, len(req.Entries))
	for _, entry := range req.Entries {
		if _, dup := seen[entry.StudentID]; dup {
			return appErrors.Clone(appErrors.ErrValidation, "duplicate student in attendance entries")
		}
		seen[entry.StudentID] = struct{}{}
		rows = append(rows, models.Attendance{
			StudentID: entry.StudentID,
			Present:   entry.Present,
			Remarks:   normalizeOptional(entry.Remarks),
		})
	}

	if err := s.repo.Replace(ctx, subjectID, req.Date, rows); err != nil {
		if database.IsUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for a student on this date")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}

	s.logger.Info("attendance marked",
		zap.String("subject_id", subjectID),
		zap.Time("date", req.Date),
		zap.Int("entries", len(rows)))
	return nil
}

// Roster returns the enrolled roster for the marking form, pre-filled with
// any marks already recorded on the date.
func (s *AttendanceService) Roster(ctx context.Context, subjectID string, actorTeacherID string, date time.Time) ([]models.AttendanceRosterEntry, error) {
	if err := s.authorizeSubject(ctx, subjectID, actorTeacherID); err != nil {
		return nil, err
	}
	roster, err := s.repo.Roster(ctx, subjectID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance roster")
	}
	return roster, nil
}

// StudentAttendance returns the overall summary and the per-subject
// breakdown for a student, rows most recent first.
func (s *AttendanceService) StudentAttendance(ctx context.Context, studentID string) (*models.AttendanceSummary, []models.SubjectAttendanceSummary, error) {
	total, present, err := s.repo.StudentSummary(ctx, studentID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance summary")
	}

	records, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
	}

	summary := &models.AttendanceSummary{
		TotalClasses:   total,
		PresentClasses: present,
		Percentage:     attendancePercentage(present, total),
	}

	bySubject := make(map[string]*models.SubjectAttendanceSummary)
	order := make([]string, 0)
	for _, record := range records {
		group, ok := bySubject[record.SubjectID]
		if !ok {
			group = &models.SubjectAttendanceSummary{
				SubjectID:   record.SubjectID,
				SubjectName: record.SubjectName,
				SubjectCode: record.SubjectCode,
			}
			bySubject[record.SubjectID] = group
			order = append(order, record.SubjectID)
		}
		group.TotalClasses++
		if record.Present {
			group.PresentClasses++
		}
		group.Records = append(group.Records, record)
	}

	breakdown := make([]models.SubjectAttendanceSummary, 0, len(order))
	for _, subjectID := range order {
		group := bySubject[subjectID]
		group.Percentage = attendancePercentage(group.PresentClasses, group.TotalClasses)
		breakdown = append(breakdown, *group)
	}
	return summary, breakdown, nil
}

// OverallPercentage returns a student's attendance percent, 0 with no rows.
func (s *AttendanceService) OverallPercentage(ctx context.Context, studentID string) (float64, error) {
	total, present, err := s.repo.StudentSummary(ctx, studentID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance summary")
	}
	return attendancePercentage(present, total), nil
}

func (s *AttendanceService) authorizeSubject(ctx context.Context, subjectID, actorTeacherID string) error {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if actorTeacherID == "" {
		return nil
	}
	if subject.TeacherID == nil || *subject.TeacherID != actorTeacherID {
		return appErrors.Clone(appErrors.ErrForbidden, "subject is not assigned to this teacher")
	}
	return nil
}

func attendancePercentage(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(present) / float64(total) * 100
}
