package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/srisai/college-api/internal/models"
	appErrors "github.com/srisai/college-api/pkg/errors"
)

type resultRepository interface {
	BulkUpsert(ctx context.Context, results []models.Result) error
	ListByStudent(ctx context.Context, studentID string) ([]models.ResultDetail, error)
	ListByExam(ctx context.Context, examID string) ([]models.ResultRosterEntry, error)
	Roster(ctx context.Context, examID string) ([]models.ResultRosterEntry, error)
	CountByExam(ctx context.Context, examID string) (int, error)
}

type resultExamRepository interface {
	FindByID(ctx context.Context, id string) (*models.ExamDetail, error)
}

type resultSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.SubjectDetail, error)
}

// ResultEntry is one student's marks within a batch submission.
type ResultEntry struct {
	StudentID     string  `json:"student_id" validate:"required,uuid"`
	MarksObtained int     `json:"marks_obtained" validate:"min=0,max=1000"`
	Remarks       *string `json:"remarks,omitempty"`
}

// SubmitResultsRequest carries a batch of marks for one exam.
type SubmitResultsRequest struct {
	Entries []ResultEntry `json:"entries" validate:"required,min=1,dive"`
}

// ResultService orchestrates result entry and reporting.
type ResultService struct {
	repo      resultRepository
	exams     resultExamRepository
	subjects  resultSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResultService constructs a ResultService.
func NewResultService(repo resultRepository, exams resultExamRepository, subjects resultSubjectRepository, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{repo: repo, exams: exams, subjects: subjects, validator: validate, logger: logger}
}

// Submit upserts a batch of results for an exam. Marks above the exam's
// total are rejected; the grade letter and pass flag are derived here and
// never accepted from input. Re-submission overwrites prior rows.
func (s *ResultService) Submit(ctx context.Context, examID string, actorTeacherID string, req SubmitResultsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid results payload")
	}

	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return err
	}
	if err := s.authorizeExam(ctx, exam, actorTeacherID); err != nil {
		return err
	}

	now := time.Now().UTC()
	results := make([]models.Result, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if entry.MarksObtained > exam.TotalMarks {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("marks for student %s exceed exam total", entry.StudentID))
		}
		results = append(results, models.Result{
			StudentID:     entry.StudentID,
			ExamID:        examID,
			MarksObtained: entry.MarksObtained,
			Grade:         gradeForPercentage(float64(entry.MarksObtained) / float64(exam.TotalMarks) * 100),
			Passed:        entry.MarksObtained >= exam.PassMarks,
			ResultDate:    now,
			Remarks:       normalizeOptional(entry.Remarks),
		})
	}

	if err := s.repo.BulkUpsert(ctx, results); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save results")
	}

	s.logger.Info("results submitted",
		zap.String("exam_id", examID),
		zap.Int("entries", len(results)))
	return nil
}

// Roster returns the result-entry form data: the exam's enrolled roster
// joined with any marks already entered.
func (s *ResultService) Roster(ctx context.Context, examID string, actorTeacherID string) ([]models.ResultRosterEntry, error) {
	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeExam(ctx, exam, actorTeacherID); err != nil {
		return nil, err
	}
	roster, err := s.repo.Roster(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result roster")
	}
	return roster, nil
}

// ListByExam returns the results entered for an exam.
func (s *ResultService) ListByExam(ctx context.Context, examID string, actorTeacherID string) ([]models.ResultRosterEntry, error) {
	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeExam(ctx, exam, actorTeacherID); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListByExam(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam results")
	}
	return entries, nil
}

// ListByStudent returns a student's full result history, most recent first.
func (s *ResultService) ListByStudent(ctx context.Context, studentID string) ([]models.ResultDetail, error) {
	results, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student results")
	}
	return results, nil
}

func (s *ResultService) loadExam(ctx context.Context, examID string) (*models.ExamDetail, error) {
	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

func (s *ResultService) authorizeExam(ctx context.Context, exam *models.ExamDetail, actorTeacherID string) error {
	if actorTeacherID == "" {
		return nil
	}
	subject, err := s.subjects.FindByID(ctx, exam.SubjectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if subject.TeacherID == nil || *subject.TeacherID != actorTeacherID {
		return appErrors.Clone(appErrors.ErrForbidden, "exam subject is not assigned to this teacher")
	}
	return nil
}

// gradeForPercentage maps a percentage to the letter scale. The letter is
// independent of the pass flag, which compares raw marks to pass_marks.
func gradeForPercentage(pct float64) string {
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B+"
	case pct >= 60:
		return "B"
	case pct >= 50:
		return "C+"
	case pct >= 40:
		return "C"
	default:
		return "F"
	}
}
