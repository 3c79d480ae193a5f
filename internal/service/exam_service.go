package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/srisai/college-api/internal/models"
	appErrors "github.com/srisai/college-api/pkg/errors"
)

type examRepository interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ExamDetail, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	SetActive(ctx context.Context, id string, active bool) error
}

type examSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.SubjectDetail, error)
}

// CreateExamRequest represents payload for scheduling exams.
type CreateExamRequest struct {
	Name         string    `json:"name" validate:"required,max=200"`
	SubjectID    string    `json:"subject_id" validate:"required,uuid"`
	ExamDate     time.Time `json:"exam_date" validate:"required"`
	StartTime    string    `json:"start_time" validate:"required,max=20"`
	EndTime      string    `json:"end_time" validate:"required,max=20"`
	TotalMarks   int       `json:"total_marks" validate:"required,min=1,max=1000"`
	PassMarks    int       `json:"pass_marks" validate:"required,min=1,max=1000"`
	ExamType     string    `json:"exam_type" validate:"required,max=50"`
	Instructions *string   `json:"instructions" validate:"omitempty,max=2000"`
}

// UpdateExamRequest represents payload for rescheduling exams. The subject
// is immutable; results reference the exam through it.
type UpdateExamRequest struct {
	Name         string    `json:"name" validate:"required,max=200"`
	ExamDate     time.Time `json:"exam_date" validate:"required"`
	StartTime    string    `json:"start_time" validate:"required,max=20"`
	EndTime      string    `json:"end_time" validate:"required,max=20"`
	TotalMarks   int       `json:"total_marks" validate:"required,min=1,max=1000"`
	PassMarks    int       `json:"pass_marks" validate:"required,min=1,max=1000"`
	ExamType     string    `json:"exam_type" validate:"required,max=50"`
	Instructions *string   `json:"instructions" validate:"omitempty,max=2000"`
	Active       *bool     `json:"active"`
}

// ExamService orchestrates exam scheduling.
type ExamService struct {
	repo      examRepository
	subjects  examSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs an ExamService.
func NewExamService(repo examRepository, subjects examSubjectRepository, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, subjects: subjects, validator: validate, logger: logger}
}

// List returns exams plus pagination data.
func (s *ExamService) List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, *models.Pagination, error) {
	exams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return exams, pagination, nil
}

// Get returns an exam by id with subject context.
func (s *ExamService) Get(ctx context.Context, id string) (*models.ExamDetail, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// Create schedules a new exam for a subject.
func (s *ExamService) Create(ctx context.Context, req CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	if req.PassMarks > req.TotalMarks {
		return nil, appErrors.Clone(appErrors.ErrValidation, "pass marks exceed total marks")
	}

	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if !subject.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "subject is inactive")
	}

	exam := &models.Exam{
		Name:         strings.TrimSpace(req.Name),
		SubjectID:    req.SubjectID,
		ExamDate:     req.ExamDate,
		StartTime:    strings.TrimSpace(req.StartTime),
		EndTime:      strings.TrimSpace(req.EndTime),
		TotalMarks:   req.TotalMarks,
		PassMarks:    req.PassMarks,
		ExamType:     strings.TrimSpace(req.ExamType),
		Instructions: normalizeOptional(req.Instructions),
		Active:       true,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	return exam, nil
}

// Update reschedules an existing exam.
func (s *ExamService) Update(ctx context.Context, id string, req UpdateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	if req.PassMarks > req.TotalMarks {
		return nil, appErrors.Clone(appErrors.ErrValidation, "pass marks exceed total marks")
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}

	exam := detail.Exam
	exam.Name = strings.TrimSpace(req.Name)
	exam.ExamDate = req.ExamDate
	exam.StartTime = strings.TrimSpace(req.StartTime)
	exam.EndTime = strings.TrimSpace(req.EndTime)
	exam.TotalMarks = req.TotalMarks
	exam.PassMarks = req.PassMarks
	exam.ExamType = strings.TrimSpace(req.ExamType)
	exam.Instructions = normalizeOptional(req.Instructions)
	if req.Active != nil {
		exam.Active = *req.Active
	}

	if err := s.repo.Update(ctx, &exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam")
	}
	return &exam, nil
}

// Deactivate cancels an exam. Entered results are retained.
func (s *ExamService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate exam")
	}
	return nil
}
