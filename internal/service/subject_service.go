package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/srisai/college-api/internal/models"
	appErrors "github.com/srisai/college-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.SubjectDetail, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	ListActiveByTeacher(ctx context.Context, teacherID string) ([]models.SubjectDetail, error)
	ListEnrolledByStudent(ctx context.Context, studentID string) ([]models.SubjectDetail, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	SetActive(ctx context.Context, id string, active bool) error
}

type subjectCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type subjectTeacherRepository interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// CreateSubjectRequest represents payload for creating subjects.
type CreateSubjectRequest struct {
	Code      string  `json:"code" validate:"required,max=20"`
	Name      string  `json:"name" validate:"required,max=200"`
	Credits   int     `json:"credits" validate:"required,min=1,max=10"`
	CourseID  string  `json:"course_id" validate:"required,uuid"`
	Semester  int     `json:"semester" validate:"required,min=1,max=12"`
	TeacherID *string `json:"teacher_id" validate:"omitempty,uuid"`
}

// UpdateSubjectRequest represents payload for updating subjects. Course
// and semester are immutable once enrollments may reference the subject.
type UpdateSubjectRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Credits   int     `json:"credits" validate:"required,min=1,max=10"`
	TeacherID *string `json:"teacher_id" validate:"omitempty,uuid"`
	Active    *bool   `json:"active"`
}

// SubjectService orchestrates subject operations.
type SubjectService struct {
	repo      subjectRepository
	courses   subjectCourseRepository
	teachers  subjectTeacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(repo subjectRepository, courses subjectCourseRepository, teachers subjectTeacherRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, courses: courses, teachers: teachers, validator: validate, logger: logger}
}

// List returns subjects plus pagination data.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, *models.Pagination, error) {
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
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
	return subjects, pagination, nil
}

// Get returns a subject by id with course and teacher context.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.SubjectDetail, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// ListByTeacher returns the active subjects assigned to a teacher.
func (s *SubjectService) ListByTeacher(ctx context.Context, teacherID string) ([]models.SubjectDetail, error) {
	subjects, err := s.repo.ListActiveByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher subjects")
	}
	return subjects, nil
}

// ListByStudent returns the subjects a student is actively enrolled in.
func (s *SubjectService) ListByStudent(ctx context.Context, studentID string) ([]models.SubjectDetail, error) {
	subjects, err := s.repo.ListEnrolledByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student subjects")
	}
	return subjects, nil
}

// Create registers a new subject under a course. Creating a subject does
// not retroactively enroll existing students.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if req.Semester > course.DurationSemesters {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester exceeds course duration")
	}

	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.repo.ExistsByCode(ctx, code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already used")
	}

	subject := &models.Subject{
		Code:      code,
		Name:      strings.TrimSpace(req.Name),
		Credits:   req.Credits,
		CourseID:  req.CourseID,
		Semester:  req.Semester,
		TeacherID: req.TeacherID,
		Active:    true,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return subject, nil
}

// Update modifies an existing subject, including teacher reassignment.
func (s *SubjectService) Update(ctx context.Context, id string, req UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	subject := detail.Subject
	subject.Name = strings.TrimSpace(req.Name)
	subject.Credits = req.Credits
	subject.TeacherID = req.TeacherID
	if req.Active != nil {
		subject.Active = *req.Active
	}

	if err := s.repo.Update(ctx, &subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	return &subject, nil
}

// Deactivate marks a subject inactive. Existing enrollments, attendance
// and results stay intact.
func (s *SubjectService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate subject")
	}
	return nil
}

func (s *SubjectService) checkTeacher(ctx context.Context, teacherID *string) error {
	if teacherID == nil {
		return nil
	}
	teacher, err := s.teachers.FindByID(ctx, *teacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !teacher.Active {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher is inactive")
	}
	return nil
}
