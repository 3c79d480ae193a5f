package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/srisai/college-api/internal/models"
	"github.com/srisai/college-api/pkg/database"
	appErrors "github.com/srisai/college-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	FindByEmail(ctx context.Context, email string) (*models.StudentDetail, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateWithEnrollments(ctx context.Context, student *models.Student, user *models.User, subjectIDs []string) error
	Update(ctx context.Context, student *models.Student) error
	SetActive(ctx context.Context, id string, active bool) error
}

type studentCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type studentSubjectRepository interface {
	ListActiveByCourseSemester(ctx context.Context, courseID string, semester int) ([]models.Subject, error)
}

// CreateStudentRequest represents payload for registering students. The
// student code is assigned from the per-year admissions sequence.
type CreateStudentRequest struct {
	FullName      string    `json:"full_name" validate:"required,max=200"`
	Email         string    `json:"email" validate:"required,email"`
	Password      string    `json:"password" validate:"required,min=6"`
	Phone         string    `json:"phone" validate:"required,max=20"`
	DateOfBirth   time.Time `json:"date_of_birth" validate:"required"`
	Gender        string    `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	Address       string    `json:"address" validate:"required,max=500"`
	CourseID      string    `json:"course_id" validate:"required,uuid"`
	Semester      int       `json:"semester" validate:"required,min=1,max=12"`
	AdmissionDate time.Time `json:"admission_date"`
}

// UpdateStudentRequest represents payload for updating students. Email,
// student code and course are immutable; semester can advance without
// touching existing enrollments.
type UpdateStudentRequest struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"required,max=20"`
	Address  string `json:"address" validate:"required,max=500"`
	Semester int    `json:"semester" validate:"required,min=1,max=12"`
	Active   *bool  `json:"active"`
}

// StudentService orchestrates student profile, account and enrollment
// operations.
type StudentService struct {
	repo      studentRepository
	courses   studentCourseRepository
	subjects  studentSubjectRepository
	sequences sequenceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, courses studentCourseRepository, subjects studentSubjectRepository, sequences sequenceRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:      repo,
		courses:   courses,
		subjects:  subjects,
		sequences: sequences,
		validator: validate,
		logger:    logger,
	}
}

// List returns students plus pagination data.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
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
	return students, pagination, nil
}

// Get returns a student by id with course context.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// GetByEmail resolves a student profile from a login email.
func (s *StudentService) GetByEmail(ctx context.Context, email string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a student profile with its login account and enrolls
// the student into every active subject matching the course and semester.
// Account, profile and enrollments land in one transaction; enrollment
// happens only here, later subject or semester changes do not rewrite
// the roster.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "course is inactive")
	}
	if req.Semester > course.DurationSemesters {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester exceeds course duration")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	admission := req.AdmissionDate
	if admission.IsZero() {
		admission = time.Now().UTC()
	}

	code, err := s.nextStudentCode(ctx, admission.Year())
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.RoleStudent,
		Active:       true,
	}

	subjects, err := s.subjects.ListActiveByCourseSemester(ctx, req.CourseID, req.Semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve subjects for enrollment")
	}
	subjectIDs := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		subjectIDs = append(subjectIDs, subject.ID)
	}

	student := &models.Student{
		StudentCode:   code,
		FullName:      user.FullName,
		Email:         email,
		Phone:         strings.TrimSpace(req.Phone),
		DateOfBirth:   req.DateOfBirth,
		Gender:        req.Gender,
		Address:       strings.TrimSpace(req.Address),
		CourseID:      req.CourseID,
		Semester:      req.Semester,
		AdmissionDate: admission,
		Active:        true,
	}
	if err := s.repo.CreateWithEnrollments(ctx, student, user, subjectIDs); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.logger.Info("student registered",
		zap.String("student_code", student.StudentCode),
		zap.Int("enrolled_subjects", len(subjectIDs)))
	return student, nil
}

// Update modifies an existing student profile.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	student := detail.Student
	student.FullName = strings.TrimSpace(req.FullName)
	student.Phone = strings.TrimSpace(req.Phone)
	student.Address = strings.TrimSpace(req.Address)
	student.Semester = req.Semester
	if req.Active != nil {
		student.Active = *req.Active
	}

	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return &student, nil
}

// Deactivate marks a student inactive. Historical attendance and results
// are retained.
func (s *StudentService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate student")
	}
	return nil
}

// nextStudentCode reserves the next admission number for the year and
// formats it as SSC<year><number>, zero-padded to four digits.
func (s *StudentService) nextStudentCode(ctx context.Context, year int) (string, error) {
	seq, err := s.sequences.Next(ctx, fmt.Sprintf("student_code_%d", year))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reserve student code")
	}
	return fmt.Sprintf("SSC%d%04d", year, seq), nil
}
