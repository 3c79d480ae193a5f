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

const teacherCodeSequence = "teacher_code"

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindByEmail(ctx context.Context, email string) (*models.Teacher, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher, user *models.User) error
	Update(ctx context.Context, teacher *models.Teacher) error
	SetActive(ctx context.Context, id string, active bool) error
}

type sequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

// CreateTeacherRequest represents payload for registering teachers. The
// admin supplies the initial password; the teacher code is assigned from
// a sequence, never from input.
type CreateTeacherRequest struct {
	FullName        string    `json:"full_name" validate:"required,max=200"`
	Email           string    `json:"email" validate:"required,email"`
	Password        string    `json:"password" validate:"required,min=6"`
	Phone           string    `json:"phone" validate:"required,max=20"`
	Qualification   string    `json:"qualification" validate:"required,max=200"`
	Department      string    `json:"department" validate:"required,max=100"`
	JoiningDate     time.Time `json:"joining_date" validate:"required"`
	ExperienceYears int       `json:"experience_years" validate:"min=0,max=60"`
	Salary          float64   `json:"salary" validate:"min=0"`
}

// UpdateTeacherRequest represents payload for updating teachers. Email and
// teacher code are immutable.
type UpdateTeacherRequest struct {
	FullName        string  `json:"full_name" validate:"required,max=200"`
	Phone           string  `json:"phone" validate:"required,max=20"`
	Qualification   string  `json:"qualification" validate:"required,max=200"`
	Department      string  `json:"department" validate:"required,max=100"`
	ExperienceYears int     `json:"experience_years" validate:"min=0,max=60"`
	Salary          float64 `json:"salary" validate:"min=0"`
	Active          *bool   `json:"active"`
}

// TeacherService orchestrates teacher profile and account operations.
type TeacherService struct {
	repo      teacherRepository
	sequences sequenceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, sequences sequenceRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, sequences: sequences, validator: validate, logger: logger}
}

// List returns teachers plus pagination data.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
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
	return teachers, pagination, nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// GetByEmail resolves a teacher profile from a login email.
func (s *TeacherService) GetByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a teacher profile together with its login account in
// one transaction. The code is reserved from the teacher sequence before
// insert so two concurrent registrations can never collide.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	seq, err := s.sequences.Next(ctx, teacherCodeSequence)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reserve teacher code")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.RoleTeacher,
		Active:       true,
	}

	teacher := &models.Teacher{
		TeacherCode:     fmt.Sprintf("T%03d", seq),
		FullName:        user.FullName,
		Email:           email,
		Phone:           strings.TrimSpace(req.Phone),
		Qualification:   strings.TrimSpace(req.Qualification),
		Department:      strings.TrimSpace(req.Department),
		JoiningDate:     req.JoiningDate,
		ExperienceYears: req.ExperienceYears,
		Salary:          req.Salary,
		Active:          true,
	}
	if err := s.repo.Create(ctx, teacher, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// Update modifies an existing teacher profile.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	teacher.FullName = strings.TrimSpace(req.FullName)
	teacher.Phone = strings.TrimSpace(req.Phone)
	teacher.Qualification = strings.TrimSpace(req.Qualification)
	teacher.Department = strings.TrimSpace(req.Department)
	teacher.ExperienceYears = req.ExperienceYears
	teacher.Salary = req.Salary
	if req.Active != nil {
		teacher.Active = *req.Active
	}

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return teacher, nil
}

// Deactivate marks a teacher inactive. Subject assignments stay in place
// until reassigned.
func (s *TeacherService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate teacher")
	}
	return nil
}
