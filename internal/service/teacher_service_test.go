package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srisai/college-api/internal/models"
	appErrors "github.com/srisai/college-api/pkg/errors"
)

type mockTeacherRepo struct {
	teachers  map[string]*models.Teacher
	users     []models.User
	createErr error
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	var list []models.Teacher
	for _, teacher := range m.teachers {
		list = append(list, *teacher)
	}
	return list, len(list), nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if teacher, ok := m.teachers[id]; ok {
		return teacher, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	for _, teacher := range m.teachers {
		if teacher.Email == email {
			return teacher, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.teachers == nil {
		m.teachers = make(map[string]*models.Teacher)
	}
	teacher.ID = "teach-" + teacher.TeacherCode
	user.ID = "user-" + user.Email
	m.teachers[teacher.ID] = teacher
	m.users = append(m.users, *user)
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	m.teachers[teacher.ID] = teacher
	return nil
}

func (m *mockTeacherRepo) SetActive(ctx context.Context, id string, active bool) error {
	if teacher, ok := m.teachers[id]; ok {
		teacher.Active = active
	}
	return nil
}

func validTeacherRequest() CreateTeacherRequest {
	return CreateTeacherRequest{
		FullName:        "Dr. Priya Sharma",
		Email:           "Priya.Sharma@Example.com",
		Password:        "secret123",
		Phone:           "9812345678",
		Qualification:   "PhD Computer Science",
		Department:      "Computer Science",
		JoiningDate:     time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC),
		ExperienceYears: 8,
		Salary:          65000,
	}
}

func TestTeacherServiceCreateAssignsCode(t *testing.T) {
	repo := &mockTeacherRepo{}
	sequences := &mockSequenceRepo{}
	svc := NewTeacherService(repo, sequences, validator.New(), zap.NewNop())

	first, err := svc.Create(context.Background(), validTeacherRequest())
	require.NoError(t, err)
	assert.Equal(t, "T001", first.TeacherCode)
	assert.Equal(t, "priya.sharma@example.com", first.Email)

	second := validTeacherRequest()
	second.Email = "arun.menon@example.com"
	teacher, err := svc.Create(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, "T002", teacher.TeacherCode)

	require.Len(t, repo.users, 2)
	assert.Equal(t, models.RoleTeacher, repo.users[0].Role)
}

func TestTeacherServiceDuplicateEmail(t *testing.T) {
	repo := &mockTeacherRepo{}
	sequences := &mockSequenceRepo{}
	svc := NewTeacherService(repo, sequences, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validTeacherRequest())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validTeacherRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.users, 1)
}

func TestTeacherServiceCreateFailureLeavesNoAccount(t *testing.T) {
	repo := &mockTeacherRepo{}
	repo.createErr = errors.New("insert teachers: connection reset")
	sequences := &mockSequenceRepo{}
	svc := NewTeacherService(repo, sequences, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validTeacherRequest())
	require.Error(t, err)

	// registration is one transaction: no orphaned login account
	assert.Empty(t, repo.users)
	assert.Empty(t, repo.teachers)
}

func TestTeacherServiceUpdateKeepsEmailAndCode(t *testing.T) {
	repo := &mockTeacherRepo{}
	sequences := &mockSequenceRepo{}
	svc := NewTeacherService(repo, sequences, validator.New(), zap.NewNop())

	teacher, err := svc.Create(context.Background(), validTeacherRequest())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), teacher.ID, UpdateTeacherRequest{
		FullName:        "Dr. Priya Sharma-Rao",
		Phone:           "9812345679",
		Qualification:   teacher.Qualification,
		Department:      "Information Technology",
		ExperienceYears: 9,
		Salary:          70000,
	})
	require.NoError(t, err)
	assert.Equal(t, "T001", updated.TeacherCode)
	assert.Equal(t, "priya.sharma@example.com", updated.Email)
	assert.Equal(t, "Information Technology", updated.Department)
}

func TestTeacherServiceDeactivate(t *testing.T) {
	repo := &mockTeacherRepo{}
	sequences := &mockSequenceRepo{}
	svc := NewTeacherService(repo, sequences, validator.New(), zap.NewNop())

	teacher, err := svc.Create(context.Background(), validTeacherRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), teacher.ID))
	assert.False(t, repo.teachers[teacher.ID].Active)

	err = svc.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
