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

type mockStudentRepo struct {
	students    map[string]*models.StudentDetail
	enrollments map[string][]string
	users       []models.User
	createErr   error
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	var list []models.StudentDetail
	for _, st := range m.students {
		list = append(list, *st)
	}
	return list, len(list), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if st, ok := m.students[id]; ok {
		return st, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) FindByEmail(ctx context.Context, email string) (*models.StudentDetail, error) {
	for _, st := range m.students {
		if st.Email == email {
			return st, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (m *mockStudentRepo) CreateWithEnrollments(ctx context.Context, student *models.Student, user *models.User, subjectIDs []string) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.students == nil {
		m.students = make(map[string]*models.StudentDetail)
	}
	if m.enrollments == nil {
		m.enrollments = make(map[string][]string)
	}
	student.ID = "stu-" + student.StudentCode
	user.ID = "user-" + user.Email
	m.students[student.ID] = &models.StudentDetail{Student: *student}
	m.enrollments[student.ID] = subjectIDs
	m.users = append(m.users, *user)
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if st, ok := m.students[student.ID]; ok {
		st.Student = *student
	}
	return nil
}

func (m *mockStudentRepo) SetActive(ctx context.Context, id string, active bool) error {
	if st, ok := m.students[id]; ok {
		st.Active = active
	}
	return nil
}

func (m *mockStudentRepo) CountDistinctBySubjects(ctx context.Context, subjectIDs []string) (int, error) {
	return len(m.students), nil
}

type mockCourseReader struct {
	courses map[string]*models.Course
}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if course, ok := m.courses[id]; ok {
		return course, nil
	}
	return nil, sql.ErrNoRows
}

type mockSubjectLister struct {
	subjects []models.Subject
}

func (m *mockSubjectLister) ListActiveByCourseSemester(ctx context.Context, courseID string, semester int) ([]models.Subject, error) {
	var list []models.Subject
	for _, subject := range m.subjects {
		if subject.CourseID == courseID && subject.Semester == semester && subject.Active {
			list = append(list, subject)
		}
	}
	return list, nil
}

type mockSequenceRepo struct {
	counters map[string]int64
}

func (m *mockSequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	m.counters[name]++
	return m.counters[name], nil
}

const courseID = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"

func studentFixtures() (*mockStudentRepo, *mockCourseReader, *mockSubjectLister, *mockSequenceRepo) {
	repo := &mockStudentRepo{}
	courses := &mockCourseReader{courses: map[string]*models.Course{
		courseID: {ID: courseID, Code: "BCA", Name: "Bachelor of Computer Applications", DurationSemesters: 6, Active: true},
	}}
	subjects := &mockSubjectLister{subjects: []models.Subject{
		{ID: "sub1", CourseID: courseID, Semester: 3, Active: true},
		{ID: "sub2", CourseID: courseID, Semester: 3, Active: true},
		{ID: "sub3", CourseID: courseID, Semester: 3, Active: false},
		{ID: "sub4", CourseID: courseID, Semester: 4, Active: true},
	}}
	sequences := &mockSequenceRepo{}
	return repo, courses, subjects, sequences
}

func validStudentRequest() CreateStudentRequest {
	return CreateStudentRequest{
		FullName:      "Asha Verma",
		Email:         "asha.verma@example.com",
		Password:      "secret123",
		Phone:         "9876543210",
		DateOfBirth:   time.Date(2004, 6, 15, 0, 0, 0, 0, time.UTC),
		Gender:        "FEMALE",
		Address:       "12 College Road",
		CourseID:      courseID,
		Semester:      3,
		AdmissionDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestStudentServiceCreateAutoEnrolls(t *testing.T) {
	repo, courses, subjects, sequences := studentFixtures()
	svc := NewStudentService(repo, courses, subjects, sequences, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	// only active subjects of (course, semester) at creation time
	assert.ElementsMatch(t, []string{"sub1", "sub2"}, repo.enrollments[student.ID])

	require.Len(t, repo.users, 1)
	assert.Equal(t, models.RoleStudent, repo.users[0].Role)
	assert.Equal(t, "asha.verma@example.com", repo.users[0].Email)
	assert.NotEqual(t, "secret123", repo.users[0].PasswordHash)
}

func TestStudentServiceCodeSequence(t *testing.T) {
	repo, courses, subjects, sequences := studentFixtures()
	svc := NewStudentService(repo, courses, subjects, sequences, validator.New(), zap.NewNop())

	first, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)
	assert.Equal(t, "SSC20240001", first.StudentCode)

	second := validStudentRequest()
	second.Email = "ravi.kumar@example.com"
	student, err := svc.Create(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, "SSC20240002", student.StudentCode)

	// a different admission year starts its own counter
	third := validStudentRequest()
	third.Email = "meera.nair@example.com"
	third.AdmissionDate = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	student, err = svc.Create(context.Background(), third)
	require.NoError(t, err)
	assert.Equal(t, "SSC20250001", student.StudentCode)
}

func TestStudentServiceDuplicateEmail(t *testing.T) {
	repo, courses, subjects, sequences := studentFixtures()
	svc := NewStudentService(repo, courses, subjects, sequences, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validStudentRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.users, 1)
}

func TestStudentServiceCreateFailureLeavesNoAccount(t *testing.T) {
	repo, courses, subjects, sequences := studentFixtures()
	repo.createErr = errors.New("insert students: connection reset")
	svc := NewStudentService(repo, courses, subjects, sequences, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validStudentRequest())
	require.Error(t, err)

	// registration is one transaction: no orphaned login account
	assert.Empty(t, repo.users)
	assert.Empty(t, repo.students)
}

func TestStudentServiceSemesterBeyondDuration(t *testing.T) {
	repo, courses, subjects, sequences := studentFixtures()
	svc := NewStudentService(repo, courses, subjects, sequences, validator.New(), zap.NewNop())

	req := validStudentRequest()
	req.Semester = 7
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceInactiveCourse(t *testing.T) {
	repo, courses, subjects, sequences := studentFixtures()
	courses.courses[courseID].Active = false
	svc := NewStudentService(repo, courses, subjects, sequences, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validStudentRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceSemesterAdvanceKeepsEnrollments(t *testing.T) {
	repo, courses, subjects, sequences := studentFixtures()
	svc := NewStudentService(repo, courses, subjects, sequences, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)
	before := repo.enrollments[student.ID]

	_, err = svc.Update(context.Background(), student.ID, UpdateStudentRequest{
		FullName: student.FullName,
		Phone:    student.Phone,
		Address:  student.Address,
		Semester: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, before, repo.enrollments[student.ID])
	assert.Equal(t, 4, repo.students[student.ID].Semester)
}
