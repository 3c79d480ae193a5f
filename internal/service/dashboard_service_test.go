package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srisai/college-api/internal/models"
	"github.com/srisai/college-api/internal/repository"
	appErrors "github.com/srisai/college-api/pkg/errors"
)

type fakeDashCounts struct {
	counts repository.ActiveCounts
	calls  int
}

func (f *fakeDashCounts) CountActive(ctx context.Context) (*repository.ActiveCounts, error) {
	f.calls++
	counts := f.counts
	return &counts, nil
}

type fakeDashAnnouncements struct {
	items    []models.Announcement
	gotLimit int
}

func (f *fakeDashAnnouncements) ListRecentActive(ctx context.Context, limit int) ([]models.Announcement, error) {
	f.gotLimit = limit
	if len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

type fakeDashExams struct {
	upcoming   []models.ExamDetail
	forTeacher []models.ExamDetail
	forStudent []models.ExamDetail
	gotFilter  models.ExamFilter
}

func (f *fakeDashExams) List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, int, error) {
	f.gotFilter = filter
	return f.forTeacher, len(f.forTeacher), nil
}

func (f *fakeDashExams) ListUpcoming(ctx context.Context, limit int) ([]models.ExamDetail, error) {
	if len(f.upcoming) > limit {
		return f.upcoming[:limit], nil
	}
	return f.upcoming, nil
}

func (f *fakeDashExams) ListUpcomingForStudent(ctx context.Context, studentID string, limit int) ([]models.ExamDetail, error) {
	if len(f.forStudent) > limit {
		return f.forStudent[:limit], nil
	}
	return f.forStudent, nil
}

type fakeDashTeachers struct {
	byEmail map[string]*models.Teacher
}

func (f *fakeDashTeachers) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	if teacher, ok := f.byEmail[email]; ok {
		return teacher, nil
	}
	return nil, sql.ErrNoRows
}

type fakeDashStudents struct {
	byEmail       map[string]*models.StudentDetail
	distinctCount int
	gotSubjectIDs []string
	countCalls    int
}

func (f *fakeDashStudents) FindByEmail(ctx context.Context, email string) (*models.StudentDetail, error) {
	if student, ok := f.byEmail[email]; ok {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeDashStudents) CountDistinctBySubjects(ctx context.Context, subjectIDs []string) (int, error) {
	f.countCalls++
	f.gotSubjectIDs = subjectIDs
	return f.distinctCount, nil
}

type fakeDashSubjects struct {
	byTeacher []models.SubjectDetail
	byStudent []models.SubjectDetail
}

func (f *fakeDashSubjects) ListActiveByTeacher(ctx context.Context, teacherID string) ([]models.SubjectDetail, error) {
	return f.byTeacher, nil
}

func (f *fakeDashSubjects) ListEnrolledByStudent(ctx context.Context, studentID string) ([]models.SubjectDetail, error) {
	return f.byStudent, nil
}

type fakeDashResults struct {
	results []models.ResultDetail
}

func (f *fakeDashResults) ListByStudent(ctx context.Context, studentID string) ([]models.ResultDetail, error) {
	return f.results, nil
}

type fakeDashAttendance struct {
	total   int
	present int
}

func (f *fakeDashAttendance) StudentSummary(ctx context.Context, studentID string) (int, int, error) {
	return f.total, f.present, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func dashboardFixtureParams(cache *CacheService) (DashboardServiceParams, *fakeDashCounts, *fakeDashAnnouncements, *fakeDashExams, *fakeDashStudents) {
	counts := &fakeDashCounts{counts: repository.ActiveCounts{
		Students: 120, Teachers: 8, Courses: 4, Subjects: 32, Exams: 6, Announcements: 3,
	}}
	announcements := &fakeDashAnnouncements{items: []models.Announcement{
		{ID: "ann1", Title: "Semester exams", Category: "exam", Active: true},
		{ID: "ann2", Title: "Holiday notice", Category: "holiday", Active: true},
	}}
	exams := &fakeDashExams{
		upcoming: []models.ExamDetail{
			{Exam: models.Exam{ID: "exam1", Name: "Midterm"}, SubjectName: "Databases"},
		},
		forTeacher: []models.ExamDetail{
			{Exam: models.Exam{ID: "exam2", Name: "Unit test"}, SubjectName: "Networks"},
		},
		forStudent: []models.ExamDetail{
			{Exam: models.Exam{ID: "exam3", Name: "Final"}, SubjectName: "Operating Systems"},
		},
	}
	teachers := &fakeDashTeachers{byEmail: map[string]*models.Teacher{
		"priya.sharma@example.com": {ID: "teach1", TeacherCode: "T001", FullName: "Priya Sharma", Email: "priya.sharma@example.com"},
	}}
	students := &fakeDashStudents{
		byEmail: map[string]*models.StudentDetail{
			"ravi.kumar@example.com": {Student: models.Student{ID: "stu1", StudentCode: "SSC20240001", FullName: "Ravi Kumar"}},
		},
		distinctCount: 54,
	}
	subjects := &fakeDashSubjects{
		byTeacher: []models.SubjectDetail{
			{Subject: models.Subject{ID: "sub1", Name: "Databases"}},
			{Subject: models.Subject{ID: "sub2", Name: "Networks"}},
		},
		byStudent: []models.SubjectDetail{
			{Subject: models.Subject{ID: "sub1", Name: "Databases"}},
		},
	}
	results := &fakeDashResults{}
	for i := 0; i < 7; i++ {
		results.results = append(results.results, models.ResultDetail{
			Result: models.Result{ID: "res" + string(rune('a'+i)), StudentID: "stu1"},
		})
	}
	attendance := &fakeDashAttendance{total: 10, present: 8}

	params := DashboardServiceParams{
		Counts:        counts,
		Announcements: announcements,
		Exams:         exams,
		Teachers:      teachers,
		Students:      students,
		Subjects:      subjects,
		Results:       results,
		Attendance:    attendance,
		Cache:         cache,
		Logger:        zap.NewNop(),
	}
	return params, counts, announcements, exams, students
}

func disabledCache() *CacheService {
	return NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
}

func TestDashboardAdmin(t *testing.T) {
	params, _, announcements, _, _ := dashboardFixtureParams(disabledCache())
	svc := NewDashboardService(params)

	resp, err := svc.Admin(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 120, resp.TotalStudents)
	assert.Equal(t, 8, resp.TotalTeachers)
	assert.Equal(t, 4, resp.TotalCourses)
	assert.Equal(t, 32, resp.TotalSubjects)
	assert.Len(t, resp.RecentAnnouncements, 2)
	assert.Len(t, resp.UpcomingExams, 1)
	assert.Equal(t, 5, announcements.gotLimit)
}

func TestDashboardAdminCaching(t *testing.T) {
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, zap.NewNop(), true)
	params, counts, _, _, _ := dashboardFixtureParams(cache)
	svc := NewDashboardService(params)

	first, err := svc.Admin(context.Background())
	require.NoError(t, err)
	second, err := svc.Admin(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, counts.calls)
	assert.Equal(t, first.TotalStudents, second.TotalStudents)

	svc.InvalidateCache(context.Background())

	_, err = svc.Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts.calls)
}

func TestDashboardTeacher(t *testing.T) {
	params, _, _, exams, students := dashboardFixtureParams(disabledCache())
	svc := NewDashboardService(params)

	resp, err := svc.Teacher(context.Background(), "priya.sharma@example.com")
	require.NoError(t, err)

	assert.Equal(t, "T001", resp.Teacher.TeacherCode)
	assert.Len(t, resp.AssignedSubjects, 2)
	assert.Len(t, resp.ScheduledExams, 1)
	assert.Equal(t, 54, resp.TotalStudents)
	assert.ElementsMatch(t, []string{"sub1", "sub2"}, students.gotSubjectIDs)
	assert.Equal(t, "teach1", exams.gotFilter.TeacherID)
	assert.True(t, exams.gotFilter.FutureOnly)
	assert.Equal(t, 5, exams.gotFilter.PageSize)
}

func TestDashboardTeacherWithoutSubjects(t *testing.T) {
	params, _, _, _, students := dashboardFixtureParams(disabledCache())
	params.Subjects = &fakeDashSubjects{}
	svc := NewDashboardService(params)

	resp, err := svc.Teacher(context.Background(), "priya.sharma@example.com")
	require.NoError(t, err)

	assert.Zero(t, resp.TotalStudents)
	assert.Zero(t, students.countCalls)
}

func TestDashboardTeacherUnknownEmail(t *testing.T) {
	params, _, _, _, _ := dashboardFixtureParams(disabledCache())
	svc := NewDashboardService(params)

	_, err := svc.Teacher(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDashboardStudent(t *testing.T) {
	params, _, _, _, _ := dashboardFixtureParams(disabledCache())
	svc := NewDashboardService(params)

	resp, err := svc.Student(context.Background(), "ravi.kumar@example.com")
	require.NoError(t, err)

	assert.Equal(t, "SSC20240001", resp.Student.StudentCode)
	assert.Len(t, resp.EnrolledSubjects, 1)
	assert.Len(t, resp.UpcomingExams, 1)
	assert.Len(t, resp.RecentResults, 5)
	assert.InDelta(t, 80.0, resp.OverallAttendance, 0.01)
	assert.Len(t, resp.RecentAnnouncements, 2)
}

func TestDashboardStudentUnknownEmail(t *testing.T) {
	params, _, _, _, _ := dashboardFixtureParams(disabledCache())
	svc := NewDashboardService(params)

	_, err := svc.Student(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
