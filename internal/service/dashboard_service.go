package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/srisai/college-api/internal/dto"
	"github.com/srisai/college-api/internal/models"
	"github.com/srisai/college-api/internal/repository"
	appErrors "github.com/srisai/college-api/pkg/errors"
)

const (
	dashboardTakeLimit  = 5
	adminDashboardKey   = "dashboard:admin"
	dashboardKeyPattern = "dashboard:*"
	defaultDashboardTTL = 5 * time.Minute
)

type dashboardCountRepository interface {
	CountActive(ctx context.Context) (*repository.ActiveCounts, error)
}

type dashboardAnnouncementRepository interface {
	ListRecentActive(ctx context.Context, limit int) ([]models.Announcement, error)
}

type dashboardExamRepository interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, int, error)
	ListUpcoming(ctx context.Context, limit int) ([]models.ExamDetail, error)
	ListUpcomingForStudent(ctx context.Context, studentID string, limit int) ([]models.ExamDetail, error)
}

type dashboardTeacherRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Teacher, error)
}

type dashboardStudentRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.StudentDetail, error)
	CountDistinctBySubjects(ctx context.Context, subjectIDs []string) (int, error)
}

type dashboardSubjectRepository interface {
	ListActiveByTeacher(ctx context.Context, teacherID string) ([]models.SubjectDetail, error)
	ListEnrolledByStudent(ctx context.Context, studentID string) ([]models.SubjectDetail, error)
}

type dashboardResultRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ResultDetail, error)
}

type dashboardAttendanceRepository interface {
	StudentSummary(ctx context.Context, studentID string) (total int, present int, err error)
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Counts        dashboardCountRepository
	Announcements dashboardAnnouncementRepository
	Exams         dashboardExamRepository
	Teachers      dashboardTeacherRepository
	Students      dashboardStudentRepository
	Subjects      dashboardSubjectRepository
	Results       dashboardResultRepository
	Attendance    dashboardAttendanceRepository
	Cache         *CacheService
	Logger        *zap.Logger
	CacheTTL      time.Duration
}

// DashboardService composes the role-specific landing-page payloads.
type DashboardService struct {
	counts        dashboardCountRepository
	announcements dashboardAnnouncementRepository
	exams         dashboardExamRepository
	teachers      dashboardTeacherRepository
	students      dashboardStudentRepository
	subjects      dashboardSubjectRepository
	results       dashboardResultRepository
	attendance    dashboardAttendanceRepository
	cache         *CacheService
	logger        *zap.Logger
	cacheTTL      time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = defaultDashboardTTL
	}
	return &DashboardService{
		counts:        params.Counts,
		announcements: params.Announcements,
		exams:         params.Exams,
		teachers:      params.Teachers,
		students:      params.Students,
		subjects:      params.Subjects,
		results:       params.Results,
		attendance:    params.Attendance,
		cache:         params.Cache,
		logger:        logger,
		cacheTTL:      ttl,
	}
}

// Admin returns the admin dashboard: active-entity counts, the five most
// recent unexpired announcements and the five soonest upcoming exams.
// The payload is cached with a short TTL.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	var cached dto.AdminDashboardResponse
	if hit, _ := s.cache.Get(ctx, adminDashboardKey, &cached); hit {
		return &cached, nil
	}

	counts, err := s.counts.CountActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard counts")
	}
	announcements, err := s.announcements.ListRecentActive(ctx, dashboardTakeLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent announcements")
	}
	exams, err := s.exams.ListUpcoming(ctx, dashboardTakeLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upcoming exams")
	}

	resp := &dto.AdminDashboardResponse{
		TotalStudents:       counts.Students,
		TotalTeachers:       counts.Teachers,
		TotalCourses:        counts.Courses,
		TotalSubjects:       counts.Subjects,
		RecentAnnouncements: announcements,
		UpcomingExams:       exams,
	}
	if err := s.cache.Set(ctx, adminDashboardKey, resp, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache admin dashboard", zap.Error(err))
	}
	return resp, nil
}

// Teacher returns the teacher dashboard resolved from the login email.
func (s *DashboardService) Teacher(ctx context.Context, email string) (*dto.TeacherDashboardResponse, error) {
	teacher, err := s.teachers.FindByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
	}

	subjects, err := s.subjects.ListActiveByTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assigned subjects")
	}

	exams, _, err := s.exams.List(ctx, models.ExamFilter{
		TeacherID:  teacher.ID,
		FutureOnly: true,
		PageSize:   dashboardTakeLimit,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduled exams")
	}

	subjectIDs := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		subjectIDs = append(subjectIDs, subject.ID)
	}
	totalStudents := 0
	if len(subjectIDs) > 0 {
		totalStudents, err = s.students.CountDistinctBySubjects(ctx, subjectIDs)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrolled students")
		}
	}

	announcements, err := s.announcements.ListRecentActive(ctx, dashboardTakeLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent announcements")
	}

	return &dto.TeacherDashboardResponse{
		Teacher:             *teacher,
		AssignedSubjects:    subjects,
		ScheduledExams:      exams,
		TotalStudents:       totalStudents,
		RecentAnnouncements: announcements,
	}, nil
}

// Student returns the student dashboard resolved from the login email.
func (s *DashboardService) Student(ctx context.Context, email string) (*dto.StudentDashboardResponse, error) {
	student, err := s.students.FindByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	subjects, err := s.subjects.ListEnrolledByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrolled subjects")
	}

	exams, err := s.exams.ListUpcomingForStudent(ctx, student.ID, dashboardTakeLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upcoming exams")
	}

	results, err := s.results.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent results")
	}
	if len(results) > dashboardTakeLimit {
		results = results[:dashboardTakeLimit]
	}

	total, present, err := s.attendance.StudentSummary(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance summary")
	}

	announcements, err := s.announcements.ListRecentActive(ctx, dashboardTakeLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent announcements")
	}

	return &dto.StudentDashboardResponse{
		Student:             *student,
		EnrolledSubjects:    subjects,
		UpcomingExams:       exams,
		RecentResults:       results,
		OverallAttendance:   attendancePercentage(present, total),
		RecentAnnouncements: announcements,
	}, nil
}

// InvalidateCache drops every cached dashboard payload. Called after
// mutations that change the counts or the recent listings.
func (s *DashboardService) InvalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardKeyPattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
