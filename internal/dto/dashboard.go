package dto

import "github.com/srisai/college-api/internal/models"

// AdminDashboardResponse carries the admin landing-page aggregates.
type AdminDashboardResponse struct {
	TotalStudents       int                   `json:"total_students"`
	TotalTeachers       int                   `json:"total_teachers"`
	TotalCourses        int                   `json:"total_courses"`
	TotalSubjects       int                   `json:"total_subjects"`
	RecentAnnouncements []models.Announcement `json:"recent_announcements"`
	UpcomingExams       []models.ExamDetail   `json:"upcoming_exams"`
}

// TeacherDashboardResponse summarises a teacher's workload.
type TeacherDashboardResponse struct {
	Teacher             models.Teacher         `json:"teacher"`
	AssignedSubjects    []models.SubjectDetail `json:"assigned_subjects"`
	ScheduledExams      []models.ExamDetail    `json:"scheduled_exams"`
	TotalStudents       int                    `json:"total_students"`
	RecentAnnouncements []models.Announcement  `json:"recent_announcements"`
}

// StudentDashboardResponse summarises a student's standing.
type StudentDashboardResponse struct {
	Student             models.StudentDetail   `json:"student"`
	EnrolledSubjects    []models.SubjectDetail `json:"enrolled_subjects"`
	UpcomingExams       []models.ExamDetail    `json:"upcoming_exams"`
	RecentResults       []models.ResultDetail  `json:"recent_results"`
	OverallAttendance   float64                `json:"overall_attendance"`
	RecentAnnouncements []models.Announcement  `json:"recent_announcements"`
}
