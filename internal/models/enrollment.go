package models

import "time"

// Enrollment authorizes a student to appear on a subject's roster for
// attendance and results. Rows are created automatically at profile
// creation for every active subject matching the student's course and
// semester, and are never removed automatically.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
	Active     bool      `db:"active" json:"active"`
}

// EnrollmentDetail enriches Enrollment with student and subject info.
type EnrollmentDetail struct {
	Enrollment
	StudentName string  `db:"student_name" json:"student_name"`
	StudentCode string  `db:"student_code" json:"student_code"`
	SubjectName string  `db:"subject_name" json:"subject_name"`
	SubjectCode string  `db:"subject_code" json:"subject_code"`
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	SubjectID string
	Active    *bool
	Page      int
	PageSize  int
}
