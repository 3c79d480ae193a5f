package models

import "time"

// Subject belongs to exactly one course and semester, optionally taught by
// one teacher.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Credits   int       `db:"credits" json:"credits"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Semester  int       `db:"semester" json:"semester"`
	TeacherID *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectDetail enriches Subject with course and teacher context.
type SubjectDetail struct {
	Subject
	CourseName  string  `db:"course_name" json:"course_name"`
	CourseCode  string  `db:"course_code" json:"course_code"`
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// SubjectFilter provides filters for listing subjects.
type SubjectFilter struct {
	CourseID  string
	TeacherID string
	Semester  int
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
