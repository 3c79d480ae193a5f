package models

import "time"

// Student represents a learner registered in the institution.
type Student struct {
	ID            string    `db:"id" json:"id"`
	StudentCode   string    `db:"student_code" json:"student_code"`
	FullName      string    `db:"full_name" json:"full_name"`
	Email         string    `db:"email" json:"email"`
	Phone         string    `db:"phone" json:"phone"`
	DateOfBirth   time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender        string    `db:"gender" json:"gender"`
	Address       string    `db:"address" json:"address"`
	CourseID      string    `db:"course_id" json:"course_id"`
	Semester      int       `db:"semester" json:"semester"`
	AdmissionDate time.Time `db:"admission_date" json:"admission_date"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail contains student information with course context.
type StudentDetail struct {
	Student
	CourseName string `db:"course_name" json:"course_name"`
	CourseCode string `db:"course_code" json:"course_code"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	CourseID  string
	Semester  int
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
