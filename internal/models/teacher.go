package models

import "time"

// Teacher represents a staff member who can be assigned subjects.
type Teacher struct {
	ID              string    `db:"id" json:"id"`
	TeacherCode     string    `db:"teacher_code" json:"teacher_code"`
	FullName        string    `db:"full_name" json:"full_name"`
	Email           string    `db:"email" json:"email"`
	Phone           string    `db:"phone" json:"phone"`
	Qualification   string    `db:"qualification" json:"qualification"`
	Department      string    `db:"department" json:"department"`
	JoiningDate     time.Time `db:"joining_date" json:"joining_date"`
	ExperienceYears int       `db:"experience_years" json:"experience_years"`
	Salary          float64   `db:"salary" json:"salary"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter encapsulates allowed search parameters for listing teachers.
type TeacherFilter struct {
	Search     string
	Department string
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
