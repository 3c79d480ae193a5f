package models

import "time"

// Course is a degree program offered by the institution. It owns subjects
// and is referenced by students; deleting one is restricted while referenced.
type Course struct {
	ID                string    `db:"id" json:"id"`
	Code              string    `db:"code" json:"code"`
	Name              string    `db:"name" json:"name"`
	Description       string    `db:"description" json:"description"`
	DurationSemesters int       `db:"duration_semesters" json:"duration_semesters"`
	Department        string    `db:"department" json:"department"`
	Active            bool      `db:"active" json:"active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter encapsulates allowed search parameters for listing courses.
type CourseFilter struct {
	Search     string
	Department string
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
