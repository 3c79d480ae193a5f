package models

import "time"

// Exam is scheduled for one subject; results are entered against it.
type Exam struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	ExamDate     time.Time `db:"exam_date" json:"exam_date"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	TotalMarks   int       `db:"total_marks" json:"total_marks"`
	PassMarks    int       `db:"pass_marks" json:"pass_marks"`
	ExamType     string    `db:"exam_type" json:"exam_type"`
	Instructions *string   `db:"instructions" json:"instructions,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ExamDetail enriches Exam with subject context.
type ExamDetail struct {
	Exam
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
}

// ExamFilter provides filters for listing exams.
type ExamFilter struct {
	SubjectID  string
	TeacherID  string
	Active     *bool
	FutureOnly bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
