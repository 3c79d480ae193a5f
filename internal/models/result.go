package models

import "time"

// Result is one row per (student, exam), upserted in place on re-entry.
// Grade and passed are derived from marks at write time; the letter grade
// and the pass flag are independent derivations.
type Result struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	ExamID        string    `db:"exam_id" json:"exam_id"`
	MarksObtained int       `db:"marks_obtained" json:"marks_obtained"`
	Grade         string    `db:"grade" json:"grade"`
	Passed        bool      `db:"passed" json:"passed"`
	ResultDate    time.Time `db:"result_date" json:"result_date"`
	Remarks       *string   `db:"remarks" json:"remarks,omitempty"`
}

// ResultDetail enriches Result with exam and subject context.
type ResultDetail struct {
	Result
	ExamName    string `db:"exam_name" json:"exam_name"`
	TotalMarks  int    `db:"total_marks" json:"total_marks"`
	PassMarks   int    `db:"pass_marks" json:"pass_marks"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
}

// ResultRosterEntry pre-populates the result entry form for an exam.
type ResultRosterEntry struct {
	StudentID         string  `db:"student_id" json:"studentId"`
	StudentName       string  `db:"student_name" json:"studentName"`
	StudentCode       string  `db:"student_code" json:"studentIdDisplay"`
	MarksObtained     int     `db:"marks_obtained" json:"marksObtained"`
	Grade             *string `db:"grade" json:"grade,omitempty"`
	Passed            bool    `db:"passed" json:"isPassed"`
	Remarks           *string `db:"remarks" json:"remarks,omitempty"`
	HasExistingResult bool    `db:"has_existing" json:"hasExistingResult"`
}
