package models

import "time"

// Attendance is one row per (student, subject, date). Re-marking a
// (subject, date) pair deletes and replaces every row for that key.
type Attendance struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	Date      time.Time `db:"date" json:"date"`
	Present   bool      `db:"present" json:"present"`
	Remarks   *string   `db:"remarks" json:"remarks,omitempty"`
}

// AttendanceEntry is a single submitted mark within a batch.
type AttendanceEntry struct {
	StudentID string  `json:"student_id" validate:"required"`
	Present   bool    `json:"present"`
	Remarks   *string `json:"remarks,omitempty"`
}

// AttendanceRosterEntry pre-populates the marking form: the enrolled
// roster joined with any attendance already recorded for the date.
type AttendanceRosterEntry struct {
	StudentID             string  `db:"student_id" json:"studentId"`
	StudentName           string  `db:"student_name" json:"studentName"`
	StudentCode           string  `db:"student_code" json:"studentIdDisplay"`
	IsPresent             bool    `db:"is_present" json:"isPresent"`
	Remarks               *string `db:"remarks" json:"remarks,omitempty"`
	HasExistingAttendance bool    `db:"has_existing" json:"hasExistingAttendance"`
}

// AttendanceRecord extends Attendance with subject metadata for listings.
type AttendanceRecord struct {
	Attendance
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
}

// SubjectAttendanceSummary groups a student's attendance rows by subject.
type SubjectAttendanceSummary struct {
	SubjectID      string             `json:"subject_id"`
	SubjectName    string             `json:"subject_name"`
	SubjectCode    string             `json:"subject_code"`
	TotalClasses   int                `json:"total_classes"`
	PresentClasses int                `json:"present_classes"`
	Percentage     float64            `json:"percentage"`
	Records        []AttendanceRecord `json:"records"`
}

// AttendanceSummary is the per-student overall attendance aggregate.
type AttendanceSummary struct {
	TotalClasses   int     `json:"total_classes"`
	PresentClasses int     `json:"present_classes"`
	Percentage     float64 `json:"percentage"`
}
