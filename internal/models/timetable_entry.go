package models

import "time"

// TimetableEntry is one scheduled class occurrence: a (day, period) slot with
// its absolute time window and the assignment it instantiates. Subject name,
// code and teacher name are denormalised for display and export.
type TimetableEntry struct {
	ID              string      `db:"id" json:"id"`
	AssignedClassID string      `db:"assigned_class_id" json:"assigned_class_id"`
	TeacherID       string      `db:"teacher_id" json:"teacher_id"`
	TeacherName     string      `db:"teacher_name" json:"teacher_name"`
	SubjectID       string      `db:"subject_id" json:"subject_id"`
	SubjectName     string      `db:"subject_name" json:"subject_name"`
	SubjectCode     string      `db:"subject_code" json:"subject_code"`
	Semester        int         `db:"semester" json:"semester"`
	Branch          Branch      `db:"branch" json:"branch"`
	Day             string      `db:"day" json:"day"`
	PeriodNumber    int         `db:"period_number" json:"period_number"`
	StartTime       MinuteOfDay `db:"start_time" json:"start_time"`
	EndTime         MinuteOfDay `db:"end_time" json:"end_time"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

// Parity returns the entry's semester parity group.
func (e TimetableEntry) Parity() SemesterParity {
	return ParityOf(e.Semester)
}

// EntryFilter narrows entry queries for downstream display and export.
type EntryFilter struct {
	Branch    *Branch
	Semester  *int
	Parity    *SemesterParity
	TeacherID string
}
