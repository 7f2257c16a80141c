package models

import "time"

// AssignedClass links a teacher to a subject they teach. Rows are maintained
// by the admin application; this service only reads them.
type AssignedClass struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AssignedClassDetail is an assignment joined with its subject and teacher,
// the unit of input the scheduling engine consumes.
type AssignedClassDetail struct {
	ID          string `db:"id" json:"id"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	SubjectID   string `db:"subject_id" json:"subject_id"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
	Semester    int    `db:"semester" json:"semester"`
	Branch      Branch `db:"branch" json:"branch"`
}

// Parity returns the parity group of the assignment's subject semester.
func (a AssignedClassDetail) Parity() SemesterParity {
	return ParityOf(a.Semester)
}
