package models

import "time"

// Student and Report are dormant collaborator entities: the schema is
// kept for compatibility with the reporting frontend, but no operation
// in this service reads or writes them.

// Student represents an enrolled student.
type Student struct {
	ID            int64   `db:"id" json:"id"`
	ControlNumber string  `db:"control_number" json:"controlNumber"`
	FullName      string  `db:"full_name" json:"fullName"`
	Email         *string `db:"email" json:"email,omitempty"`
}

// Report is a free-text observation report a teacher files about a
// student in a course.
type Report struct {
	ID           int64     `db:"id" json:"id"`
	TeacherID    int64     `db:"teacher_id" json:"teacherId"`
	CourseID     int64     `db:"course_id" json:"courseId"`
	StudentID    int64     `db:"student_id" json:"studentId"`
	Observations string    `db:"observations" json:"observations"`
	ReportedAt   time.Time `db:"reported_at" json:"reportedAt"`
}
