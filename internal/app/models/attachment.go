package models

import "time"

// Attachment is a stored PDF document paired 1:1 with a physical file in
// the uploads directory. The stored name is globally unique and
// addresses both the row and the file.
type Attachment struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	TeacherID  int64     `db:"teacher_id" json:"teacherId"`
	CourseID   int64     `db:"course_id" json:"courseId"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploadedAt"`
}

// AttachmentDetails is an attachment annotated with its course's subject
// name and period, as returned by listings.
type AttachmentDetails struct {
	Attachment
	SubjectName string `db:"subject_name" json:"subjectName"`
	Period      string `db:"period" json:"period"`
}
