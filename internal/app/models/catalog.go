package models

// Subject is a globally unique subject name, created lazily on first
// upload that references it.
type Subject struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Course is the instance of a subject taught by a teacher in an academic
// period. The (teacher, subject, period) triple is unique.
type Course struct {
	ID        int64  `db:"id" json:"id"`
	TeacherID int64  `db:"teacher_id" json:"teacherId"`
	SubjectID int64  `db:"subject_id" json:"subjectId"`
	Period    string `db:"period" json:"period"`
}
