package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories is the container for all repository instances.
type Repositories struct {
	CareerRepository     *CareerRepository
	TeacherRepository    *TeacherRepository
	SubjectRepository    *SubjectRepository
	CourseRepository     *CourseRepository
	AttachmentRepository *AttachmentRepository
	TokenRepository      *TokenRepository
}

// NewRepositories creates all repositories over a shared pool.
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		CareerRepository:     NewCareerRepository(db),
		TeacherRepository:    NewTeacherRepository(db),
		SubjectRepository:    NewSubjectRepository(db),
		CourseRepository:     NewCourseRepository(db),
		AttachmentRepository: NewAttachmentRepository(db),
		TokenRepository:      NewTokenRepository(db),
	}
}
