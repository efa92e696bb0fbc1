package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rlopezj/catedra/internal/app/models"
	"github.com/rlopezj/catedra/internal/pkg/apperrors"
	"github.com/rlopezj/catedra/internal/pkg/dberrors"
)

const constraintCourseTriple = "uq_courses_teacher_subject_period"

// CourseRepository handles database operations for courses.
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

// GetByTriple retrieves the course for (teacher, subject, period).
// Returns nil when not found.
func (r *CourseRepository) GetByTriple(ctx context.Context, teacherID, subjectID int64, period string) (*models.Course, error) {
	sql, args, err := squirrel.Select("id", "teacher_id", "subject_id", "period").
		From("courses").
		Where("teacher_id = ?", teacherID).
		Where("subject_id = ?", subjectID).
		Where("period = ?", period).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var c models.Course
	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.TeacherID, &c.SubjectID, &c.Period)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &c, nil
}

// Create inserts a course. A duplicate (teacher, subject, period) triple
// maps to ErrConflict.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (int64, error) {
	sql, args, err := squirrel.Insert("courses").
		Columns("teacher_id", "subject_id", "period").
		Values(course.TeacherID, course.SubjectID, course.Period).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintCourseTriple) {
			return 0, apperrors.ErrConflict
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return id, nil
}

// GetOrCreate resolves the course for the triple, creating it lazily. A
// concurrent insert of the same triple surfaces as a unique violation
// and is answered by re-reading the existing row instead of failing the
// upload.
func (r *CourseRepository) GetOrCreate(ctx context.Context, teacherID, subjectID int64, period string) (*models.Course, error) {
	course, err := r.GetByTriple(ctx, teacherID, subjectID, period)
	if err != nil {
		return nil, err
	}
	if course != nil {
		return course, nil
	}

	course = &models.Course{TeacherID: teacherID, SubjectID: subjectID, Period: period}
	id, err := r.Create(ctx, course)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return r.GetByTriple(ctx, teacherID, subjectID, period)
		}
		return nil, err
	}
	course.ID = id
	return course, nil
}

// ListPeriods returns all distinct periods for the upload autocomplete.
func (r *CourseRepository) ListPeriods(ctx context.Context) ([]string, error) {
	sql, args, err := squirrel.Select("DISTINCT period").
		From("courses").
		OrderBy("period").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var periods []string
	for rows.Next() {
		var period string
		if err := rows.Scan(&period); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		periods = append(periods, period)
	}
	return periods, rows.Err()
}
