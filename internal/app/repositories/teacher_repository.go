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

// Unique constraint names from migrations/001_init.sql. Matching on the
// constraint lets conflicts map to a specific form field without a
// second query.
const (
	constraintTeacherPayroll = "uq_teachers_payroll_number"
	constraintTeacherEmail   = "uq_teachers_email"
)

// TeacherRepository handles database operations for teacher accounts.
type TeacherRepository struct {
	db *pgxpool.Pool
}

// NewTeacherRepository creates a new TeacherRepository
func NewTeacherRepository(db *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = "id, payroll_number, full_name, campus, email, password_hash, career_id, created_at"

func scanTeacher(row pgx.Row) (*models.Teacher, error) {
	var t models.Teacher
	err := row.Scan(&t.ID, &t.PayrollNumber, &t.FullName, &t.Campus, &t.Email, &t.PasswordHash, &t.CareerID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning teacher: %w", err)
	}
	return &t, nil
}

// mapTeacherConstraintError converts unique violations into
// field-specific application errors.
func mapTeacherConstraintError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, constraintTeacherPayroll):
		return apperrors.NewCustomError(apperrors.ErrPayrollNumberExists,
			"the payroll number is already registered").WithField("payrollNumber")
	case dberrors.IsDuplicateConstraintError(err, constraintTeacherEmail):
		return apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists,
			"the email address is already registered").WithField("email")
	case dberrors.IsUniqueViolation(err):
		return apperrors.NewConflictError("a teacher with those details already exists")
	}
	return fmt.Errorf("error executing query: %w", err)
}

// Create inserts a new teacher account.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) (int64, error) {
	sql, args, err := squirrel.Insert("teachers").
		Columns("payroll_number", "full_name", "campus", "email", "password_hash", "career_id").
		Values(teacher.PayrollNumber, teacher.FullName, teacher.Campus, teacher.Email, teacher.PasswordHash, teacher.CareerID).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, mapTeacherConstraintError(err)
	}
	return id, nil
}

// GetByEmail retrieves a teacher by email. Returns nil when not found.
func (r *TeacherRepository) GetByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	sql, args, err := squirrel.Select(teacherColumns).
		From("teachers").
		Where("email = ?", email).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}
	return scanTeacher(r.db.QueryRow(ctx, sql, args...))
}

// GetByID retrieves a teacher by ID. Returns nil when not found.
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	sql, args, err := squirrel.Select(teacherColumns).
		From("teachers").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}
	return scanTeacher(r.db.QueryRow(ctx, sql, args...))
}

// Update rewrites a teacher's profile fields, including the password
// hash, which callers keep unchanged unless a new password was set.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	sql, args, err := squirrel.Update("teachers").
		Set("payroll_number", teacher.PayrollNumber).
		Set("full_name", teacher.FullName).
		Set("campus", teacher.Campus).
		Set("email", teacher.Email).
		Set("password_hash", teacher.PasswordHash).
		Set("career_id", teacher.CareerID).
		Where("id = ?", teacher.ID).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapTeacherConstraintError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrTeacherNotFound
	}
	return nil
}

// Delete removes a teacher account. Courses, attachments, reports and
// refresh tokens cascade at the database level.
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := squirrel.Delete("teachers").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrTeacherNotFound
	}
	return nil
}
