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

const constraintSubjectName = "uq_subjects_name"

// SubjectRepository handles database operations for subjects.
type SubjectRepository struct {
	db *pgxpool.Pool
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(db *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// GetByName retrieves a subject by exact name. Returns nil when not found.
func (r *SubjectRepository) GetByName(ctx context.Context, name string) (*models.Subject, error) {
	sql, args, err := squirrel.Select("id", "name").
		From("subjects").
		Where("name = ?", name).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var s models.Subject
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &s, nil
}

// Create inserts a subject. A duplicate name maps to ErrConflict.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) (int64, error) {
	sql, args, err := squirrel.Insert("subjects").
		Columns("name").
		Values(subject.Name).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintSubjectName) {
			return 0, apperrors.ErrConflict
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return id, nil
}

// GetOrCreate resolves a subject by name, creating it lazily. The
// find-then-create is not atomic; a concurrent insert surfaces as a
// unique violation, which is answered by re-reading the winner's row.
func (r *SubjectRepository) GetOrCreate(ctx context.Context, name string) (*models.Subject, error) {
	subject, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if subject != nil {
		return subject, nil
	}

	subject = &models.Subject{Name: name}
	id, err := r.Create(ctx, subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Lost the race; the row exists now.
			return r.GetByName(ctx, name)
		}
		return nil, err
	}
	subject.ID = id
	return subject, nil
}

// ListNames returns all distinct subject names for the upload
// autocomplete.
func (r *SubjectRepository) ListNames(ctx context.Context) ([]string, error) {
	sql, args, err := squirrel.Select("DISTINCT name").
		From("subjects").
		OrderBy("name").
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

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
