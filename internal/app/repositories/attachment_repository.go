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

const constraintAttachmentName = "uq_attachments_name"

// AttachmentRepository handles database operations for attachments.
type AttachmentRepository struct {
	db *pgxpool.Pool
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create inserts an attachment row. A duplicate stored name maps to
// ErrFileAlreadyExists; stored names are globally unique, not
// per-owner.
func (r *AttachmentRepository) Create(ctx context.Context, attachment *models.Attachment) (int64, error) {
	sql, args, err := squirrel.Insert("attachments").
		Columns("name", "teacher_id", "course_id", "uploaded_at").
		Values(attachment.Name, attachment.TeacherID, attachment.CourseID, attachment.UploadedAt).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintAttachmentName) {
			return 0, apperrors.ErrFileAlreadyExists
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return id, nil
}

// GetByNameAndOwner retrieves an attachment scoped to its owner. A row
// owned by a different teacher is reported exactly like a missing one,
// so callers cannot probe which stored names exist.
func (r *AttachmentRepository) GetByNameAndOwner(ctx context.Context, name string, teacherID int64) (*models.Attachment, error) {
	sql, args, err := squirrel.Select("id", "name", "teacher_id", "course_id", "uploaded_at").
		From("attachments").
		Where("name = ?", name).
		Where("teacher_id = ?", teacherID).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var a models.Attachment
	err = r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.Name, &a.TeacherID, &a.CourseID, &a.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &a, nil
}

// ExistsByName reports whether any attachment, regardless of owner,
// carries the stored name.
func (r *AttachmentRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM attachments WHERE name = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return exists, nil
}

// UpdateName commits a rename in the database. A collision with another
// stored name maps to ErrFileAlreadyExists.
func (r *AttachmentRepository) UpdateName(ctx context.Context, id int64, newName string) error {
	sql, args, err := squirrel.Update("attachments").
		Set("name", newName).
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintAttachmentName) {
			return apperrors.ErrFileAlreadyExists
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrAttachmentNotFound
	}
	return nil
}

// Delete removes an attachment row by ID.
func (r *AttachmentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := squirrel.Delete("attachments").
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
		return apperrors.ErrAttachmentNotFound
	}
	return nil
}

// ListByOwner returns the caller's attachments newest first, each
// annotated with its course's subject name and period. A non-empty
// search term filters case-insensitively on the stored name, the
// subject name or the period.
func (r *AttachmentRepository) ListByOwner(ctx context.Context, teacherID int64, search string) ([]models.AttachmentDetails, error) {
	sql, args, err := listByOwnerQuery(teacherID, search).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var details []models.AttachmentDetails
	for rows.Next() {
		var d models.AttachmentDetails
		err := rows.Scan(&d.ID, &d.Name, &d.TeacherID, &d.CourseID, &d.UploadedAt, &d.SubjectName, &d.Period)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// listByOwnerQuery builds the owner-scoped listing: newest first, and a
// non-empty search term matches name, subject or period.
func listByOwnerQuery(teacherID int64, search string) squirrel.SelectBuilder {
	query := squirrel.Select(
		"a.id", "a.name", "a.teacher_id", "a.course_id", "a.uploaded_at",
		"s.name AS subject_name", "c.period",
	).
		From("attachments a").
		Join("courses c ON a.course_id = c.id").
		Join("subjects s ON c.subject_id = s.id").
		Where("a.teacher_id = ?", teacherID).
		OrderBy("a.uploaded_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			squirrel.Or{
				squirrel.ILike{"a.name": pattern},
				squirrel.ILike{"s.name": pattern},
				squirrel.ILike{"c.period": pattern},
			},
		)
	}
	return query
}

// ListNamesByOwner returns the stored names owned by a teacher. Used to
// clean up physical files after an account deletion cascades.
func (r *AttachmentRepository) ListNamesByOwner(ctx context.Context, teacherID int64) ([]string, error) {
	sql, args, err := squirrel.Select("name").
		From("attachments").
		Where("teacher_id = ?", teacherID).
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
