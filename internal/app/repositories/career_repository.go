package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rlopezj/catedra/internal/app/models"
)

// CareerRepository handles database operations for careers.
type CareerRepository struct {
	db *pgxpool.Pool
}

// NewCareerRepository creates a new CareerRepository
func NewCareerRepository(db *pgxpool.Pool) *CareerRepository {
	return &CareerRepository{db: db}
}

// GetAll retrieves all careers ordered by campus and name.
func (r *CareerRepository) GetAll(ctx context.Context) ([]models.Career, error) {
	sql, args, err := squirrel.Select("id", "name", "campus").
		From("careers").
		OrderBy("campus", "name").
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

	var careers []models.Career
	for rows.Next() {
		var c models.Career
		if err := rows.Scan(&c.ID, &c.Name, &c.Campus); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		careers = append(careers, c)
	}
	return careers, rows.Err()
}

// GetByID retrieves a career by ID. Returns nil when not found.
func (r *CareerRepository) GetByID(ctx context.Context, id int64) (*models.Career, error) {
	sql, args, err := squirrel.Select("id", "name", "campus").
		From("careers").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var c models.Career
	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Name, &c.Campus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &c, nil
}

// Count returns the number of career rows. The seeder uses it to decide
// whether reference data has already been loaded.
func (r *CareerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM careers").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting careers: %w", err)
	}
	return count, nil
}

// Create inserts a career. Only used by the seeder.
func (r *CareerRepository) Create(ctx context.Context, career *models.Career) (int64, error) {
	sql, args, err := squirrel.Insert("careers").
		Columns("name", "campus").
		Values(career.Name, career.Campus).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return id, nil
}
