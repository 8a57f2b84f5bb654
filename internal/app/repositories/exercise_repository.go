package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/rea/internal/app/filters"
	"github.com/yigit/rea/internal/app/models"
	"github.com/yigit/rea/internal/pkg/apperrors"
	"github.com/yigit/rea/internal/pkg/dberrors"
	"github.com/yigit/rea/internal/pkg/logger"
)

var exerciseColumns = []string{"id", "midi", "svg", "category", "polyphonic", "created", "modified"}

// ExerciseRepository handles database operations for exercises
type ExerciseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewExerciseRepository creates a new exercise repository
func NewExerciseRepository(db *pgxpool.Pool) *ExerciseRepository {
	return &ExerciseRepository{
		db: db,
		sb: psql,
	}
}

// nullable maps "" to SQL NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanExercise(row pgx.Row) (*models.Exercise, error) {
	var (
		exercise  models.Exercise
		midi, svg *string
	)
	err := row.Scan(&exercise.ID, &midi, &svg, &exercise.Category, &exercise.Polyphonic, &exercise.Created, &exercise.Modified)
	if err != nil {
		return nil, err
	}
	if midi != nil {
		exercise.Midi = *midi
	}
	if svg != nil {
		exercise.Svg = *svg
	}
	return &exercise, nil
}

// Create creates a new exercise
func (r *ExerciseRepository) Create(ctx context.Context, exercise *models.Exercise) error {
	sql, args, err := r.sb.Insert("exercises").
		Columns("midi", "svg", "category", "polyphonic").
		Values(nullable(exercise.Midi), nullable(exercise.Svg), exercise.Category, exercise.Polyphonic).
		Suffix("RETURNING id, created, modified").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert exercise query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exercise.ID, &exercise.Created, &exercise.Modified); err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.ErrExerciseFileRequired
		}
		logger.Error().Err(err).Msg("Error creating exercise")
		return fmt.Errorf("error creating exercise: %w", err)
	}
	return nil
}

// GetByID retrieves an exercise by ID
func (r *ExerciseRepository) GetByID(ctx context.Context, id int64) (*models.Exercise, error) {
	sql, args, err := r.sb.Select(exerciseColumns...).From("exercises").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select exercise query: %w", err)
	}

	exercise, err := scanExercise(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrExerciseNotFound
		}
		logger.Error().Err(err).Int64("exerciseID", id).Msg("Error retrieving exercise")
		return nil, fmt.Errorf("error retrieving exercise: %w", err)
	}
	return exercise, nil
}

// List returns one page of exercises matching the filter, newest first, plus the total count
func (r *ExerciseRepository) List(ctx context.Context, filter filters.ExerciseFilter, offset uint64, limit int) ([]*models.Exercise, int64, error) {
	countQuery := r.sb.Select("COUNT(*)").From("exercises")
	query := r.sb.Select(exerciseColumns...).From("exercises").
		OrderBy(filter.OrderBy()...).
		Offset(offset).
		Limit(uint64(limit))
	if where := filter.Where(); where != nil {
		countQuery = countQuery.Where(where)
		query = query.Where(where)
	}

	total, err := count(ctx, r.db, countQuery)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list exercises query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing exercises")
		return nil, 0, fmt.Errorf("error listing exercises: %w", err)
	}
	defer rows.Close()

	exercises := make([]*models.Exercise, 0)
	for rows.Next() {
		exercise, err := scanExercise(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning exercise: %w", err)
		}
		exercises = append(exercises, exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating exercises: %w", err)
	}

	return exercises, total, nil
}

// Update writes the mutable columns and bumps modified
func (r *ExerciseRepository) Update(ctx context.Context, exercise *models.Exercise) error {
	sql, args, err := r.sb.Update("exercises").
		Set("midi", nullable(exercise.Midi)).
		Set("svg", nullable(exercise.Svg)).
		Set("category", exercise.Category).
		Set("polyphonic", exercise.Polyphonic).
		Set("modified", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": exercise.ID}).
		Suffix("RETURNING modified").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update exercise query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exercise.Modified); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrExerciseNotFound
		}
		if dberrors.IsCheckViolation(err) {
			return apperrors.ErrExerciseFileRequired
		}
		logger.Error().Err(err).Int64("exerciseID", exercise.ID).Msg("Error updating exercise")
		return fmt.Errorf("error updating exercise: %w", err)
	}
	return nil
}

// Delete deletes an exercise
func (r *ExerciseRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, r.sb, "exercises", id, apperrors.ErrExerciseNotFound)
}

// CountByCategory counts exercises per category; every known category is present
func (r *ExerciseRepository) CountByCategory(ctx context.Context) (map[models.ExerciseCategory]int64, error) {
	sql, args, err := r.sb.Select("category", "COUNT(*)").From("exercises").GroupBy("category").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build exercise stats query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error counting exercises")
		return nil, fmt.Errorf("error counting exercises: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ExerciseCategory]int64, len(models.ExerciseCategories))
	for _, c := range models.ExerciseCategories {
		counts[c] = 0
	}
	for rows.Next() {
		var (
			category models.ExerciseCategory
			n        int64
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("error scanning exercise count: %w", err)
		}
		counts[category] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exercise counts: %w", err)
	}
	return counts, nil
}
