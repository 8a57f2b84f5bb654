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
	"github.com/yigit/rea/internal/pkg/logger"
)

// InstrumentRepository handles database operations for instruments
type InstrumentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewInstrumentRepository creates a new instrument repository
func NewInstrumentRepository(db *pgxpool.Pool) *InstrumentRepository {
	return &InstrumentRepository{
		db: db,
		sb: psql,
	}
}

// Create creates a new instrument
func (r *InstrumentRepository) Create(ctx context.Context, instrument *models.Instrument) error {
	sql, args, err := r.sb.Insert("instruments").
		Columns("name", "family", "description").
		Values(instrument.Name, instrument.Family, instrument.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert instrument query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&instrument.ID); err != nil {
		logger.Error().Err(err).Str("name", instrument.Name).Msg("Error creating instrument")
		return fmt.Errorf("error creating instrument: %w", err)
	}
	return nil
}

// GetByID retrieves an instrument by ID
func (r *InstrumentRepository) GetByID(ctx context.Context, id int64) (*models.Instrument, error) {
	sql, args, err := r.sb.Select("id", "name", "family", "description").
		From("instruments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select instrument query: %w", err)
	}

	var instrument models.Instrument
	err = r.db.QueryRow(ctx, sql, args...).Scan(&instrument.ID, &instrument.Name, &instrument.Family, &instrument.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInstrumentNotFound
		}
		logger.Error().Err(err).Int64("instrumentID", id).Msg("Error retrieving instrument")
		return nil, fmt.Errorf("error retrieving instrument: %w", err)
	}
	return &instrument, nil
}

// List returns one page of instruments matching the filter plus the total match count
func (r *InstrumentRepository) List(ctx context.Context, filter filters.InstrumentFilter, offset uint64, limit int) ([]*models.Instrument, int64, error) {
	countQuery := r.sb.Select("COUNT(*)").From("instruments")
	query := r.sb.Select("id", "name", "family", "description").
		From("instruments").
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
		return nil, 0, fmt.Errorf("failed to build list instruments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing instruments")
		return nil, 0, fmt.Errorf("error listing instruments: %w", err)
	}
	defer rows.Close()

	instruments := make([]*models.Instrument, 0)
	for rows.Next() {
		var instrument models.Instrument
		if err := rows.Scan(&instrument.ID, &instrument.Name, &instrument.Family, &instrument.Description); err != nil {
			return nil, 0, fmt.Errorf("error scanning instrument: %w", err)
		}
		instruments = append(instruments, &instrument)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating instruments: %w", err)
	}

	return instruments, total, nil
}

// Update updates an instrument
func (r *InstrumentRepository) Update(ctx context.Context, instrument *models.Instrument) error {
	sql, args, err := r.sb.Update("instruments").
		Set("name", instrument.Name).
		Set("family", instrument.Family).
		Set("description", instrument.Description).
		Where(squirrel.Eq{"id": instrument.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update instrument query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("instrumentID", instrument.ID).Msg("Error updating instrument")
		return fmt.Errorf("error updating instrument: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInstrumentNotFound
	}
	return nil
}

// Delete deletes an instrument; user_instruments rows cascade
func (r *InstrumentRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, r.sb, "instruments", id, apperrors.ErrInstrumentNotFound)
}

// Count counts all instruments
func (r *InstrumentRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db, r.sb.Select("COUNT(*)").From("instruments"))
}
