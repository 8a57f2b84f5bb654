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

// Constraint names from migrations/001_init.sql
const (
	userInstrumentPairConstraint = "user_instruments_user_id_instrument_id_key"
	userInstrumentUserFK         = "user_instruments_user_id_fkey"
	userInstrumentInstrumentFK   = "user_instruments_instrument_id_fkey"
)

// UserInstrumentRepository handles database operations for proficiency records
type UserInstrumentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserInstrumentRepository creates a new user instrument repository
func NewUserInstrumentRepository(db *pgxpool.Pool) *UserInstrumentRepository {
	return &UserInstrumentRepository{
		db: db,
		sb: psql,
	}
}

// selectQuery selects records joined with their instrument
func (r *UserInstrumentRepository) selectQuery() squirrel.SelectBuilder {
	return r.sb.Select(
		"ui.id", "ui.user_id", "ui.instrument_id", "ui.proficiency", "ui.years_of_experience", "ui.notes",
		"i.id", "i.name", "i.family", "i.description",
	).
		From("user_instruments ui").
		Join("instruments i ON i.id = ui.instrument_id")
}

func scanUserInstrument(row pgx.Row) (*models.UserInstrument, error) {
	link := &models.UserInstrument{Instrument: &models.Instrument{}}
	err := row.Scan(
		&link.ID, &link.UserID, &link.InstrumentID, &link.Proficiency, &link.YearsOfExperience, &link.Notes,
		&link.Instrument.ID, &link.Instrument.Name, &link.Instrument.Family, &link.Instrument.Description,
	)
	if err != nil {
		return nil, err
	}
	return link, nil
}

// mapUserInstrumentWriteError translates constraint violations into domain errors, nil otherwise
func mapUserInstrumentWriteError(err error) error {
	if dberrors.IsDuplicateConstraintError(err, userInstrumentPairConstraint) {
		return apperrors.ErrDuplicateInstrument
	}
	if constraint, ok := dberrors.ForeignKeyConstraint(err); ok {
		switch constraint {
		case userInstrumentUserFK:
			return apperrors.ErrUserNotFound
		case userInstrumentInstrumentFK:
			return apperrors.ErrInstrumentNotFound
		}
		return apperrors.NewResourceNotFoundError("referenced record not found")
	}
	return nil
}

// Create inserts a record. The unique constraint decides duplicates at write time.
func (r *UserInstrumentRepository) Create(ctx context.Context, link *models.UserInstrument) error {
	sql, args, err := r.sb.Insert("user_instruments").
		Columns("user_id", "instrument_id", "proficiency", "years_of_experience", "notes").
		Values(link.UserID, link.InstrumentID, link.Proficiency, link.YearsOfExperience, link.Notes).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert user instrument query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&link.ID); err != nil {
		if mapped := mapUserInstrumentWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("userID", link.UserID).Int64("instrumentID", link.InstrumentID).Msg("Error creating user instrument")
		return fmt.Errorf("error creating user instrument: %w", err)
	}
	return nil
}

// GetByID retrieves a record by ID
func (r *UserInstrumentRepository) GetByID(ctx context.Context, id int64) (*models.UserInstrument, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"ui.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select user instrument query: %w", err)
	}

	link, err := scanUserInstrument(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserInstrumentNotFound
		}
		logger.Error().Err(err).Int64("userInstrumentID", id).Msg("Error retrieving user instrument")
		return nil, fmt.Errorf("error retrieving user instrument: %w", err)
	}
	return link, nil
}

func (r *UserInstrumentRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]*models.UserInstrument, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list user instruments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing user instruments")
		return nil, fmt.Errorf("error listing user instruments: %w", err)
	}
	defer rows.Close()

	links := make([]*models.UserInstrument, 0)
	for rows.Next() {
		link, err := scanUserInstrument(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user instrument: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user instruments: %w", err)
	}
	return links, nil
}

// List returns one page of records inside the filter scope plus the total count
func (r *UserInstrumentRepository) List(ctx context.Context, filter filters.UserInstrumentFilter, offset uint64, limit int) ([]*models.UserInstrument, int64, error) {
	countQuery := r.sb.Select("COUNT(*)").From("user_instruments ui")
	query := r.selectQuery().OrderBy(filter.OrderBy()...).Offset(offset).Limit(uint64(limit))
	if where := filter.Where(); where != nil {
		countQuery = countQuery.Where(where)
		query = query.Where(where)
	}

	total, err := count(ctx, r.db, countQuery)
	if err != nil {
		return nil, 0, err
	}

	links, err := r.query(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// ListByUserIDs loads every record of the given users in one query
func (r *UserInstrumentRepository) ListByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]*models.UserInstrument, error) {
	grouped := make(map[int64][]*models.UserInstrument, len(userIDs))
	if len(userIDs) == 0 {
		return grouped, nil
	}

	links, err := r.query(ctx, r.selectQuery().Where(squirrel.Eq{"ui.user_id": userIDs}).OrderBy("ui.id ASC"))
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		grouped[l.UserID] = append(grouped[l.UserID], l)
	}
	return grouped, nil
}

// Update writes the mutable columns; the owner never changes
func (r *UserInstrumentRepository) Update(ctx context.Context, link *models.UserInstrument) error {
	sql, args, err := r.sb.Update("user_instruments").
		Set("instrument_id", link.InstrumentID).
		Set("proficiency", link.Proficiency).
		Set("years_of_experience", link.YearsOfExperience).
		Set("notes", link.Notes).
		Where(squirrel.Eq{"id": link.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user instrument query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if mapped := mapUserInstrumentWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("userInstrumentID", link.ID).Msg("Error updating user instrument")
		return fmt.Errorf("error updating user instrument: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserInstrumentNotFound
	}
	return nil
}

// Delete deletes a record
func (r *UserInstrumentRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, r.sb, "user_instruments", id, apperrors.ErrUserInstrumentNotFound)
}
