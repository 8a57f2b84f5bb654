package repositories

import (
	"context"

	"github.com/yigit/rea/internal/app/filters"
	"github.com/yigit/rea/internal/app/models"
)

// IUserRepository defines the interface for user-related storage operations
type IUserRepository interface {
	// Create stores the user and fills ID and DateJoined. A taken username yields apperrors.ErrUsernameTaken.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, filter filters.UserFilter, offset uint64, limit int) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	// Delete removes the user and cascades to their instrument records
	Delete(ctx context.Context, id int64) error
	CountByType(ctx context.Context, userType models.UserType) (int64, error)
}

// IInstrumentRepository defines the interface for instrument catalog storage
type IInstrumentRepository interface {
	Create(ctx context.Context, instrument *models.Instrument) error
	GetByID(ctx context.Context, id int64) (*models.Instrument, error)
	List(ctx context.Context, filter filters.InstrumentFilter, offset uint64, limit int) ([]*models.Instrument, int64, error)
	Update(ctx context.Context, instrument *models.Instrument) error
	// Delete removes the instrument and cascades to the records referencing it
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// IUserInstrumentRepository defines the interface for proficiency record storage.
// Records are returned with their Instrument loaded.
type IUserInstrumentRepository interface {
	// Create yields apperrors.ErrDuplicateInstrument when the (user, instrument) pair exists and
	// apperrors.ErrUserNotFound / ErrInstrumentNotFound when a reference is missing.
	Create(ctx context.Context, link *models.UserInstrument) error
	GetByID(ctx context.Context, id int64) (*models.UserInstrument, error)
	List(ctx context.Context, filter filters.UserInstrumentFilter, offset uint64, limit int) ([]*models.UserInstrument, int64, error)
	// ListByUserIDs groups every record of the given users by user id
	ListByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]*models.UserInstrument, error)
	Update(ctx context.Context, link *models.UserInstrument) error
	Delete(ctx context.Context, id int64) error
}

// IExerciseRepository defines the interface for exercise storage
type IExerciseRepository interface {
	// Create fills ID, Created and Modified
	Create(ctx context.Context, exercise *models.Exercise) error
	GetByID(ctx context.Context, id int64) (*models.Exercise, error)
	List(ctx context.Context, filter filters.ExerciseFilter, offset uint64, limit int) ([]*models.Exercise, int64, error)
	// Update refreshes Modified
	Update(ctx context.Context, exercise *models.Exercise) error
	Delete(ctx context.Context, id int64) error
	CountByCategory(ctx context.Context) (map[models.ExerciseCategory]int64, error)
}
