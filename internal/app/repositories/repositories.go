package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/rea/internal/app/repositories/memory"
)

// psql is the statement builder every PostgreSQL repository shares
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository           IUserRepository
	InstrumentRepository     IInstrumentRepository
	UserInstrumentRepository IUserInstrumentRepository
	ExerciseRepository       IExerciseRepository
}

// NewRepositories initializes the PostgreSQL repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:           NewUserRepository(db),
		InstrumentRepository:     NewInstrumentRepository(db),
		UserInstrumentRepository: NewUserInstrumentRepository(db),
		ExerciseRepository:       NewExerciseRepository(db),
	}
}

// NewMemoryRepositories initializes repositories over one shared in-process store
func NewMemoryRepositories() *Repositories {
	store := memory.NewStore()
	return &Repositories{
		UserRepository:           store.Users(),
		InstrumentRepository:     store.Instruments(),
		UserInstrumentRepository: store.UserInstruments(),
		ExerciseRepository:       store.Exercises(),
	}
}
