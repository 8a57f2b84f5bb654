package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/rea/internal/app/auth"
	appControllers "github.com/yigit/rea/internal/app/controllers"
	appMigrations "github.com/yigit/rea/internal/app/migrations"
	appRepos "github.com/yigit/rea/internal/app/repositories"
	appRoutes "github.com/yigit/rea/internal/app/routes"
	appServices "github.com/yigit/rea/internal/app/services"
	"github.com/yigit/rea/internal/config"
	"github.com/yigit/rea/internal/db"
	appMiddleware "github.com/yigit/rea/internal/middleware"
	pkgAuth "github.com/yigit/rea/internal/pkg/auth"
	"github.com/yigit/rea/internal/pkg/filestorage"
	"github.com/yigit/rea/internal/pkg/helpers"
	"github.com/yigit/rea/internal/pkg/logger"
	"github.com/yigit/rea/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService           appServices.AuthService
	UserService           appServices.UserService
	InstrumentService     appServices.InstrumentService
	UserInstrumentService appServices.UserInstrumentService
	ExerciseService       appServices.ExerciseService
	StatsService          appServices.StatsService
	Handlers              appRoutes.Handlers
	Repos                 *appRepos.Repositories
	JWTService            *pkgAuth.JWTService
	Enforcer              *appAuth.Enforcer
	Logger                zerolog.Logger
	FileStorage           *filestorage.LocalStorage
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the configured store. For PostgreSQL it connects and runs migrations;
// the returned *db.PostgresDB is nil for the memory driver.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, *db.PostgresDB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using in-memory store, data is lost on shutdown")
		return appRepos.NewMemoryRepositories(), nil, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsPath
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := appMigrations.NewMigrator(database).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return appRepos.NewRepositories(database.Pool), database, nil
}

// SeedDefaults creates default data when seeding is enabled. Failures are logged, not fatal.
func SeedDefaults(ctx context.Context, cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) {
	if !cfg.Seed.Enabled {
		return
	}
	if err := seed.CreateDefaultData(ctx, repos, cfg, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// BuildDependencies initializes services, controllers and middleware over repos.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Repos: repos}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.MediaURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Enforcer, err = appAuth.NewEnforcer()
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to load authorization policy")
		return nil, fmt.Errorf("failed to initialize authorization: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	// Initialize services
	deps.AuthService = appServices.NewAuthService(repos.UserRepository, deps.Enforcer, deps.JWTService, lgr)
	deps.UserService = appServices.NewUserService(repos.UserRepository, repos.UserInstrumentRepository, deps.Enforcer)
	deps.InstrumentService = appServices.NewInstrumentService(repos.InstrumentRepository, deps.Enforcer)
	deps.UserInstrumentService = appServices.NewUserInstrumentService(repos.UserInstrumentRepository, deps.Enforcer)
	deps.ExerciseService = appServices.NewExerciseService(repos.ExerciseRepository, deps.FileStorage, deps.Enforcer)
	deps.StatsService = appServices.NewStatsService(repos.UserRepository, repos.InstrumentRepository, deps.Enforcer)

	deps.Handlers = appRoutes.Handlers{
		Auth:           appControllers.NewAuthController(deps.AuthService, deps.JWTService.AccessTokenTTL(), cfg.Auth.CookieSecure, lgr),
		User:           appControllers.NewUserController(deps.UserService, deps.UserInstrumentService),
		Instrument:     appControllers.NewInstrumentController(deps.InstrumentService),
		UserInstrument: appControllers.NewUserInstrumentController(deps.UserInstrumentService),
		Exercise:       appControllers.NewExerciseController(deps.ExerciseService, cfg.MaxUploadBytes()),
		Stats:          appControllers.NewStatsController(deps.StatsService),
		AuthMiddleware: appMiddleware.NewAuthMiddleware(deps.AuthService),
		LoginLimiter:   appMiddleware.NewRateLimiter(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production", "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	lgr.Info().Str("mode", gin.Mode()).Msg("Gin mode set")

	appMiddleware.RegisterValidatorTagNames()

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(), appMiddleware.Metrics())
	if limit := cfg.MaxUploadBytes(); limit > 0 {
		router.MaxMultipartMemory = limit
	}

	appRoutes.SetupRouter(router, deps.Handlers)

	// Uploaded exercise files
	router.Static(cfg.Server.MediaURL, cfg.Server.StoragePath)
	lgr.Info().Str("path", cfg.Server.StoragePath).Str("url", cfg.Server.MediaURL).Msg("Static file serving configured for media")

	return router
}
