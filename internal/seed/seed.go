package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/rea/internal/app/models"
	appRepos "github.com/yigit/rea/internal/app/repositories"
	"github.com/yigit/rea/internal/config"
	"github.com/yigit/rea/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/rea/internal/pkg/auth"
)

// DefaultInstruments fills an empty catalog
var DefaultInstruments = []appModels.Instrument{
	{Name: "Violin", Family: "String", Description: "Four-stringed bowed instrument"},
	{Name: "Cello", Family: "String", Description: "Large bowed instrument played seated"},
	{Name: "Guitar", Family: "String", Description: "Six-stringed plucked instrument"},
	{Name: "Piano", Family: "Keyboard", Description: "Acoustic keyboard with hammered strings"},
	{Name: "Flute", Family: "Woodwind", Description: "Transverse side-blown flute"},
	{Name: "Clarinet", Family: "Woodwind", Description: "Single-reed instrument"},
	{Name: "Trumpet", Family: "Brass", Description: "Valved brass instrument"},
	{Name: "Drum Kit", Family: "Percussion", Description: "Set of drums and cymbals"},
}

// CreateDefaultData creates the default instrument catalog and admin account if they don't exist.
// Errors are collected so one failure does not stop the rest.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, cfg *config.Config, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Instruments/Admin)...")
	var finalErr error

	// --- Instrument catalog --- //
	count, err := repos.InstrumentRepository.Count(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error counting instruments")
		finalErr = errors.Join(finalErr, err)
	} else if count == 0 {
		for _, def := range DefaultInstruments {
			instrument := def
			if err := repos.InstrumentRepository.Create(ctx, &instrument); err != nil {
				lgr.Error().Err(err).Str("instrument", def.Name).Msg("Error creating default instrument")
				finalErr = errors.Join(finalErr, err)
			}
		}
		lgr.Info().Int("count", len(DefaultInstruments)).Msg("Default instruments created")
	} else {
		lgr.Info().Int64("count", count).Msg("Instrument catalog not empty, skipping defaults")
	}

	// --- Default admin user --- //
	if cfg.Seed.AdminUsername == "" {
		lgr.Info().Msg("No seed admin configured, skipping creation")
		return finalErr
	}

	_, err = repos.UserRepository.GetByUsername(ctx, cfg.Seed.AdminUsername)
	switch {
	case err == nil:
		lgr.Info().Str("username", cfg.Seed.AdminUsername).Msg("Admin user already exists, skipping creation")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		lgr.Info().Str("username", cfg.Seed.AdminUsername).Msg("Creating default admin user...")
		hashedPassword, err := pkgAuth.HashPassword(cfg.Seed.AdminPassword)
		if err != nil {
			lgr.Error().Err(err).Msg("Error hashing admin password")
			return errors.Join(finalErr, err)
		}

		admin := &appModels.User{
			Username:  cfg.Seed.AdminUsername,
			Password:  hashedPassword,
			Email:     cfg.Seed.AdminEmail,
			FirstName: "System",
			LastName:  "Administrator",
			UserType:  appModels.UserTypeTeacher,
			IsStaff:   true,
		}
		if err := repos.UserRepository.Create(ctx, admin); err != nil {
			lgr.Error().Err(err).Msg("Error creating admin user")
			finalErr = errors.Join(finalErr, err)
		} else {
			lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created successfully")
		}
	default:
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
