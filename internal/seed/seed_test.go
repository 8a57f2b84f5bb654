package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/rea/internal/app/filters"
	appModels "github.com/yigit/rea/internal/app/models"
	appRepos "github.com/yigit/rea/internal/app/repositories"
	"github.com/yigit/rea/internal/config"
	pkgAuth "github.com/yigit/rea/internal/pkg/auth"
)

func seedConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Seed.Enabled = true
	cfg.Seed.AdminUsername = "admin"
	cfg.Seed.AdminPassword = "admin-password"
	cfg.Seed.AdminEmail = "admin@rea.local"
	return cfg
}

func TestCreateDefaultData(t *testing.T) {
	pkgAuth.BcryptCost = bcrypt.MinCost
	ctx := context.Background()
	repos := appRepos.NewMemoryRepositories()

	require.NoError(t, CreateDefaultData(ctx, repos, seedConfig(), zerolog.Nop()))

	count, err := repos.InstrumentRepository.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(DefaultInstruments)), count)

	admin, err := repos.UserRepository.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)
	assert.True(t, pkgAuth.CheckPassword(admin.Password, "admin-password"))

	// a second run changes nothing
	require.NoError(t, CreateDefaultData(ctx, repos, seedConfig(), zerolog.Nop()))
	count, err = repos.InstrumentRepository.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(DefaultInstruments)), count)
	_, total, err := repos.UserRepository.List(ctx, filters.UserFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestCreateDefaultDataKeepsExistingCatalog(t *testing.T) {
	ctx := context.Background()
	repos := appRepos.NewMemoryRepositories()
	require.NoError(t, repos.InstrumentRepository.Create(ctx, &appModels.Instrument{Name: "Harp", Family: "String"}))

	cfg := seedConfig()
	cfg.Seed.AdminUsername = ""
	require.NoError(t, CreateDefaultData(ctx, repos, cfg, zerolog.Nop()))

	count, err := repos.InstrumentRepository.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
