package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	cacheapp "github.com/AzielCF/az-storage/cache/application"
	"github.com/AzielCF/az-storage/core/config"
	"github.com/AzielCF/az-storage/core/settings/domain"
	"github.com/AzielCF/az-storage/core/settings/infrastructure"
)

func newTestSettings(t *testing.T) (*SettingsService, *infrastructure.SettingsGormRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := infrastructure.NewSettingsGormRepository(db)
	require.NoError(t, repo.InitSchema(context.Background()))

	cache, err := cacheapp.NewMemoryService(config.CacheConfig{})
	require.NoError(t, err)
	return NewSettingsService(repo, cache), repo
}

func TestSettings_Defaults(t *testing.T) {
	svc, _ := newTestSettings(t)
	ctx := context.Background()

	enabled, msg := svc.UploadsEnabled(ctx)
	assert.True(t, enabled)
	assert.Empty(t, msg)
	assert.Equal(t, domain.DefaultResyncConcurrency, svc.ResyncConcurrency(ctx))
}

func TestSettings_ApplyInvalidatesCache(t *testing.T) {
	svc, _ := newTestSettings(t)
	ctx := context.Background()

	// prime the cache
	enabled, _ := svc.UploadsEnabled(ctx)
	require.True(t, enabled)

	off := false
	n := 8
	msg := "  storage migration in progress "
	require.NoError(t, svc.Apply(ctx, domain.SettingsRequest{
		UploadsEnabled:     &off,
		ResyncConcurrency:  &n,
		MaintenanceMessage: &msg,
	}))

	enabled, reason := svc.UploadsEnabled(ctx)
	assert.False(t, enabled)
	assert.Equal(t, "storage migration in progress", reason)
	assert.Equal(t, 8, svc.ResyncConcurrency(ctx))

	empty := ""
	require.NoError(t, svc.Apply(ctx, domain.SettingsRequest{MaintenanceMessage: &empty}))
	ds, err := svc.GetDynamicSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, ds.MaintenanceMessage)
	require.NotNil(t, ds.UploadsEnabled)
	assert.False(t, *ds.UploadsEnabled)
}

func TestSettings_StaleWithoutApply(t *testing.T) {
	svc, repo := newTestSettings(t)
	ctx := context.Background()

	assert.Equal(t, domain.DefaultResyncConcurrency, svc.ResyncConcurrency(ctx))

	// direct writes bypass invalidation until the entry expires
	require.NoError(t, repo.Set(ctx, domain.KeyResyncConcurrency, "16"))
	assert.Equal(t, domain.DefaultResyncConcurrency, svc.ResyncConcurrency(ctx))

	uncached := NewSettingsService(repo, nil)
	assert.Equal(t, 16, uncached.ResyncConcurrency(ctx))
}

func TestSettings_ConcurrencyIsCapped(t *testing.T) {
	svc, repo := newTestSettings(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, domain.KeyResyncConcurrency, "1000"))
	require.NoError(t, repo.Set(ctx, domain.KeyUploadsEnabled, "yes"))

	assert.Equal(t, domain.MaxResyncConcurrency, svc.ResyncConcurrency(ctx))
	enabled, _ := svc.UploadsEnabled(ctx)
	assert.True(t, enabled)
}

func TestSettingsRepository_List(t *testing.T) {
	_, repo := newTestSettings(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "b", "2"))
	require.NoError(t, repo.Set(ctx, "a", " 1 "))
	require.NoError(t, repo.Set(ctx, "b", "3"))

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Setting{{Key: "a", Value: "1"}, {Key: "b", Value: "3"}}, rows)

	val, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, repo.Delete(ctx, "a"))
	val, err = repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, val)
}
