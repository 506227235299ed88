package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	for key, val := range overrides {
		v.Set(key, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, 300*time.Second, cfg.Cache.UserTTL)
	assert.Equal(t, 600*time.Second, cfg.Cache.SubscriptionTTL)
	assert.Equal(t, 1800*time.Second, cfg.Cache.SettingsTTL)
	assert.Equal(t, 120*time.Second, cfg.Cache.FilesTTL)
	assert.Zero(t, cfg.Cache.SweepInterval)
	assert.True(t, cfg.Quota.SerializeUploads)
	assert.Equal(t, 30*time.Second, cfg.Quota.LockTTL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.App.CorsAllowedOrigins)
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]any{
		"CACHE_TTL_FILES":      30,
		"CACHE_SWEEP_INTERVAL": "5m",
		"OBJECT_STORE_DRIVER":  "MEMORY",
		"QUOTA_LOCK_TTL":       "500ms",
	}))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Cache.FilesTTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.SweepInterval)
	assert.Equal(t, "memory", cfg.ObjectStore.Driver)
	assert.Equal(t, 500*time.Millisecond, cfg.Quota.LockTTL)
}

func TestFromViper_Invalid(t *testing.T) {
	cases := map[string]map[string]any{
		"db driver":    {"DB_DRIVER": "mysql"},
		"store driver": {"OBJECT_STORE_DRIVER": "gcs"},
		"zero ttl":     {"CACHE_TTL_SETTINGS": 0},
		"no secret":    {"APP_JWT_SECRET": ""},
		"zero lock":    {"QUOTA_LOCK_TTL": "0s"},
		"sub ms lock":  {"QUOTA_LOCK_TTL": "500us"},
	}
	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := fromViper(newTestViper(overrides))
			assert.Error(t, err)
		})
	}
}
