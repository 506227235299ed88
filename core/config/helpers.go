package config

import (
	"strings"
	"time"
)

// Settings returns a flat view of the non-secret settings, used for start-up logs
// and the debug endpoint.
func (c *Config) Settings() map[string]any {
	return map[string]any{
		"app_version":             c.App.Version,
		"app_env":                 c.App.Environment,
		"app_debug":               c.App.Debug,
		"db_driver":               c.Database.Driver,
		"valkey_enabled":          c.Valkey.Enabled,
		"object_store_driver":     c.ObjectStore.Driver,
		"object_store_bucket":     c.ObjectStore.Bucket,
		"cache_ttl_user":          c.Cache.UserTTL.String(),
		"cache_ttl_subscription":  c.Cache.SubscriptionTTL.String(),
		"cache_ttl_settings":      c.Cache.SettingsTTL.String(),
		"cache_ttl_files":         c.Cache.FilesTTL.String(),
		"cache_sweep_interval":    c.Cache.SweepInterval.String(),
		"quota_serialize_uploads": c.Quota.SerializeUploads,
	}
}

// Helpers
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
