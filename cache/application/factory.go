package application

import (
	"time"

	"github.com/AzielCF/az-storage/cache/domain"
	"github.com/AzielCF/az-storage/cache/repository"
	"github.com/AzielCF/az-storage/core/config"
	"github.com/AzielCF/az-storage/infrastructure/valkey"
)

// NamespaceConfigs maps the configured TTLs onto the fixed namespace set.
func NamespaceConfigs(cfg config.CacheConfig) []domain.NamespaceConfig {
	return []domain.NamespaceConfig{
		{Name: domain.NamespaceUser, DefaultTTL: orDefault(cfg.UserTTL, domain.NamespaceUser)},
		{Name: domain.NamespaceSubscription, DefaultTTL: orDefault(cfg.SubscriptionTTL, domain.NamespaceSubscription)},
		{Name: domain.NamespaceSettings, DefaultTTL: orDefault(cfg.SettingsTTL, domain.NamespaceSettings)},
		{Name: domain.NamespaceFiles, DefaultTTL: orDefault(cfg.FilesTTL, domain.NamespaceFiles)},
	}
}

// NewMemoryService builds the in-process cache.
func NewMemoryService(cfg config.CacheConfig, opts ...repository.MemoryOption) (*Service, error) {
	var stores []domain.Store
	for _, nc := range NamespaceConfigs(cfg) {
		stores = append(stores, repository.NewMemoryStore(nc, opts...))
	}
	return NewService(stores...)
}

// NewValkeyService builds a cache shared by every instance pointed at the same
// Valkey server and key prefix.
func NewValkeyService(client *valkey.Client, cfg config.CacheConfig) (*Service, error) {
	var stores []domain.Store
	for _, nc := range NamespaceConfigs(cfg) {
		stores = append(stores, repository.NewValkeyStore(client, nc))
	}
	return NewService(stores...)
}

func orDefault(ttl time.Duration, ns domain.Namespace) time.Duration {
	if ttl <= 0 {
		return domain.DefaultTTLs[ns]
	}
	return ttl
}
