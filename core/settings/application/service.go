package application

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	cacheapp "github.com/AzielCF/az-storage/cache/application"
	cachedomain "github.com/AzielCF/az-storage/cache/domain"
	"github.com/AzielCF/az-storage/core/settings/domain"
)

const cacheKey = "settings:global"

type SettingsService struct {
	repo  domain.ISettingsRepository
	cache *cacheapp.Service
}

// NewSettingsService wires the repository; cache may be nil.
func NewSettingsService(repo domain.ISettingsRepository, cache *cacheapp.Service) *SettingsService {
	return &SettingsService{repo: repo, cache: cache}
}

// GetDynamicSettings reads through the settings namespace.
func (s *SettingsService) GetDynamicSettings(ctx context.Context) (*domain.DynamicSettings, error) {
	if s.cache == nil {
		return s.load(ctx)
	}
	ds, err := cacheapp.GetCachedData(ctx, s.cache, cacheKey, cachedomain.NamespaceSettings, s.load)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *SettingsService) load(ctx context.Context) (*domain.DynamicSettings, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	ds := &domain.DynamicSettings{}
	for _, row := range rows {
		if row.Value == "" {
			continue
		}
		switch row.Key {
		case domain.KeyUploadsEnabled:
			isOn := parseBool(row.Value)
			ds.UploadsEnabled = &isOn
		case domain.KeyResyncConcurrency:
			if n, err := strconv.Atoi(row.Value); err == nil && n > 0 {
				ds.ResyncConcurrency = &n
			}
		case domain.KeyMaintenanceMessage:
			ds.MaintenanceMessage = row.Value
		}
	}
	return ds, nil
}

// UploadsEnabled reports true unless the switch was explicitly turned off.
// A settings failure never blocks uploads.
func (s *SettingsService) UploadsEnabled(ctx context.Context) (bool, string) {
	ds, err := s.GetDynamicSettings(ctx)
	if err != nil {
		logrus.WithError(err).Warn("[SETTINGS] Could not read settings, uploads stay enabled")
		return true, ""
	}
	if ds.UploadsEnabled == nil || *ds.UploadsEnabled {
		return true, ""
	}
	return false, ds.MaintenanceMessage
}

func (s *SettingsService) ResyncConcurrency(ctx context.Context) int {
	ds, err := s.GetDynamicSettings(ctx)
	if err != nil || ds.ResyncConcurrency == nil {
		return domain.DefaultResyncConcurrency
	}
	return min(*ds.ResyncConcurrency, domain.MaxResyncConcurrency)
}

// Apply writes the present fields of req and drops the cached view.
func (s *SettingsService) Apply(ctx context.Context, req domain.SettingsRequest) error {
	if req.UploadsEnabled != nil {
		val := "0"
		if *req.UploadsEnabled {
			val = "1"
		}
		if err := s.repo.Set(ctx, domain.KeyUploadsEnabled, val); err != nil {
			return err
		}
	}
	if req.ResyncConcurrency != nil {
		if err := s.repo.Set(ctx, domain.KeyResyncConcurrency, strconv.Itoa(*req.ResyncConcurrency)); err != nil {
			return err
		}
	}
	if req.MaintenanceMessage != nil {
		msg := strings.TrimSpace(*req.MaintenanceMessage)
		var err error
		if msg == "" {
			err = s.repo.Delete(ctx, domain.KeyMaintenanceMessage)
		} else {
			err = s.repo.Set(ctx, domain.KeyMaintenanceMessage, msg)
		}
		if err != nil {
			return err
		}
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cachedomain.NamespaceSettings, cacheKey); err != nil {
			logrus.WithError(err).Warn("[SETTINGS] Could not invalidate cached settings")
		}
	}
	return nil
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
