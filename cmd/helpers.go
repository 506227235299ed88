package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	cacheapp "github.com/AzielCF/az-storage/cache/application"
	coreDB "github.com/AzielCF/az-storage/core/database"
	settingsapp "github.com/AzielCF/az-storage/core/settings/application"
	settingsinfra "github.com/AzielCF/az-storage/core/settings/infrastructure"
	"github.com/AzielCF/az-storage/infrastructure/objectstore"
	"github.com/AzielCF/az-storage/infrastructure/valkey"
	"github.com/AzielCF/az-storage/pkg/security"
	"github.com/AzielCF/az-storage/quota/application"
	"github.com/AzielCF/az-storage/quota/domain"
	"github.com/AzielCF/az-storage/quota/repository"
	"github.com/AzielCF/az-storage/ui/rest"
)

// services holds everything a command needs, built once from appConfig.
type services struct {
	db     *gorm.DB
	vk     *valkey.Client
	minio  *objectstore.MinioStore
	store  domain.ObjectStore
	cache  *cacheapp.Service
	signer *security.Signer

	profileRepo *repository.ProfileGormRepository
	subRepo     *repository.SubscriptionGormRepository
	settingRepo *settingsinfra.SettingsGormRepository

	settings *settingsapp.SettingsService
	subs     *application.SubscriptionService
	usage    *application.UsageService
	elig     *application.EligibilityService
	uploads  *application.UploadService
	storage  *application.StorageService
	profiles *application.ProfileService
}

// openDatabase connects and migrates; it is all the migrate command needs.
func openDatabase(ctx context.Context) (*services, error) {
	db, err := coreDB.NewDatabase(appConfig)
	if err != nil {
		return nil, err
	}
	s := &services{
		db:          db,
		profileRepo: repository.NewProfileGormRepository(db),
		subRepo:     repository.NewSubscriptionGormRepository(db),
		settingRepo: settingsinfra.NewSettingsGormRepository(db),
	}
	if err := s.migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func buildServices(ctx context.Context) (*services, error) {
	cfg := appConfig
	s, err := openDatabase(ctx)
	if err != nil {
		return nil, err
	}
	s.signer = newSigner(cfg)

	if cfg.Valkey.Enabled {
		vk, err := valkey.NewClient(valkey.Config{
			Address:   cfg.Valkey.Address,
			Password:  cfg.Valkey.Password,
			DB:        cfg.Valkey.DB,
			KeyPrefix: cfg.Valkey.KeyPrefix,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
		s.vk = vk
		s.cache, err = cacheapp.NewValkeyService(vk, cfg.Cache)
		if err != nil {
			s.Close()
			return nil, err
		}
		logrus.Infof("[CACHE] Using Valkey at %s", cfg.Valkey.Address)
	} else {
		s.cache, err = cacheapp.NewMemoryService(cfg.Cache)
		if err != nil {
			s.Close()
			return nil, err
		}
		logrus.Info("[CACHE] Using in-process cache")
	}

	switch cfg.ObjectStore.Driver {
	case "minio":
		m, err := objectstore.NewMinioStore(objectstore.Config{
			Endpoint:  cfg.ObjectStore.Endpoint,
			Region:    cfg.ObjectStore.Region,
			Bucket:    cfg.ObjectStore.Bucket,
			AccessKey: cfg.ObjectStore.AccessKey,
			SecretKey: cfg.ObjectStore.SecretKey,
			UseSSL:    cfg.ObjectStore.UseSSL,
			PathStyle: cfg.ObjectStore.PathStyle,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
		if err := m.EnsureBucket(ctx, cfg.ObjectStore.Region); err != nil {
			s.Close()
			return nil, err
		}
		s.minio = m
		s.store = m
	case "memory":
		logrus.Warn("[STORAGE] Using in-memory object store, files are lost on restart")
		s.store = objectstore.NewMemoryStore(cfg.ObjectStore.Bucket)
	default:
		s.Close()
		return nil, fmt.Errorf("unsupported object store driver: %s", cfg.ObjectStore.Driver)
	}

	var locker domain.UploadLocker
	switch {
	case !cfg.Quota.SerializeUploads:
		logrus.Warn("[QUOTA] Upload serialization disabled, concurrent uploads may exceed the quota")
	case s.vk != nil:
		locker = repository.NewValkeyUploadLocker(s.vk, cfg.Quota.LockTTL)
	default:
		locker = repository.NewMemoryUploadLocker()
	}

	s.settings = settingsapp.NewSettingsService(s.settingRepo, s.cache)
	s.subs = application.NewSubscriptionService(s.subRepo, s.cache)
	s.usage = application.NewUsageService(s.store, s.profileRepo, s.cache)
	s.elig = application.NewEligibilityService(s.usage)
	s.uploads = application.NewUploadService(s.elig, s.usage, s.store, locker)
	s.storage = application.NewStorageService(s.subs, s.usage)
	s.profiles = application.NewProfileService(s.profileRepo, s.cache)

	return s, nil
}

// healthChecks lists the dependencies probed by /health/status.
func (s *services) healthChecks() map[string]rest.HealthCheck {
	checks := map[string]rest.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := s.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if s.vk != nil {
		checks["valkey"] = s.vk.Ping
	}
	if s.minio != nil {
		checks["object_store"] = s.minio.Ping
	}
	return checks
}

// Close releases the database and Valkey connections.
func (s *services) Close() {
	if s.vk != nil {
		s.vk.Close()
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
