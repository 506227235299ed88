package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	cacheapp "github.com/AzielCF/az-storage/cache/application"
	cachedomain "github.com/AzielCF/az-storage/cache/domain"
	"github.com/AzielCF/az-storage/quota/domain"
)

// UsageService agrega el uso de almacenamiento de cada usuario
type UsageService struct {
	store    domain.ObjectStore
	profiles domain.ProfileRepository
	cache    *cacheapp.Service
	now      func() time.Time
}

// NewUsageService crea el agregador. cache puede ser nil.
func NewUsageService(store domain.ObjectStore, profiles domain.ProfileRepository, cache *cacheapp.Service) *UsageService {
	return &UsageService{
		store:    store,
		profiles: profiles,
		cache:    cache,
		now:      time.Now,
	}
}

// UserPrefix is the folder every object of a user lives under.
func UserPrefix(userID string) string {
	return userID + "/"
}

// GetUserStorageUsage always lists the store; it never reads the cache.
func (s *UsageService) GetUserStorageUsage(ctx context.Context, userID string) (domain.UsageSnapshot, error) {
	objects, err := s.store.List(ctx, UserPrefix(userID))
	if err != nil {
		logrus.WithError(err).Errorf("[QUOTA] Error getting storage usage for %s", userID)
		return domain.UsageSnapshot{}, &domain.StoreUnavailableError{Op: "list", Err: err}
	}

	var usage domain.UsageSnapshot
	for _, obj := range objects {
		if obj.Size > 0 {
			usage.TotalSize += obj.Size
		}
	}
	usage.FilesCount = len(objects)
	return usage, nil
}

// CachedUsage serves the files namespace entry "storage:<id>" for display reads.
func (s *UsageService) CachedUsage(ctx context.Context, userID string) (domain.UsageSnapshot, error) {
	if s.cache == nil {
		return s.GetUserStorageUsage(ctx, userID)
	}
	return cacheapp.GetCachedData(ctx, s.cache, cachedomain.StorageKey(userID), cachedomain.NamespaceFiles,
		func(ctx context.Context) (domain.UsageSnapshot, error) {
			return s.GetUserStorageUsage(ctx, userID)
		})
}

// SyncMetadata recomputes usage from the store and persists it on the profile.
// Any failure is a MetadataSyncError.
func (s *UsageService) SyncMetadata(ctx context.Context, userID string) (domain.UsageSnapshot, error) {
	usage, err := s.GetUserStorageUsage(ctx, userID)
	if err != nil {
		return domain.UsageSnapshot{}, &domain.MetadataSyncError{UserID: userID, Err: err}
	}

	if err := s.profiles.UpdateStorageUsage(ctx, userID, usage, s.now().UTC()); err != nil {
		logrus.WithError(err).Errorf("[QUOTA] Error updating storage metadata for %s", userID)
		return usage, &domain.MetadataSyncError{UserID: userID, Err: err}
	}

	s.dropProfile(ctx, userID)
	s.refreshCache(ctx, userID, usage)
	return usage, nil
}

// dropProfile forgets the cached profile row after its usage columns changed.
func (s *UsageService) dropProfile(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cachedomain.NamespaceUser, cachedomain.ProfileKey(userID)); err != nil {
		logrus.WithError(err).Warnf("[QUOTA] Could not drop cached profile for %s", userID)
	}
}

// refreshCache stores a snapshot that is known to be fresh.
func (s *UsageService) refreshCache(ctx context.Context, userID string, usage domain.UsageSnapshot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, cachedomain.NamespaceFiles, cachedomain.StorageKey(userID), usage); err != nil {
		logrus.WithError(err).Warnf("[QUOTA] Could not refresh cached usage for %s", userID)
	}
}

// ResyncProfiles resynchronizes every user that has a profile row.
func (s *UsageService) ResyncProfiles(ctx context.Context, concurrency int) (int, error) {
	ids, err := s.profiles.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	logrus.Infof("[QUOTA] Resyncing storage usage for %d profiles", len(ids))
	return s.ResyncAll(ctx, ids, concurrency)
}

// ResyncAll runs SyncMetadata for every user with at most concurrency calls in
// flight. A failing user does not stop the others; all failures are joined.
func (s *UsageService) ResyncAll(ctx context.Context, userIDs []string, concurrency int) (int, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var (
		mu     sync.Mutex
		synced int
		errs   []error
	)
	for _, id := range userIDs {
		g.Go(func() error {
			usage, err := s.SyncMetadata(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			synced++
			logrus.Debugf("[QUOTA] Synced %s: %d bytes in %d files", id, usage.TotalSize, usage.FilesCount)
			return nil
		})
	}
	_ = g.Wait()

	return synced, errors.Join(errs...)
}
