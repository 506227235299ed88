package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	cacheapp "github.com/AzielCF/az-storage/cache/application"
	cachedomain "github.com/AzielCF/az-storage/cache/domain"
	"github.com/AzielCF/az-storage/quota/domain"
)

// SubscriptionService resuelve la suscripción vigente de un usuario
type SubscriptionService struct {
	repo  domain.SubscriptionRepository
	cache *cacheapp.Service
}

// NewSubscriptionService crea el servicio. cache puede ser nil.
func NewSubscriptionService(repo domain.SubscriptionRepository, cache *cacheapp.Service) *SubscriptionService {
	return &SubscriptionService{repo: repo, cache: cache}
}

// Resolve returns the user's subscription, or nil when there is none. Lookup
// failures also resolve to nil, which downstream means the FREE tier. Only a
// successful lookup is cached, "no subscription" included.
func (s *SubscriptionService) Resolve(ctx context.Context, userID string) *domain.Subscription {
	var (
		sub *domain.Subscription
		err error
	)
	if s.cache == nil {
		sub, err = s.lookup(ctx, userID)
	} else {
		sub, err = cacheapp.GetCachedData(ctx, s.cache, cachedomain.SubscriptionKey(userID), cachedomain.NamespaceSubscription,
			func(ctx context.Context) (*domain.Subscription, error) {
				return s.lookup(ctx, userID)
			})
	}
	if err != nil {
		logrus.WithError(err).Warnf("[QUOTA] Subscription lookup failed for %s, using FREE limits", userID)
		return nil
	}
	return sub
}

// Upsert stores a subscription and drops the cached copy.
func (s *SubscriptionService) Upsert(ctx context.Context, sub *domain.Subscription) error {
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cachedomain.NamespaceSubscription, cachedomain.SubscriptionKey(sub.UserID)); err != nil {
			logrus.WithError(err).Warnf("[QUOTA] Could not invalidate cached subscription for %s", sub.UserID)
		}
	}
	return nil
}

// lookup maps "not found" to a nil subscription; any other error is returned.
func (s *SubscriptionService) lookup(ctx context.Context, userID string) (*domain.Subscription, error) {
	sub, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}
