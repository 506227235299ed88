package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	cacheapp "github.com/AzielCF/az-storage/cache/application"
	cachedomain "github.com/AzielCF/az-storage/cache/domain"
	"github.com/AzielCF/az-storage/quota/domain"
)

// ProfileService sirve el perfil persistido desde el namespace de usuario
type ProfileService struct {
	profiles domain.ProfileRepository
	cache    *cacheapp.Service
}

func NewProfileService(profiles domain.ProfileRepository, cache *cacheapp.Service) *ProfileService {
	return &ProfileService{profiles: profiles, cache: cache}
}

// Ensure returns the profile of userID, creating an empty one on first access.
func (s *ProfileService) Ensure(ctx context.Context, userID string) (*domain.Profile, error) {
	if s.cache == nil {
		return s.ensure(ctx, userID)
	}
	return cacheapp.GetCachedData(ctx, s.cache, cachedomain.ProfileKey(userID), cachedomain.NamespaceUser,
		func(ctx context.Context) (*domain.Profile, error) {
			return s.ensure(ctx, userID)
		})
}

func (s *ProfileService) ensure(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}

	p = &domain.Profile{ID: userID}
	if err := s.profiles.Create(ctx, p); err != nil {
		// another request may have created it first
		if existing, getErr := s.profiles.GetByID(ctx, userID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	logrus.Infof("[QUOTA] Created profile for %s", userID)
	return p, nil
}
