package application

import (
	"context"

	"github.com/AzielCF/az-storage/quota/domain"
)

// StorageService builds the storage dashboard summary.
type StorageService struct {
	subs  *SubscriptionService
	usage *UsageService
}

func NewStorageService(subs *SubscriptionService, usage *UsageService) *StorageService {
	return &StorageService{subs: subs, usage: usage}
}

// Limits returns the limits of the user's current tier.
func (s *StorageService) Limits(ctx context.Context, userID string) domain.TierLimits {
	return domain.GetUserLimits(s.subs.Resolve(ctx, userID))
}

// Summary uses the cached usage; it may trail the store by up to the files
// namespace TTL.
func (s *StorageService) Summary(ctx context.Context, userID string) (domain.StorageSummary, error) {
	limits := s.Limits(ctx, userID)

	usage, err := s.usage.CachedUsage(ctx, userID)
	if err != nil {
		return domain.StorageSummary{}, err
	}

	var pct float64
	if limits.TotalStorage > 0 {
		pct = float64(usage.TotalSize) / float64(limits.TotalStorage) * 100
	}

	return domain.StorageSummary{
		Usage:            usage,
		Limits:           limits,
		UsagePercentage:  pct,
		UsedFormatted:    domain.FormatBytes(usage.TotalSize),
		LimitFormatted:   domain.FormatLimit(limits.TotalStorage),
		MaxFileFormatted: domain.FormatLimit(limits.MaxFileSize),
	}, nil
}
