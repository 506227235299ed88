package application

import (
	"context"
	"fmt"

	"github.com/AzielCF/az-storage/quota/domain"
)

// EligibilityService decide si una subida respeta los límites del tier
type EligibilityService struct {
	usage *UsageService
}

func NewEligibilityService(usage *UsageService) *EligibilityService {
	return &EligibilityService{usage: usage}
}

// Check evaluates size, then type, then total quota and stops at the first
// violation. Usage is read fresh from the store, and only when the first two
// checks pass.
func (s *EligibilityService) Check(ctx context.Context, userID string, fileSize int64, mimeType string, sub *domain.Subscription) (domain.EligibilityDecision, error) {
	limits := domain.GetUserLimits(sub)

	if fileSize > limits.MaxFileSize {
		return deny("File exceeds the maximum size limit of %s", domain.FormatBytes(limits.MaxFileSize)), nil
	}

	ext := domain.ExtensionFromMIME(mimeType)
	if !limits.AllowsFileType(ext) {
		return deny("File type %s is not supported in your plan", ext), nil
	}

	usage, err := s.usage.GetUserStorageUsage(ctx, userID)
	if err != nil {
		return domain.EligibilityDecision{}, err
	}
	if usage.TotalSize+fileSize > limits.TotalStorage {
		return deny("You have reached your storage limit of %s", domain.FormatBytes(limits.TotalStorage)), nil
	}

	return domain.EligibilityDecision{Eligible: true}, nil
}

func deny(format string, args ...any) domain.EligibilityDecision {
	return domain.EligibilityDecision{Reason: fmt.Sprintf(format, args...)}
}
