package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-storage/quota/domain"
)

// UploadService orquesta la subida: elegibilidad, escritura y sincronización
type UploadService struct {
	eligibility *EligibilityService
	usage       *UsageService
	store       domain.ObjectStore
	locker      domain.UploadLocker

	now    func() time.Time
	suffix func() string
}

// NewUploadService crea el orquestador. Con locker nil las subidas del mismo
// usuario no se serializan.
func NewUploadService(eligibility *EligibilityService, usage *UsageService, store domain.ObjectStore, locker domain.UploadLocker) *UploadService {
	return &UploadService{
		eligibility: eligibility,
		usage:       usage,
		store:       store,
		locker:      locker,
		now:         time.Now,
		suffix:      randomSuffix,
	}
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// StoragePath is "<userID>/<unixMillis>-<suffix>-<name>".
func StoragePath(userID string, at time.Time, suffix, name string) string {
	return fmt.Sprintf("%s%d-%s-%s", UserPrefix(userID), at.UnixMilli(), suffix, name)
}

// UploadFile writes file for userID when the subscription's tier allows it.
//
// A denied upload returns *EligibilityError and writes nothing. A failed write
// returns *StoreWriteError and leaves metadata untouched. After a successful
// write, usage is recomputed and persisted once; if that fails the descriptor is
// still returned together with *MetadataSyncError.
func (s *UploadService) UploadFile(ctx context.Context, userID string, file domain.FileUpload, sub *domain.Subscription) (domain.StoredFile, error) {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, userID)
		if err != nil {
			return domain.StoredFile{}, fmt.Errorf("failed to serialize upload for %s: %w", userID, err)
		}
		defer unlock()
	}

	decision, err := s.eligibility.Check(ctx, userID, file.Size, file.ContentType, sub)
	if err != nil {
		return domain.StoredFile{}, err
	}
	if !decision.Eligible {
		logrus.Infof("[UPLOAD] Rejected %s for %s: %s", file.Name, userID, decision.Reason)
		return domain.StoredFile{}, &domain.EligibilityError{Reason: decision.Reason}
	}

	path := StoragePath(userID, s.now(), s.suffix(), file.Name)
	stored, err := s.store.Upload(ctx, path, file.Body, file.Size, file.ContentType)
	if err != nil {
		logrus.WithError(err).Errorf("[UPLOAD] Error writing %s", path)
		return domain.StoredFile{}, &domain.StoreWriteError{Path: path, Err: err}
	}

	if _, err := s.usage.SyncMetadata(ctx, userID); err != nil {
		return stored, err
	}

	logrus.Infof("[UPLOAD] Stored %s (%s)", path, domain.FormatBytes(file.Size))
	return stored, nil
}
