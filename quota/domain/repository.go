package domain

import (
	"context"
	"io"
	"time"
)

// ObjectStore es el almacenamiento de blobs; cada usuario vive bajo "<userID>/"
type ObjectStore interface {
	// List devuelve las entradas directas bajo prefix
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Upload(ctx context.Context, path string, body io.Reader, size int64, contentType string) (StoredFile, error)
}

// ProfileRepository define la persistencia de las cifras de uso (app.db)
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	ListIDs(ctx context.Context) ([]string, error)

	// UpdateStorageUsage escribe storage_used, files_count y updated_at. Un id
	// inexistente no es un error.
	UpdateStorageUsage(ctx context.Context, userID string, usage UsageSnapshot, at time.Time) error
}

// SubscriptionRepository define la persistencia de suscripciones
type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *Subscription) error
	GetByUserID(ctx context.Context, userID string) (*Subscription, error)
}

// UploadLocker serializa las subidas de un mismo usuario
type UploadLocker interface {
	// Lock bloquea hasta obtener el lock o hasta que ctx termine
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}
