package domain

import "context"

// Setting represents a runtime switch stored in the database.
type Setting struct {
	Key   string
	Value string
}

// ISettingsRepository defines the contract for persisting dynamic settings.
type ISettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Setting, error)

	// InitSchema creates the necessary tables
	InitSchema(ctx context.Context) error
}

const (
	KeyUploadsEnabled     = "uploads_enabled"
	KeyResyncConcurrency  = "resync_concurrency"
	KeyMaintenanceMessage = "maintenance_message"
)

const (
	DefaultResyncConcurrency = 4
	MaxResyncConcurrency     = 64
)

// DynamicSettings is the decoded view of the settings table. Nil pointers mean
// "not set"; callers fall back to their defaults.
type DynamicSettings struct {
	UploadsEnabled     *bool  `json:"uploads_enabled,omitempty"`
	ResyncConcurrency  *int   `json:"resync_concurrency,omitempty"`
	MaintenanceMessage string `json:"maintenance_message,omitempty"`
}

// SettingsRequest is the admin payload; only present fields are written.
type SettingsRequest struct {
	UploadsEnabled     *bool   `json:"uploads_enabled"`
	ResyncConcurrency  *int    `json:"resync_concurrency"`
	MaintenanceMessage *string `json:"maintenance_message"`
}
