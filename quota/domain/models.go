package domain

import (
	"io"
	"time"
)

// PlanPro es el único plan_name que activa el tier PRO
const PlanPro = "pro"

// Subscription representa la suscripción de pago de un usuario
type Subscription struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	PlanName         string     `json:"plan_name"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Profile guarda las cifras de uso persistidas para mostrar en el dashboard
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email,omitempty"`
	StorageUsed int64     `json:"storage_used"`
	FilesCount  int       `json:"files_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UsageSnapshot es el uso agregado de un usuario en un momento dado
type UsageSnapshot struct {
	TotalSize  int64 `json:"totalSize"`
	FilesCount int   `json:"filesCount"`
}

// EligibilityDecision es el resultado de evaluar una subida. Nunca se cachea.
type EligibilityDecision struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// FileUpload describe el archivo candidato
type FileUpload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// ObjectInfo es una entrada del listado del object store
type ObjectInfo struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// StoredFile es el descriptor que devuelve el object store tras escribir
type StoredFile struct {
	ID          string `json:"id,omitempty"`
	Path        string `json:"path"`
	FullPath    string `json:"fullPath"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	ETag        string `json:"etag,omitempty"`
}

// StorageSummary alimenta la vista de almacenamiento del dashboard
type StorageSummary struct {
	Usage            UsageSnapshot `json:"usage"`
	Limits           TierLimits    `json:"limits"`
	UsagePercentage  float64       `json:"usage_percentage"`
	UsedFormatted    string        `json:"used_formatted"`
	LimitFormatted   string        `json:"limit_formatted"`
	MaxFileFormatted string        `json:"max_file_formatted"`
}
