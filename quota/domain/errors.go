package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrSubscriptionNotFound se retorna cuando el usuario no tiene suscripción
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrProfileNotFound se retorna cuando no existe el perfil del usuario
	ErrProfileNotFound = errors.New("profile not found")
)

// EligibilityError se retorna cuando una subida viola los límites del tier.
// Error() es exactamente el motivo legible.
type EligibilityError struct {
	Reason string
}

func (e *EligibilityError) Error() string   { return e.Reason }
func (e *EligibilityError) ErrCode() string { return "QUOTA_EXCEEDED" }
func (e *EligibilityError) StatusCode() int { return http.StatusForbidden }

// StoreUnavailableError se retorna cuando el object store no puede listar
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("object store unavailable during %s: %v", e.Op, e.Err)
}
func (e *StoreUnavailableError) Unwrap() error    { return e.Err }
func (e *StoreUnavailableError) ErrCode() string { return "STORE_UNAVAILABLE" }
func (e *StoreUnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

// StoreWriteError se retorna cuando la escritura del objeto falla
type StoreWriteError struct {
	Path string
	Err  error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}
func (e *StoreWriteError) Unwrap() error    { return e.Err }
func (e *StoreWriteError) ErrCode() string { return "STORE_WRITE_ERROR" }
func (e *StoreWriteError) StatusCode() int { return http.StatusBadGateway }

// MetadataSyncError se retorna cuando el objeto ya se escribió pero las cifras
// del perfil no pudieron actualizarse. No hay rollback.
type MetadataSyncError struct {
	UserID string
	Err    error
}

func (e *MetadataSyncError) Error() string {
	return fmt.Sprintf("failed to update storage metadata for %s: %v", e.UserID, e.Err)
}
func (e *MetadataSyncError) Unwrap() error    { return e.Err }
func (e *MetadataSyncError) ErrCode() string { return "METADATA_SYNC_ERROR" }
func (e *MetadataSyncError) StatusCode() int { return http.StatusInternalServerError }

var quotaPhrases = []string{
	"exceeds the maximum size limit",
	"is not supported in your plan",
	"reached your storage limit",
}

// IsQuotaError matches an eligibility denial, by type or, for errors that
// crossed a boundary as plain text, by its reason phrase.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var elig *EligibilityError
	if errors.As(err, &elig) {
		return true
	}
	msg := err.Error()
	for _, p := range quotaPhrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
