package validations

import (
	"context"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	settings "github.com/AzielCF/az-storage/core/settings/domain"
	pkgError "github.com/AzielCF/az-storage/pkg/error"
	"github.com/AzielCF/az-storage/quota/domain"
)

var mimePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9!#$&^_.+-]*/[A-Za-z0-9][A-Za-z0-9!#$&^_.+-]*$`)

func ValidateEligibilityRequest(ctx context.Context, request domain.EligibilityRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.FileName, validation.Required, validation.Length(1, 255)),
		validation.Field(&request.FileSize, validation.Required, validation.Min(int64(1))),
		validation.Field(&request.ContentType, validation.Required, validation.Match(mimePattern)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

// ValidateUploadFile checks the multipart header before any quota work is done.
// The content type is left to the eligibility check, which reports it in plan
// terms.
func ValidateUploadFile(ctx context.Context, file domain.FileUpload) error {
	err := validation.ValidateStructWithContext(ctx, &file,
		validation.Field(&file.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&file.Size, validation.Min(int64(0))),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateSubscriptionRequest(ctx context.Context, request domain.SubscriptionRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.UserID, validation.Required),
		validation.Field(&request.PlanName, validation.Required, validation.In("free", domain.PlanPro)),
		validation.Field(&request.Status, validation.In("active", "canceled", "past_due", "trialing")),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateSettingsRequest(ctx context.Context, request settings.SettingsRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ResyncConcurrency, validation.NilOrNotEmpty, validation.Min(1), validation.Max(settings.MaxResyncConcurrency)),
		validation.Field(&request.MaintenanceMessage, validation.Length(0, 500)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
