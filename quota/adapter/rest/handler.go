package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	settingsapp "github.com/AzielCF/az-storage/core/settings/application"
	settingsdomain "github.com/AzielCF/az-storage/core/settings/domain"
	pkgError "github.com/AzielCF/az-storage/pkg/error"
	"github.com/AzielCF/az-storage/pkg/security"
	"github.com/AzielCF/az-storage/quota/application"
	"github.com/AzielCF/az-storage/quota/domain"
	"github.com/AzielCF/az-storage/ui/rest/middleware"
	"github.com/AzielCF/az-storage/validations"
)

// QuotaHandler maneja las peticiones REST de subida y cuotas
type QuotaHandler struct {
	subs     *application.SubscriptionService
	usage    *application.UsageService
	elig     *application.EligibilityService
	uploads  *application.UploadService
	storage  *application.StorageService
	profiles *application.ProfileService
	settings *settingsapp.SettingsService
}

// NewQuotaHandler crea una nueva instancia del handler
func NewQuotaHandler(
	subs *application.SubscriptionService,
	usage *application.UsageService,
	elig *application.EligibilityService,
	uploads *application.UploadService,
	storage *application.StorageService,
	profiles *application.ProfileService,
) *QuotaHandler {
	return &QuotaHandler{subs: subs, usage: usage, elig: elig, uploads: uploads, storage: storage, profiles: profiles}
}

// WithSettings enables the runtime upload switch and the resync concurrency setting.
func (h *QuotaHandler) WithSettings(settings *settingsapp.SettingsService) *QuotaHandler {
	h.settings = settings
	return h
}

// RegisterPublicRoutes registra las rutas sin autenticación
func (h *QuotaHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/plans", h.ListPlans)
}

// RegisterRoutes registra las rutas protegidas; router ya pasa por middleware.Auth
func (h *QuotaHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/files/upload", h.UploadFile)
	router.Post("/files/eligibility", h.CheckEligibility)
	router.Get("/storage", h.GetStorage)
	router.Get("/limits", h.GetLimits)
	router.Get("/profile", h.GetProfile)

	admin := router.Group("/admin", middleware.RequireRole(security.RoleAdmin))
	admin.Put("/subscriptions", h.UpsertSubscription)
	admin.Post("/usage/sync", h.SyncUsage)
}

// UploadFile recibe el multipart "file" y lo sube si el plan lo permite
func (h *QuotaHandler) UploadFile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	ctx := c.UserContext()

	if h.settings != nil {
		if enabled, msg := h.settings.UploadsEnabled(ctx); !enabled {
			if msg == "" {
				msg = "Uploads are temporarily disabled"
			}
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": msg})
		}
	}

	header, err := c.FormFile("file")
	if err != nil || header == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file provided"})
	}

	body, err := header.Open()
	if err != nil {
		logrus.WithError(err).Errorf("[REST] Could not open uploaded file for %s", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload file"})
	}
	defer body.Close()

	file := domain.FileUpload{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Body:        body,
	}
	if err := validations.ValidateUploadFile(ctx, file); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	sub := h.subs.Resolve(ctx, userID)

	stored, err := h.uploads.UploadFile(ctx, userID, file, sub)
	if err != nil {
		if domain.IsQuotaError(err) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error(), "quota_exceeded": true})
		}
		logrus.WithError(err).Errorf("[REST] Upload failed for %s", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload file"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"file":    stored,
		"message": "File uploaded successfully",
	})
}

// CheckEligibility evalúa una subida sin escribir nada
func (h *QuotaHandler) CheckEligibility(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	ctx := c.UserContext()

	var req domain.EligibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validations.ValidateEligibilityRequest(ctx, req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	decision, err := h.elig.Check(ctx, userID, req.FileSize, req.ContentType, h.subs.Resolve(ctx, userID))
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"data": decision})
}

// GetStorage devuelve el resumen de almacenamiento (uso cacheado)
func (h *QuotaHandler) GetStorage(c *fiber.Ctx) error {
	summary, err := h.storage.Summary(c.UserContext(), middleware.UserID(c))
	if err != nil {
		logrus.WithError(err).Errorf("[REST] Error loading storage summary")
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": "Failed to load storage information"})
	}
	return c.JSON(fiber.Map{"data": summary})
}

// GetLimits devuelve los límites del tier actual
func (h *QuotaHandler) GetLimits(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.storage.Limits(c.UserContext(), middleware.UserID(c))})
}

// GetProfile devuelve el perfil con las cifras de uso persistidas
func (h *QuotaHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.profiles.Ensure(c.UserContext(), middleware.UserID(c))
	if err != nil {
		logrus.WithError(err).Errorf("[REST] Error loading profile")
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": "Failed to load profile"})
	}
	return c.JSON(fiber.Map{"data": profile})
}

// ListPlans devuelve el catálogo de planes
func (h *QuotaHandler) ListPlans(c *fiber.Ctx) error {
	plans := domain.Plans()
	return c.JSON(fiber.Map{"data": plans, "count": len(plans)})
}

// UpsertSubscription cambia el plan de un usuario
func (h *QuotaHandler) UpsertSubscription(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req domain.SubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validations.ValidateSubscriptionRequest(ctx, req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Status == "" {
		req.Status = "active"
	}

	sub := &domain.Subscription{UserID: req.UserID, PlanName: req.PlanName, Status: req.Status}
	if err := h.subs.Upsert(ctx, sub); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"data": sub})
}

// SyncUsage recalcula y persiste el uso de uno o de todos los perfiles
func (h *QuotaHandler) SyncUsage(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if userID := c.Query("user_id"); userID != "" {
		usage, err := h.usage.SyncMetadata(ctx, userID)
		if err != nil {
			return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"data": usage})
	}

	concurrency := settingsdomain.DefaultResyncConcurrency
	if h.settings != nil {
		concurrency = h.settings.ResyncConcurrency(ctx)
	}

	synced, err := h.usage.ResyncProfiles(ctx, concurrency)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error(), "synced": synced})
	}
	return c.JSON(fiber.Map{"synced": synced})
}

func statusOf(err error) int {
	var generic pkgError.GenericError
	if errors.As(err, &generic) {
		return generic.StatusCode()
	}
	return fiber.StatusInternalServerError
}
