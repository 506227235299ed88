package rest

import (
	settingsapp "github.com/AzielCF/az-storage/core/settings/application"
	"github.com/AzielCF/az-storage/core/settings/domain"
	pkgError "github.com/AzielCF/az-storage/pkg/error"
	"github.com/AzielCF/az-storage/pkg/security"
	"github.com/AzielCF/az-storage/pkg/utils"
	"github.com/AzielCF/az-storage/ui/rest/middleware"
	"github.com/AzielCF/az-storage/validations"
	"github.com/gofiber/fiber/v2"
)

type Settings struct {
	Service *settingsapp.SettingsService
}

func InitRestSettings(app fiber.Router, service *settingsapp.SettingsService) Settings {
	rest := Settings{Service: service}
	admin := app.Group("/admin/settings", middleware.RequireRole(security.RoleAdmin))
	admin.Get("", rest.GetSettings)
	admin.Put("", rest.UpdateSettings)

	return rest
}

func (handler *Settings) GetSettings(c *fiber.Ctx) error {
	ds, err := handler.Service.GetDynamicSettings(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Settings retrieved",
		Results: ds,
	})
}

func (handler *Settings) UpdateSettings(c *fiber.Ctx) error {
	var request domain.SettingsRequest
	if err := c.BodyParser(&request); err != nil {
		panic(pkgError.ValidationError("invalid request body"))
	}
	utils.PanicIfNeeded(validations.ValidateSettingsRequest(c.UserContext(), request))
	utils.PanicIfNeeded(handler.Service.Apply(c.UserContext(), request))

	ds, err := handler.Service.GetDynamicSettings(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Settings updated",
		Results: ds,
	})
}
