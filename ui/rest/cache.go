package rest

import (
	cacheapp "github.com/AzielCF/az-storage/cache/application"
	"github.com/AzielCF/az-storage/pkg/security"
	"github.com/AzielCF/az-storage/pkg/utils"
	"github.com/AzielCF/az-storage/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
)

type Cache struct {
	Service *cacheapp.Service
}

// InitRestCache expects app to be behind middleware.Auth.
func InitRestCache(app fiber.Router, service *cacheapp.Service) Cache {
	rest := Cache{Service: service}
	app.Get("/cache/stats", rest.GetStats)
	app.Delete("/cache/me", rest.ClearMyCache)
	app.Post("/cache/clear", middleware.RequireRole(security.RoleAdmin), rest.ClearAll)
	app.Post("/cache/sweep", middleware.RequireRole(security.RoleAdmin), rest.Sweep)

	return rest
}

func (handler *Cache) GetStats(c *fiber.Ctx) error {
	stats, err := handler.Service.Stats(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache stats retrieved",
		Results: stats,
	})
}

func (handler *Cache) ClearMyCache(c *fiber.Ctx) error {
	removed, err := handler.Service.ClearUserCaches(c.UserContext(), middleware.UserID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "User cache cleared successfully",
		Results: fiber.Map{"removed": removed},
	})
}

func (handler *Cache) ClearAll(c *fiber.Ctx) error {
	err := handler.Service.ClearAll(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Global cache cleared successfully",
	})
}

func (handler *Cache) Sweep(c *fiber.Ctx) error {
	removed := handler.Service.Sweep(c.UserContext())

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Expired cache entries purged",
		Results: fiber.Map{"removed": removed},
	})
}
