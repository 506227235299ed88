package rest

import (
	"context"
	"sort"
	"time"

	"github.com/AzielCF/az-storage/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthRecord struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type Health struct {
	Checks  map[string]HealthCheck
	Timeout time.Duration
}

func InitRestHealth(app fiber.Router, checks map[string]HealthCheck) Health {
	handler := Health{Checks: checks, Timeout: 3 * time.Second}

	app.Get("/health/status", handler.GetStatus)

	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.Timeout)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	records := make([]HealthRecord, 0, len(names))
	for _, name := range names {
		rec := HealthRecord{Name: name, Healthy: true}
		if err := h.Checks[name](ctx); err != nil {
			rec.Healthy = false
			rec.Error = err.Error()
			healthy = false
		}
		records = append(records, rec)
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ResponseData{
			Status:  fiber.StatusServiceUnavailable,
			Code:    "UNHEALTHY",
			Message: "One or more dependencies are unavailable",
			Results: records,
		})
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: records,
	})
}
