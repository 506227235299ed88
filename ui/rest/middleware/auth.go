package middleware

import (
	"strings"

	"github.com/AzielCF/az-storage/pkg/security"
	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID = "user_id"
	LocalRole   = "user_role"
)

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
}

// Auth requires a valid bearer token and exposes its user id to handlers.
func Auth(signer *security.Signer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c)
		}

		claims, err := signer.ValidateToken(parts[1])
		if err != nil {
			return unauthorized(c)
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(role security.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got, ok := c.Locals(LocalRole).(security.Role)
		if !ok || got != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient permissions"})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user, or "" outside Auth.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
