package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

// RequireRole ensures the resolved identity holds one of the allowed roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		if parsed, ok := models.ParseRole(string(role)); ok {
			allowed[parsed] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		identity := IdentityFromContext(c)
		if identity == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if _, ok := allowed[identity.Role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
