package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/smart-student-hub-api/internal/service"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	// Action is checked against the capability table. Empty only requires an identity.
	Action service.Action
}

// WithAuth rejects callers before the handler parses the request body.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := IdentityFromContext(c)
		if identity == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		if opts.Action == "" {
			return handler(c)
		}

		if err := service.Authorize(identity, opts.Action); err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
			}
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}

		return handler(c)
	}
}
