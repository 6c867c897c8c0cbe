package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/smart-student-hub-api/internal/service"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

// Locals keys shared with handlers.
const (
	LocalSubject  = "user_id"
	LocalRole     = "user_role"
	LocalIdentity = "identity"
)

// IdentityResolver maps an authenticated subject to a directory identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, subject string) (*service.Identity, error)
}

// ResolveIdentity loads the token subject from the User Directory. Unknown subjects
// continue unauthenticated so the workflow reports the denial itself.
func ResolveIdentity(resolver IdentityResolver, logger zerolog.Logger) fiber.Handler {
	log := logger.With().Str("component", "identity_middleware").Logger()

	return func(c *fiber.Ctx) error {
		subject, _ := c.Locals(LocalSubject).(string)
		if subject == "" {
			return c.Next()
		}

		identity, err := resolver.Resolve(c.UserContext(), subject)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				return c.Next()
			}
			log.Error().Err(err).Str("correlation_id", GetCorrelationID(c)).Msg("failed to resolve identity")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve identity")
		}

		c.Locals(LocalIdentity, identity)
		c.Locals(LocalRole, string(identity.Role))
		return c.Next()
	}
}

// IdentityFromContext returns the resolved identity, or nil when the caller is unauthenticated.
func IdentityFromContext(c *fiber.Ctx) *service.Identity {
	if c == nil {
		return nil
	}
	identity, _ := c.Locals(LocalIdentity).(*service.Identity)
	return identity
}
