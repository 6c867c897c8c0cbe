package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/smart-student-hub-api/internal/middleware"
	"github.com/noah-isme/smart-student-hub-api/internal/service"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

// ProfileHandler returns the caller's directory entry.
type ProfileHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(service service.UserService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register binds the profile route.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("/me", h.me)
}

func (h *ProfileHandler) me(c *fiber.Ctx) error {
	profile, err := h.service.Profile(requestContext(c), middleware.IdentityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "failed to load profile")
	}

	return utils.SendSuccess(c, "profile", profile)
}
