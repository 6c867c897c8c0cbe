package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/smart-student-hub-api/internal/dto"
	"github.com/noah-isme/smart-student-hub-api/internal/middleware"
	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/service"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

// AuditHandler exposes the audit trail to administrators.
type AuditHandler struct {
	service service.AuditService
	logger  zerolog.Logger
}

// NewAuditHandler constructs an audit handler.
func NewAuditHandler(service service.AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register binds audit routes.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("/", middleware.RequireRole(models.RoleAdmin), h.list)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	var req dto.AuditLogListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.service.List(requestContext(c), middleware.IdentityFromContext(c), req)
	if err != nil {
		return handleError(c, h.logger, err, "failed to list audit logs")
	}

	return utils.OK(c, result.Items, "audit logs", result.Pagination)
}
