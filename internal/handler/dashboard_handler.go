package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/smart-student-hub-api/internal/middleware"
	"github.com/noah-isme/smart-student-hub-api/internal/service"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

// DashboardHandler exposes the role specific dashboards.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register binds dashboard routes.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/student", h.student)
	router.Get("/reviewer", h.reviewer)
}

func (h *DashboardHandler) student(c *fiber.Ctx) error {
	dashboard, err := h.service.Student(requestContext(c), middleware.IdentityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "failed to load dashboard")
	}

	setCacheHeader(c, dashboard.CacheHit)
	return utils.SendSuccess(c, "student dashboard", dashboard)
}

func (h *DashboardHandler) reviewer(c *fiber.Ctx) error {
	dashboard, err := h.service.Reviewer(requestContext(c), middleware.IdentityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "failed to load dashboard")
	}

	setCacheHeader(c, dashboard.CacheHit)
	return utils.SendSuccess(c, "reviewer dashboard", dashboard)
}

func setCacheHeader(c *fiber.Ctx, hit bool) {
	if hit {
		c.Set("X-Cache", "HIT")
		return
	}
	c.Set("X-Cache", "MISS")
}
