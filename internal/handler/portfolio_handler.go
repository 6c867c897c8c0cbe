package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/smart-student-hub-api/internal/middleware"
	"github.com/noah-isme/smart-student-hub-api/internal/service"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

// PortfolioHandler serves the caller's portfolio.
type PortfolioHandler struct {
	service service.PortfolioService
	logger  zerolog.Logger
}

// NewPortfolioHandler constructs a portfolio handler.
func NewPortfolioHandler(service service.PortfolioService, logger zerolog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		service: service,
		logger:  logger.With().Str("component", "portfolio_handler").Logger(),
	}
}

// Register binds the portfolio route.
func (h *PortfolioHandler) Register(router fiber.Router) {
	router.Get("/", h.get)
}

func (h *PortfolioHandler) get(c *fiber.Ctx) error {
	portfolio, err := h.service.Get(requestContext(c), middleware.IdentityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "failed to build portfolio")
	}

	setCacheHeader(c, portfolio.CacheHit)
	return utils.SendSuccess(c, "portfolio", portfolio)
}
