package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/smart-student-hub-api/internal/middleware"
	"github.com/noah-isme/smart-student-hub-api/internal/service"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// handleError maps workflow error kinds onto HTTP responses.
func handleError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	var validationErr *service.ValidationError
	var transitionErr *service.TransitionError

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.As(err, &validationErr):
		return utils.Fail(c, fiber.StatusBadRequest, validationErr.Error(), validationErr)
	case errors.As(err, &transitionErr):
		return utils.Fail(c, fiber.StatusConflict, transitionErr.Error(), fiber.Map{
			"activity_id": transitionErr.ActivityID,
			"status":      transitionErr.Current,
		})
	case errors.Is(err, service.ErrActivityNotFound), errors.Is(err, service.ErrNotificationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUpload):
		requestLogger(logger, c).Warn().Err(err).Msg("blob store failure")
		return utils.SendError(c, fiber.StatusBadGateway, service.ErrUpload.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
