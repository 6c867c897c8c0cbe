package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/smart-student-hub-api/internal/observability"
)

const defaultSlowThreshold = 500 * time.Millisecond

// Observability records request metrics for API routes and writes one structured log line per request.
// Requests slower than slow are logged at warn level even when they succeed.
func Observability(logger zerolog.Logger, slow time.Duration) fiber.Handler {
	observability.RegisterMetrics()
	if slow <= 0 {
		slow = defaultSlowThreshold
	}

	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Path(), "/api/") {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		route := routeTemplate(c)
		method := c.Method()
		status := responseStatus(c, err)
		code := strconv.Itoa(status)

		observability.HTTPRequests().WithLabelValues(method, route, code).Inc()
		observability.HTTPLatency().WithLabelValues(method, route).Observe(elapsed.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.HTTPErrors().WithLabelValues(method, route, code).Inc()
		}

		event := logger.Info()
		message := "request completed"
		switch {
		case status >= fiber.StatusInternalServerError:
			event, message = logger.Error(), "request failed"
		case status >= fiber.StatusBadRequest:
			event, message = logger.Warn(), "request rejected"
		case elapsed > slow:
			event, message = logger.Warn(), "slow request"
		}

		event.
			Str("correlation_id", GetCorrelationID(c)).
			Str("user_id", subjectOf(c)).
			Str("role", roleOf(c)).
			Str("method", method).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Msg(message)

		return err
	}
}

// responseStatus reports the status the error handler will write when err is a fiber error.
func responseStatus(c *fiber.Ctx, err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	if err != nil {
		return fiber.StatusInternalServerError
	}
	return c.Response().StatusCode()
}

func routeTemplate(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" {
		return route.Path
	}
	return c.Path()
}

func subjectOf(c *fiber.Ctx) string {
	subject, _ := c.Locals(LocalSubject).(string)
	return subject
}

func roleOf(c *fiber.Ctx) string {
	if identity := IdentityFromContext(c); identity != nil {
		return string(identity.Role)
	}
	return ""
}
