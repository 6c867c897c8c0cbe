package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/smart-student-hub-api/internal/config"
	"github.com/noah-isme/smart-student-hub-api/internal/handler"
	"github.com/noah-isme/smart-student-hub-api/internal/middleware"
	"github.com/noah-isme/smart-student-hub-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ActivityHandler     *handler.ActivityHandler
	UploadHandler       *handler.UploadHandler
	PortfolioHandler    *handler.PortfolioHandler
	DashboardHandler    *handler.DashboardHandler
	NotificationHandler *handler.NotificationHandler
	ProfileHandler      *handler.ProfileHandler
	AuditHandler        *handler.AuditHandler
	JWTMiddleware       fiber.Handler
	IdentityMiddleware  fiber.Handler
	HealthProbes        []handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))

	authenticated := api.Group("", authChain(deps)...)

	writeLimit := cfg.SubmitRateLimit
	if writeLimit <= 0 {
		writeLimit = 10
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.
			WithSubmitMiddleware(middleware.RateLimit("activity_submit", writeLimit, time.Minute)).
			Register(authenticated.Group("/activities"))
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(authenticated.Group("/uploads"), middleware.RateLimit("proof_upload", writeLimit, time.Minute))
	}
	if deps.PortfolioHandler != nil {
		deps.PortfolioHandler.Register(authenticated.Group("/portfolio"))
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(authenticated.Group("/dashboard"))
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(authenticated.Group("/notifications"))
	}
	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(authenticated.Group("/audit-logs"))
	}
	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(authenticated)
	}
}

func authChain(deps Dependencies) []fiber.Handler {
	chain := make([]fiber.Handler, 0, 2)
	if deps.JWTMiddleware != nil {
		chain = append(chain, deps.JWTMiddleware)
	}
	if deps.IdentityMiddleware != nil {
		chain = append(chain, deps.IdentityMiddleware)
	}
	if len(chain) == 0 {
		chain = append(chain, func(c *fiber.Ctx) error { return c.Next() })
	}
	return chain
}
