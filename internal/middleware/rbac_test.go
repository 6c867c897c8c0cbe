package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/service"
)

func withIdentity(identity *service.Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identity != nil {
			c.Locals(LocalIdentity, identity)
		}
		return c.Next()
	}
}

func TestRequireRoleAllowsAuthorizedRoles(t *testing.T) {
	app := fiber.New()
	app.Use(withIdentity(&service.Identity{UserID: "a1", Role: models.RoleAdmin}))
	app.Use(RequireRole(models.RoleAdmin, models.RoleFaculty))
	app.Get("/audit", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/audit", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRejectsUnauthorizedRoles(t *testing.T) {
	app := fiber.New()
	app.Use(withIdentity(&service.Identity{UserID: "s1", Role: models.RoleStudent}))
	app.Use(RequireRole(models.RoleAdmin))
	app.Get("/audit", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/audit", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	app := fiber.New()
	app.Use(RequireRole(models.RoleAdmin))
	app.Get("/audit", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/audit", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
