package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/service"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

type directoryStub map[string]*service.Identity

func (d directoryStub) Resolve(_ context.Context, subject string) (*service.Identity, error) {
	if subject == "broken" {
		return nil, errors.New("database down")
	}
	identity, ok := d[subject]
	if !ok {
		return nil, service.ErrUnauthenticated
	}
	return identity, nil
}

func newIdentityApp() *fiber.App {
	directory := directoryStub{
		"demo-student-1": {UserID: "demo-student-1", Role: models.RoleStudent, Department: "Computer Science"},
	}

	app := fiber.New()
	app.Use(JWTProtected(testSecret))
	app.Use(ResolveIdentity(directory, zerolog.Nop()))
	app.Get("/me", func(c *fiber.Ctx) error {
		identity := IdentityFromContext(c)
		if identity == nil {
			return c.JSON(fiber.Map{"authenticated": false})
		}
		return c.JSON(fiber.Map{"authenticated": true, "user_id": identity.UserID, "role": identity.Role})
	})
	return app
}

func TestJWTProtectedResolvesIdentity(t *testing.T) {
	app := newIdentityApp()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": "demo-student-1", "exp": time.Now().Add(time.Hour).Unix()}))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, true, body["authenticated"])
	require.Equal(t, "demo-student-1", body["user_id"])
	require.Equal(t, "student", body["role"])
}

func TestJWTProtectedUnknownSubjectStaysUnauthenticated(t *testing.T) {
	app := newIdentityApp()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": "ghost"}))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, false, body["authenticated"])
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	app := newIdentityApp()

	expired := signToken(t, jwt.MapClaims{"sub": "demo-student-1", "exp": time.Now().Add(-time.Hour).Unix()})
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "demo-student-1"}).SignedString([]byte("other"))
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"expired":    "Bearer " + expired,
		"foreign":    "Bearer " + foreign,
		"no subject": "Bearer " + signToken(t, jwt.MapClaims{"role": "admin"}),
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, name)
	}
}

func TestJWTProtectedAcceptsQueryToken(t *testing.T) {
	app := newIdentityApp()

	req := httptest.NewRequest(http.MethodGet, "/me?access_token="+signToken(t, jwt.MapClaims{"sub": "demo-student-1"}), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestResolveIdentityDirectoryFailure(t *testing.T) {
	app := newIdentityApp()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": "broken"}))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestRateLimitKeysByIdentity(t *testing.T) {
	app := fiber.New()
	current := &service.Identity{UserID: "u1", Role: models.RoleStudent}
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(LocalIdentity, current)
		return c.Next()
	})
	app.Post("/", RateLimit("submit", 1, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	first, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, first.StatusCode)

	second, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, second.StatusCode)

	current = &service.Identity{UserID: "u2", Role: models.RoleStudent}
	other, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, other.StatusCode)
}
