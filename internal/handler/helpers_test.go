package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/smart-student-hub-api/internal/middleware"
	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/service"
)

const testUserHeader = "X-Test-User"

var testIdentities = map[string]*service.Identity{
	"u1":     {UserID: "u1", Role: models.RoleStudent, Department: "Computer Science"},
	"u2":     {UserID: "u2", Role: models.RoleStudent, Department: "Mechanical"},
	"f1":     {UserID: "f1", Role: models.RoleFaculty},
	"admin1": {UserID: "admin1", Role: models.RoleAdmin},
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
	Message string          `json:"message"`
}

// newTestApp returns an app whose requests carry the identity named by the test header.
func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if identity, ok := testIdentities[c.Get(testUserHeader)]; ok {
			c.Locals(middleware.LocalSubject, identity.UserID)
			c.Locals(middleware.LocalIdentity, identity)
			c.Locals(middleware.LocalRole, string(identity.Role))
		}
		return c.Next()
	})
	return app
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func doRequest(t *testing.T, app *fiber.App, method, path, user string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var out envelope
	decodeResponse(t, resp, &out)
	return out
}
