package handler_test

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-student-hub-api/internal/dto"
	"github.com/noah-isme/smart-student-hub-api/internal/handler"
	"github.com/noah-isme/smart-student-hub-api/internal/repository"
	"github.com/noah-isme/smart-student-hub-api/internal/service"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

func newNotificationApp(t *testing.T) (*fiber.App, service.NotificationService) {
	t.Helper()

	db := newTestDB(t)
	svc := service.NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, utils.NewValidator(), zerolog.Nop())
	app := newTestApp()
	handler.NewNotificationHandler(svc, zerolog.Nop(), time.Second).Register(app.Group("/api/v1/notifications"))
	return app, svc
}

func TestNotificationHandler_ListAndMarkRead(t *testing.T) {
	app, svc := newNotificationApp(t)

	created, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:     "u1",
		Type:       service.NotificationTypeReview,
		ActivityID: "activity-1",
		Message:    "Your activity Hackathon was approved",
	})
	require.NoError(t, err)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/notifications/?limit=10", "u1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	listed := decodeEnvelope(t, resp)
	require.Contains(t, string(listed.Data), "Hackathon")
	require.JSONEq(t, `{"count":1,"unread":1}`, string(listed.Meta))

	resp = doRequest(t, app, http.MethodPatch, "/api/v1/notifications/"+itoa(created.ID)+"/read", "u2", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodPatch, "/api/v1/notifications/"+itoa(created.ID)+"/read", "u1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, string(decodeEnvelope(t, resp).Data), `"read":true`)
}

func TestNotificationHandler_MarkAllRead(t *testing.T) {
	app, svc := newNotificationApp(t)

	for _, message := range []string{"first", "second"} {
		_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{UserID: "u1", Type: service.NotificationTypeReview, Message: message})
		require.NoError(t, err)
	}

	resp := doRequest(t, app, http.MethodPatch, "/api/v1/notifications/read-all", "u1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"updated":2}`, string(decodeEnvelope(t, resp).Data))

	resp = doRequest(t, app, http.MethodGet, "/api/v1/notifications/", "u1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"count":2,"unread":0}`, string(decodeEnvelope(t, resp).Meta))
}

func TestNotificationHandler_BadInput(t *testing.T) {
	app, _ := newNotificationApp(t)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/notifications/?limit=abc", "u1", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodPatch, "/api/v1/notifications/x/read", "u1", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, "/api/v1/notifications/", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestNotificationHandler_WebsocketRequiresUpgrade(t *testing.T) {
	app, _ := newNotificationApp(t)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/notifications/ws", "u1", nil)
	require.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestWriteNotificationEventFormat(t *testing.T) {
	var buf bytes.Buffer
	writer := bufio.NewWriter(&buf)

	require.NoError(t, handler.WriteNotificationEvent(writer, dto.NotificationResponse{ID: 3, UserID: "u1", Message: "hi"}))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "event: notification\ndata: {"))
	require.True(t, strings.HasSuffix(out, "}\n\n"))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
