package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-student-hub-api/internal/dto"
	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/repository"
	"github.com/noah-isme/smart-student-hub-api/internal/utils"
)

func TestNotifyReviewPersistsAndBroadcasts(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, utils.NewValidator(), testLogger())

	stream, cleanup := svc.Subscribe("u1")
	defer cleanup()

	remarks := "needs a <b>signed</b> copy"
	err := svc.NotifyReview(context.Background(), models.Activity{
		ID:      "a1",
		OwnerID: "u1",
		Title:   "AWS <script>alert(1)</script>",
		Status:  models.ActivityStatusRejected,
		Remarks: &remarks,
	})
	require.NoError(t, err)

	select {
	case received := <-stream:
		require.Equal(t, "a1", received.ActivityID)
		require.Equal(t, NotificationTypeReview, received.Type)
		require.NotContains(t, received.Message, "<script>")
		require.NotContains(t, received.Message, "<b>")
		require.Contains(t, received.Message, "rejected")
	case <-time.After(time.Second):
		t.Fatal("expected notification on subscriber channel")
	}

	inbox, err := svc.List(context.Background(), studentU1, 10, 0)
	require.NoError(t, err)
	require.Len(t, inbox.Items, 1)
	require.EqualValues(t, 1, inbox.Unread)
	require.False(t, inbox.Items[0].Read)

	marked, err := svc.MarkRead(context.Background(), studentU1, inbox.Items[0].ID)
	require.NoError(t, err)
	require.True(t, marked.Read)

	_, err = svc.MarkRead(context.Background(), studentU2, inbox.Items[0].ID)
	require.ErrorIs(t, err, ErrNotificationNotFound)

	inbox, err = svc.List(context.Background(), studentU1, 10, 0)
	require.NoError(t, err)
	require.Zero(t, inbox.Unread)

	_, err = svc.List(context.Background(), nil, 10, 0)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNotificationServiceFansOutThroughRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	db := newTestDB(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db), redisClient, "hub", nil, utils.NewValidator(), testLogger())

	ctx := context.Background()
	subscription := redisClient.Subscribe(ctx, "hub:notifications")
	defer subscription.Close()
	_, err = subscription.Receive(ctx)
	require.NoError(t, err)

	_, err = svc.Publish(ctx, dto.NotificationCreateRequest{UserID: "u1", Type: NotificationTypeReview, ActivityID: "a1", Message: "Your activity X was approved"})
	require.NoError(t, err)

	msg, err := subscription.ReceiveMessage(ctx)
	require.NoError(t, err)

	var event relayEnvelope
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	require.Equal(t, "u1", event.Notification.UserID)
	require.NotEmpty(t, event.Origin)
}

func TestNotificationServiceDeliversAcrossNodes(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	db := newTestDB(t)
	repo := repository.NewNotificationRepository(db)
	nodeA := NewNotificationService(repo, redisClient, "hub", nil, utils.NewValidator(), testLogger())
	nodeB := NewNotificationService(repo, redisClient, "hub", nil, utils.NewValidator(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	nodeB.Start(ctx)

	require.Eventually(t, func() bool {
		return server.PubSubNumSub("hub:notifications")["hub:notifications"] == 1
	}, time.Second, 10*time.Millisecond)

	stream, cleanup := nodeB.Subscribe("u1")
	defer cleanup()

	_, err = nodeA.Publish(ctx, dto.NotificationCreateRequest{UserID: "u1", Type: NotificationTypeReview, ActivityID: "a1", Message: "Your activity X was approved"})
	require.NoError(t, err)

	select {
	case received := <-stream:
		require.Equal(t, "a1", received.ActivityID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected notification relayed from the other node")
	}
}

func TestMarkAllReadClearsInbox(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, utils.NewValidator(), testLogger())
	ctx := context.Background()

	for _, message := range []string{"first", "second"} {
		_, err := svc.Publish(ctx, dto.NotificationCreateRequest{UserID: "u1", Type: NotificationTypeReview, Message: message})
		require.NoError(t, err)
	}
	_, err := svc.Publish(ctx, dto.NotificationCreateRequest{UserID: "u2", Type: NotificationTypeReview, Message: "other"})
	require.NoError(t, err)

	updated, err := svc.MarkAllRead(ctx, studentU1)
	require.NoError(t, err)
	require.EqualValues(t, 2, updated)

	inbox, err := svc.List(ctx, studentU2, 10, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, inbox.Unread)

	_, err = svc.MarkAllRead(ctx, nil)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNotificationHubSkipsFullListeners(t *testing.T) {
	hub := newNotificationHub()
	stream, detach := hub.attach("u1")

	for i := 0; i < notificationBufferSize; i++ {
		delivered, dropped := hub.deliver(dto.NotificationResponse{UserID: "u1"})
		require.Equal(t, 1, delivered)
		require.Zero(t, dropped)
	}

	delivered, dropped := hub.deliver(dto.NotificationResponse{UserID: "u1"})
	require.Zero(t, delivered)
	require.Equal(t, 1, dropped)
	require.Len(t, stream, notificationBufferSize)

	detach()
	detach()
	require.Zero(t, hub.listenerCount("u1"))
}

func TestNotificationServiceIgnoresOwnEvents(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, utils.NewValidator(), testLogger()).(*notificationService)

	stream, cleanup := svc.Subscribe("u1")
	defer cleanup()

	own, err := json.Marshal(relayEnvelope{Origin: svc.nodeID, Notification: dto.NotificationResponse{UserID: "u1", Message: "own"}})
	require.NoError(t, err)
	svc.acceptRemote(own)

	remote, err := json.Marshal(relayEnvelope{Origin: "another-node", Notification: dto.NotificationResponse{UserID: "u1", Message: "remote"}})
	require.NoError(t, err)
	svc.acceptRemote(remote)

	select {
	case received := <-stream:
		require.Equal(t, "remote", received.Message)
	case <-time.After(time.Second):
		t.Fatal("expected remote notification")
	}
	require.Empty(t, stream)
}

func TestPublishRejectsEmptyMessage(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, utils.NewValidator(), testLogger())

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{UserID: "u1", Type: "activity.reviewed", Message: "<script></script>"})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "empty"))
}
