package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/smart-student-hub-api/internal/dto"
	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/observability"
	"github.com/noah-isme/smart-student-hub-api/internal/repository"
)

// NotificationTypeReview tags notifications produced by a review decision.
const NotificationTypeReview = "activity.reviewed"

// ErrEmptyNotification indicates the message had no text left after sanitising.
var ErrEmptyNotification = errors.New("notification message empty after sanitization")

// NotificationService keeps the review inbox and pushes new entries to connected clients.
type NotificationService interface {
	ReviewNotifier
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
	List(ctx context.Context, identity *Identity, limit, offset int) (dto.NotificationListResponse, error)
	MarkRead(ctx context.Context, identity *Identity, id uint) (dto.NotificationResponse, error)
	MarkAllRead(ctx context.Context, identity *Identity) (int64, error)
	Subscribe(userID string) (<-chan dto.NotificationResponse, func())
	Start(ctx context.Context)
}

type notificationService struct {
	repo      repository.NotificationRepository
	relays    []notificationRelay
	hub       *notificationHub
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	nodeID    string
}

// relayEnvelope is the wire form exchanged between nodes.
type relayEnvelope struct {
	Origin       string                   `json:"origin"`
	Notification dto.NotificationResponse `json:"notification"`
	SentAt       time.Time                `json:"sent_at"`
}

// NewNotificationService constructs the notification service. redisClient and natsConn are optional
// and only used when channelBase is set.
func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) NotificationService {
	return &notificationService{
		repo:      repo,
		relays:    buildRelays(channelBase, redisClient, natsConn),
		hub:       newNotificationHub(),
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "notification_service").Logger(),
		tracer:    observability.Tracer("service/notification"),
		nodeID:    uuid.NewString(),
	}
}

// Start begins consuming events from other nodes until ctx is cancelled.
func (s *notificationService) Start(ctx context.Context) {
	for _, relay := range s.relays {
		relay := relay
		go func() {
			if err := relay.receive(ctx, s.acceptRemote); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error().Err(err).Str("relay", relay.name()).Msg("notification relay stopped")
			}
		}()
	}
}

func (s *notificationService) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NotificationResponse{}, asValidationError(err)
	}

	message := strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))
	if message == "" {
		return dto.NotificationResponse{}, ErrEmptyNotification
	}

	ctx, span := s.tracer.Start(ctx, "notifications.publish", trace.WithAttributes(
		attribute.String("notification.user_id", payload.UserID),
		attribute.String("notification.type", payload.Type),
	))
	defer span.End()

	model := models.Notification{
		UserID:     payload.UserID,
		Type:       payload.Type,
		ActivityID: payload.ActivityID,
		Message:    message,
	}
	if err := s.repo.Create(ctx, &model); err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	response := dto.NewNotificationResponse(model)
	s.dispatch(response, "local")
	s.relay(ctx, response)

	return response, nil
}

// NotifyReview tells the owner of an activity about the reviewer's decision.
func (s *notificationService) NotifyReview(ctx context.Context, activity models.Activity) error {
	message := fmt.Sprintf("Your activity %s was %s", activity.Title, activity.Status)
	if activity.Status == models.ActivityStatusRejected && activity.Remarks != nil && *activity.Remarks != "" {
		message += ": " + *activity.Remarks
	}

	_, err := s.Publish(ctx, dto.NotificationCreateRequest{
		UserID:     activity.OwnerID,
		Type:       NotificationTypeReview,
		ActivityID: activity.ID,
		Message:    message,
	})
	return err
}

func (s *notificationService) List(ctx context.Context, identity *Identity, limit, offset int) (dto.NotificationListResponse, error) {
	if identity == nil || strings.TrimSpace(identity.UserID) == "" {
		return dto.NotificationListResponse{}, ErrUnauthenticated
	}

	notifications, err := s.repo.ListByUser(ctx, identity.UserID, limit, offset)
	if err != nil {
		return dto.NotificationListResponse{}, err
	}

	unread, err := s.repo.CountUnread(ctx, identity.UserID)
	if err != nil {
		return dto.NotificationListResponse{}, err
	}

	return dto.NotificationListResponse{
		Items:  dto.NewNotificationResponseSlice(notifications),
		Unread: unread,
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, identity *Identity, id uint) (dto.NotificationResponse, error) {
	if identity == nil || strings.TrimSpace(identity.UserID) == "" {
		return dto.NotificationResponse{}, ErrUnauthenticated
	}

	notification, err := s.repo.MarkRead(ctx, id, identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotificationResponse{}, ErrNotificationNotFound
		}
		return dto.NotificationResponse{}, err
	}

	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, identity *Identity) (int64, error) {
	if identity == nil || strings.TrimSpace(identity.UserID) == "" {
		return 0, ErrUnauthenticated
	}

	updated, err := s.repo.MarkAllRead(ctx, identity.UserID)
	if err != nil {
		return 0, err
	}

	s.logger.Debug().Str("user_id", identity.UserID).Int64("updated", updated).Msg("inbox marked read")
	return updated, nil
}

func (s *notificationService) Subscribe(userID string) (<-chan dto.NotificationResponse, func()) {
	stream, detach := s.hub.attach(userID)
	observability.NotificationClients().Inc()

	var once sync.Once
	return stream, func() {
		once.Do(func() {
			detach()
			observability.NotificationClients().Dec()
		})
	}
}

func (s *notificationService) dispatch(notification dto.NotificationResponse, origin string) {
	observability.NotificationsPublished().WithLabelValues(notification.Type).Inc()

	delivered, dropped := s.hub.deliver(notification)
	if dropped > 0 {
		s.logger.Warn().
			Str("user_id", notification.UserID).
			Str("origin", origin).
			Int("delivered", delivered).
			Int("dropped", dropped).
			Msg("slow notification listeners skipped")
	}
}

func (s *notificationService) relay(ctx context.Context, notification dto.NotificationResponse) {
	if len(s.relays) == 0 {
		return
	}

	payload, err := json.Marshal(relayEnvelope{Origin: s.nodeID, Notification: notification, SentAt: time.Now().UTC()})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode notification event")
		return
	}

	for _, relay := range s.relays {
		if err := relay.send(ctx, payload); err != nil {
			s.logger.Warn().Err(err).Str("relay", relay.name()).Msg("failed to relay notification")
		}
	}
}

// acceptRemote delivers events published by other nodes. Events this node sent are ignored.
func (s *notificationService) acceptRemote(payload []byte) {
	var envelope relayEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid notification event payload")
		return
	}

	if envelope.Origin == s.nodeID || envelope.Notification.UserID == "" {
		return
	}

	notification := envelope.Notification
	if notification.Type == "" {
		notification.Type = NotificationTypeReview
	}
	s.dispatch(notification, "remote")
}
