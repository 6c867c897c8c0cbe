package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/smart-student-hub-api/internal/models"
)

const (
	defaultNotificationPage = 50
	maxNotificationPage     = 100
)

// NotificationRepository stores the per-user review inbox.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id uint, userID string) (models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository constructs a repository backed by GORM.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// ListByUser returns the newest notifications first. limit is clamped to 1..100.
func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	switch {
	case limit <= 0:
		limit = defaultNotificationPage
	case limit > maxNotificationPage:
		limit = maxNotificationPage
	}
	if offset < 0 {
		offset = 0
	}

	notifications := make([]models.Notification, 0)
	err := r.inbox(ctx, userID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.inbox(ctx, userID).Where("is_read = ?", false).Count(&count).Error
	return count, err
}

// MarkRead flags a single notification. Rows owned by other users are reported as not found.
func (r *notificationRepository) MarkRead(ctx context.Context, id uint, userID string) (models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error; err != nil {
			return err
		}
		if notification.Read {
			return nil
		}
		if err := tx.Model(&notification).Update("is_read", true).Error; err != nil {
			return err
		}
		notification.Read = true
		return nil
	})
	if err != nil {
		return models.Notification{}, err
	}
	return notification, nil
}

// MarkAllRead flags every unread notification of the user and returns how many changed.
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result := r.inbox(ctx, userID).Where("is_read = ?", false).Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) inbox(ctx context.Context, userID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
}
