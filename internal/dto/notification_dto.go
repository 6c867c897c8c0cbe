package dto

import (
	"time"

	"github.com/noah-isme/smart-student-hub-api/internal/models"
)

// NotificationCreateRequest describes the payload to create a notification.
type NotificationCreateRequest struct {
	UserID     string `json:"user_id" validate:"required,max=64"`
	Type       string `json:"type" validate:"required,max=64"`
	ActivityID string `json:"activity_id" validate:"max=36"`
	Message    string `json:"message" validate:"required,min=1,max=2000"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID         uint      `json:"id"`
	UserID     string    `json:"user_id"`
	Type       string    `json:"type"`
	ActivityID string    `json:"activity_id,omitempty"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         model.ID,
		UserID:     model.UserID,
		Type:       model.Type,
		ActivityID: model.ActivityID,
		Message:    model.Message,
		Read:       model.Read,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}

// NotificationListResponse is a page of the inbox plus the total unread count.
type NotificationListResponse struct {
	Items  []NotificationResponse `json:"items"`
	Unread int64                  `json:"unread"`
}
