package models

import "time"

// Notification informs a user about a change to one of their activities.
type Notification struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"size:64;index" json:"user_id"`
	Type       string    `gorm:"size:64" json:"type"`
	ActivityID string    `gorm:"size:36;index" json:"activity_id"`
	Message    string    `gorm:"type:text" json:"message"`
	Read       bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
