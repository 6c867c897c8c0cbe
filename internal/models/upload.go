package models

import "time"

// UploadRecord stores metadata for a proof document persisted in the blob store.
type UploadRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;index" json:"user_id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	MimeType  string    `gorm:"size:128;not null" json:"mime_type"`
	SizeBytes int64     `gorm:"not null" json:"size_bytes"`
	Checksum  string    `gorm:"size:128;index" json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// All returns every model managed by the service, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Activity{},
		&AuditLog{},
		&Notification{},
		&UploadRecord{},
	}
}
