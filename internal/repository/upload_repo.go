package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/smart-student-hub-api/internal/models"
)

// UploadRepository keeps the metadata of proof files already sent to the blob store.
type UploadRepository interface {
	Create(ctx context.Context, record *models.UploadRecord) error
	// FindByChecksum returns the newest record a user stored with the given content hash,
	// or gorm.ErrRecordNotFound.
	FindByChecksum(ctx context.Context, userID, checksum string) (models.UploadRecord, error)
	// FindByURL returns the record a user stored under url, or gorm.ErrRecordNotFound.
	FindByURL(ctx context.Context, userID, url string) (models.UploadRecord, error)
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository constructs a repository for upload records.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, record *models.UploadRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *uploadRepository) FindByChecksum(ctx context.Context, userID, checksum string) (models.UploadRecord, error) {
	var record models.UploadRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND checksum = ?", userID, checksum).
		Order("created_at DESC").
		First(&record).Error
	return record, err
}

func (r *uploadRepository) FindByURL(ctx context.Context, userID, url string) (models.UploadRecord, error) {
	var record models.UploadRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND url = ?", userID, url).
		First(&record).Error
	return record, err
}
