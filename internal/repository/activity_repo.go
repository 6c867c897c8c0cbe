package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/smart-student-hub-api/internal/models"
)

// ErrStatusConflict indicates a conditional write found the activity in a different status.
var ErrStatusConflict = errors.New("activity status changed")

// ActivityFilter narrows activity queries.
type ActivityFilter struct {
	OwnerID *string
	Status  *models.ActivityStatus
	Limit   int
}

// ActivityRepository is the Activity Store.
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id string) (models.Activity, error)
	List(ctx context.Context, filter ActivityFilter) ([]models.Activity, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Activity, error)
	ListByStatus(ctx context.Context, status models.ActivityStatus) ([]models.Activity, error)
	UpdateFields(ctx context.Context, id string, expected models.ActivityStatus, fields map[string]interface{}) error
	DeleteIfStatus(ctx context.Context, id, ownerID string, expected models.ActivityStatus) error
	CountByStatus(ctx context.Context) (map[models.ActivityStatus]int64, error)
	InsertMissing(ctx context.Context, activities []models.Activity) (int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository instantiates the GORM backed activity store.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) GetByID(ctx context.Context, id string) (models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&activity).Error; err != nil {
		return models.Activity{}, err
	}

	return activity, nil
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter) ([]models.Activity, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{})

	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var activities []models.Activity
	if err := query.Order("created_at DESC").Order("id DESC").Find(&activities).Error; err != nil {
		return nil, err
	}

	return activities, nil
}

func (r *activityRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Activity, error) {
	return r.List(ctx, ActivityFilter{OwnerID: &ownerID})
}

func (r *activityRepository) ListByStatus(ctx context.Context, status models.ActivityStatus) ([]models.Activity, error) {
	return r.List(ctx, ActivityFilter{Status: &status})
}

// UpdateFields writes fields only while the stored status still equals expected.
func (r *activityRepository) UpdateFields(ctx context.Context, id string, expected models.ActivityStatus, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, id)
	}

	return nil
}

func (r *activityRepository) DeleteIfStatus(ctx context.Context, id, ownerID string, expected models.ActivityStatus) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ? AND status = ?", id, ownerID, expected).
		Delete(&models.Activity{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, id)
	}

	return nil
}

func (r *activityRepository) CountByStatus(ctx context.Context) (map[models.ActivityStatus]int64, error) {
	var rows []struct {
		Status models.ActivityStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.ActivityStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	return counts, nil
}

// InsertMissing inserts activities whose id is not stored yet and reports how many were added.
func (r *activityRepository) InsertMissing(ctx context.Context, activities []models.Activity) (int64, error) {
	if len(activities) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&activities)
	return result.RowsAffected, result.Error
}

func (r *activityRepository) missOrConflict(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Activity{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrStatusConflict
}
