package postgres

import (
	"context"
	"time"

	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *usageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) Create(ctx context.Context, entry *domain.UsageLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *usageRepository) CountByTypeSince(ctx context.Context, userID uuid.UUID, actionType domain.ActionType, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.UsageLog{}).
		Where("user_id = ? AND action_type = ? AND created_at >= ?", userID, actionType, since).
		Count(&count).Error
	return count, err
}

func (r *usageRepository) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.UsageLog{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}
