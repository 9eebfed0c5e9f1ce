package postgres

import (
	"context"

	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type scanRecordRepository struct {
	db *gorm.DB
}

func NewScanRecordRepository(db *gorm.DB) *scanRecordRepository {
	return &scanRecordRepository{db: db}
}

func (r *scanRecordRepository) Create(ctx context.Context, rec *domain.ScanRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *scanRecordRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.ScanRecord, error) {
	var records []*domain.ScanRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

type workoutRecordRepository struct {
	db *gorm.DB
}

func NewWorkoutRecordRepository(db *gorm.DB) *workoutRecordRepository {
	return &workoutRecordRepository{db: db}
}

func (r *workoutRecordRepository) Create(ctx context.Context, rec *domain.WorkoutRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *workoutRecordRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.WorkoutRecord, error) {
	var records []*domain.WorkoutRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}
