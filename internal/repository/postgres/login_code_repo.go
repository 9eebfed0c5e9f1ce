package postgres

import (
	"context"

	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type loginCodeRepository struct {
	db *gorm.DB
}

func NewLoginCodeRepository(db *gorm.DB) *loginCodeRepository {
	return &loginCodeRepository{db: db}
}

func (r *loginCodeRepository) Create(ctx context.Context, code *domain.LoginCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *loginCodeRepository) GetLatestByEmail(ctx context.Context, email string) (*domain.LoginCode, error) {
	var code domain.LoginCode
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *loginCodeRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.LoginCode{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

func (r *loginCodeRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Delete(&domain.LoginCode{}, "email = ?", email).Error
}
