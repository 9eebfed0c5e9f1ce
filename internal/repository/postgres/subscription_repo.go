package postgres

import (
	"context"

	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *subscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).First(&sub, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByCustomerID(ctx context.Context, customerID string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).First(&sub, "stripe_customer_id = ?", customerID).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpsertByUserID is keyed on user_id so webhook replays overwrite in place
// instead of inserting duplicates.
func (r *subscriptionRepository) UpsertByUserID(ctx context.Context, sub *domain.Subscription) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "plan", "stripe_customer_id", "stripe_subscription_id", "updated_at",
		}),
	}).Create(sub).Error
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}
