package service

import (
	"context"
	"errors"

	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/fitscan/fitscan-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntitlementService derives premium access from the subscription row. It
// never writes; the billing webhook is the sole writer.
type EntitlementService struct {
	subscriptionRepo repository.SubscriptionRepository
}

func NewEntitlementService(subscriptionRepo repository.SubscriptionRepository) *EntitlementService {
	return &EntitlementService{subscriptionRepo: subscriptionRepo}
}

// Resolve returns the subscription (nil when none exists) and the premium flag.
func (s *EntitlementService) Resolve(ctx context.Context, userID uuid.UUID) (*domain.Subscription, bool, error) {
	sub, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return sub, sub.Premium(), nil
}
