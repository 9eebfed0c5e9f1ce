package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/fitscan/fitscan-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BillingService applies payment-provider webhook events to subscription
// rows. Events arrive at-least-once and possibly out of order, so every
// write is an upsert keyed by a stable identifier.
type BillingService struct {
	subscriptionRepo repository.SubscriptionRepository
}

func NewBillingService(subscriptionRepo repository.SubscriptionRepository) *BillingService {
	return &BillingService{subscriptionRepo: subscriptionRepo}
}

type CheckoutCompletedInput struct {
	UserID         uuid.UUID
	Plan           string
	CustomerID     string
	SubscriptionID string
}

// HandleCheckoutCompleted activates premium for the user named in the
// checkout metadata, binding user, customer and subscription ids together.
func (s *BillingService) HandleCheckoutCompleted(ctx context.Context, in CheckoutCompletedInput) error {
	sub := &domain.Subscription{
		ID:                   uuid.New(),
		UserID:               in.UserID,
		Status:               domain.SubscriptionStatusActive,
		Plan:                 in.Plan,
		StripeCustomerID:     in.CustomerID,
		StripeSubscriptionID: in.SubscriptionID,
	}
	return s.subscriptionRepo.UpsertByUserID(ctx, sub)
}

// HandleSubscriptionUpdated mirrors the remote status and period end onto the
// row matched by customer id. Updates for unknown customers are dropped.
func (s *BillingService) HandleSubscriptionUpdated(ctx context.Context, customerID, subscriptionID, status string, periodEnd time.Time) error {
	existing, err := s.subscriptionRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[BillingService] subscription update for unknown customer %s, ignoring", customerID)
			return nil
		}
		return err
	}

	existing.Status = domain.SubscriptionStatus(status)
	existing.StripeSubscriptionID = subscriptionID
	if !periodEnd.IsZero() {
		existing.CurrentPeriodEnd = &periodEnd
	}
	return s.subscriptionRepo.Update(ctx, existing)
}

// HandleSubscriptionDeleted marks the row matched by customer id as canceled.
func (s *BillingService) HandleSubscriptionDeleted(ctx context.Context, customerID string) error {
	existing, err := s.subscriptionRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	existing.Status = domain.SubscriptionStatusCanceled
	return s.subscriptionRepo.Update(ctx, existing)
}
