package domain

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscription mirrors the payment provider's state for one user. Rows are
// written only by the billing webhook; everything else reads.
type Subscription struct {
	ID                   uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID               uuid.UUID          `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	Status               SubscriptionStatus `json:"status" gorm:"not null"`
	Plan                 string             `json:"plan"`
	StripeCustomerID     string             `json:"stripeCustomerId" gorm:"index"`
	StripeSubscriptionID string             `json:"stripeSubscriptionId"`
	CurrentPeriodEnd     *time.Time         `json:"currentPeriodEnd"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

// Premium holds for the statuses Stripe reports while access should be granted.
func (s *Subscription) Premium() bool {
	if s == nil {
		return false
	}
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing
}
