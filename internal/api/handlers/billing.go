package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fitscan/fitscan-backend/internal/config"
	"github.com/fitscan/fitscan-backend/internal/service"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const webhookMaxBodyBytes = 65536

type BillingHandler struct {
	billingService *service.BillingService
	cfg            *config.Config
}

func NewBillingHandler(billingService *service.BillingService, cfg *config.Config) *BillingHandler {
	return &BillingHandler{billingService: billingService, cfg: cfg}
}

// Webhook verifies the Stripe signature over the raw body and applies the
// event. All writes are idempotent upserts, so replays and out-of-order
// delivery are safe to acknowledge.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, webhookMaxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.cfg.StripeWebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		err = h.handleCheckoutCompleted(r, event)
	case "customer.subscription.created", "customer.subscription.updated":
		err = h.handleSubscriptionUpdated(r, event)
	case "customer.subscription.deleted":
		err = h.handleSubscriptionDeleted(r, event)
	default:
		// Unknown events are acknowledged so Stripe stops retrying them.
	}

	if err != nil {
		log.Printf("ERROR [BillingHandler.Webhook] %s: %v", event.Type, err)
		writeError(w, http.StatusInternalServerError, "Failed to apply event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *BillingHandler) handleCheckoutCompleted(r *http.Request, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return err
	}

	userID, err := uuid.Parse(session.Metadata["userId"])
	if err != nil {
		// Checkout sessions created outside the app carry no userId; there is
		// nothing to bind them to.
		log.Printf("[BillingHandler] checkout %s without usable userId metadata, ignoring", session.ID)
		return nil
	}

	in := service.CheckoutCompletedInput{
		UserID: userID,
		Plan:   session.Metadata["plan"],
	}
	if session.Customer != nil {
		in.CustomerID = session.Customer.ID
	}
	if session.Subscription != nil {
		in.SubscriptionID = session.Subscription.ID
	}

	return h.billingService.HandleCheckoutCompleted(r.Context(), in)
}

func (h *BillingHandler) handleSubscriptionUpdated(r *http.Request, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return err
	}
	if sub.Customer == nil {
		return nil
	}

	var periodEnd time.Time
	if sub.CurrentPeriodEnd > 0 {
		periodEnd = time.Unix(sub.CurrentPeriodEnd, 0)
	}

	return h.billingService.HandleSubscriptionUpdated(r.Context(), sub.Customer.ID, sub.ID, string(sub.Status), periodEnd)
}

func (h *BillingHandler) handleSubscriptionDeleted(r *http.Request, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return err
	}
	if sub.Customer == nil {
		return nil
	}
	return h.billingService.HandleSubscriptionDeleted(r.Context(), sub.Customer.ID)
}

// CheckoutLinks returns the configured Stripe payment links per plan.
func (h *BillingHandler) CheckoutLinks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"monthly":   h.cfg.CheckoutLinkMonthly,
		"quarterly": h.cfg.CheckoutLinkQuarterly,
		"annual":    h.cfg.CheckoutLinkAnnual,
	})
}
