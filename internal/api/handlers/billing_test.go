package handlers_test

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/fitscan/fitscan-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postWebhook(t *testing.T, ts *testutil.TestServer, payload []byte, signature string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, ts.APIURL("/billing/webhook"), bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func checkoutCompletedPayload(userID, plan, customerID, subscriptionID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_checkout",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test",
				"object": "checkout.session",
				"customer": %q,
				"subscription": %q,
				"metadata": {"userId": %q, "plan": %q}
			}
		}
	}`, customerID, subscriptionID, userID, plan))
}

func subscriptionPayload(eventType, customerID, status string, periodEnd int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_sub",
		"type": %q,
		"data": {
			"object": {
				"id": "sub_test",
				"object": "subscription",
				"customer": %q,
				"status": %q,
				"current_period_end": %d
			}
		}
	}`, eventType, customerID, status, periodEnd))
}

func TestBillingWebhook_RejectsBadSignature(t *testing.T) {
	ts := testutil.NewTestServer(t)

	payload := checkoutCompletedPayload("00000000-0000-0000-0000-000000000000", "monthly", "cus_x", "sub_x")

	tests := []struct {
		name      string
		signature string
	}{
		{name: "missing header", signature: ""},
		{name: "garbage header", signature: "t=0,v1=deadbeef"},
		{name: "wrong secret", signature: testutil.StripeSignature(payload, "whsec_wrong")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postWebhook(t, ts, payload, tt.signature)
			defer resp.Body.Close()
			testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Invalid signature")
		})
	}

	var count int64
	require.NoError(t, ts.DB.DB.Model(&domain.Subscription{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestBillingWebhook_CheckoutCompleted(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, cookie := testutil.Authenticate(t, ts, "buyer@example.com")

	payload := checkoutCompletedPayload(user.ID, "monthly", "cus_123", "sub_123")
	resp := postWebhook(t, ts, payload, testutil.StripeSignature(payload, ts.Config.StripeWebhookSecret))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me meResponse
	getJSON(t, ts.APIURL("/me"), cookie, &me)
	assert.True(t, me.Premium)

	// Stripe retries and replays; the row count must stay at one.
	resp = postWebhook(t, ts, payload, testutil.StripeSignature(payload, ts.Config.StripeWebhookSecret))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, ts.DB.DB.Model(&domain.Subscription{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBillingWebhook_CheckoutWithoutUserMetadata(t *testing.T) {
	ts := testutil.NewTestServer(t)

	payload := []byte(`{
		"id": "evt_orphan",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_orphan",
				"object": "checkout.session",
				"customer": "cus_orphan",
				"metadata": {}
			}
		}
	}`)
	resp := postWebhook(t, ts, payload, testutil.StripeSignature(payload, ts.Config.StripeWebhookSecret))
	resp.Body.Close()

	// Acknowledged so Stripe stops retrying, but nothing is written.
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, ts.DB.DB.Model(&domain.Subscription{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestBillingWebhook_SubscriptionLifecycle(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, cookie := testutil.Authenticate(t, ts, "churner@example.com")

	payload := checkoutCompletedPayload(user.ID, "annual", "cus_life", "sub_life")
	resp := postWebhook(t, ts, payload, testutil.StripeSignature(payload, ts.Config.StripeWebhookSecret))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	periodEnd := time.Now().Add(365 * 24 * time.Hour).Unix()

	steps := []struct {
		name        string
		eventType   string
		status      string
		wantPremium bool
	}{
		{name: "update to trialing", eventType: "customer.subscription.updated", status: "trialing", wantPremium: true},
		{name: "update to past_due", eventType: "customer.subscription.updated", status: "past_due", wantPremium: false},
		{name: "back to active", eventType: "customer.subscription.updated", status: "active", wantPremium: true},
		{name: "deleted", eventType: "customer.subscription.deleted", status: "canceled", wantPremium: false},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			payload := subscriptionPayload(step.eventType, "cus_life", step.status, periodEnd)
			resp := postWebhook(t, ts, payload, testutil.StripeSignature(payload, ts.Config.StripeWebhookSecret))
			resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var me meResponse
			getJSON(t, ts.APIURL("/me"), cookie, &me)
			assert.Equal(t, step.wantPremium, me.Premium)
		})
	}
}

func TestBillingWebhook_UnknownEventAcknowledged(t *testing.T) {
	ts := testutil.NewTestServer(t)

	payload := []byte(`{"id": "evt_misc", "type": "invoice.paid", "data": {"object": {"id": "in_1", "object": "invoice"}}}`)
	resp := postWebhook(t, ts, payload, testutil.StripeSignature(payload, ts.Config.StripeWebhookSecret))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCheckoutLinks(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.APIURL("/billing/checkout-links"))
	require.NoError(t, err)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var links map[string]string
	testutil.AssertJSONResponse(t, resp, &links)
	assert.Equal(t, ts.Config.CheckoutLinkMonthly, links["monthly"])
	assert.Equal(t, ts.Config.CheckoutLinkQuarterly, links["quarterly"])
	assert.Equal(t, ts.Config.CheckoutLinkAnnual, links["annual"])
}
