package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/fitscan/fitscan-backend/internal/repository/postgres"
	"github.com/fitscan/fitscan-backend/internal/service"
	"github.com/fitscan/fitscan-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingService_HandleCheckoutCompleted(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	billingService := service.NewBillingService(repos.Subscription)
	entitlementService := service.NewEntitlementService(repos.Subscription)
	ctx := context.Background()

	user := testutil.NewUserBuilder().Build(t, testDB.DB)

	in := service.CheckoutCompletedInput{
		UserID:         user.ID,
		Plan:           "monthly",
		CustomerID:     "cus_123",
		SubscriptionID: "sub_123",
	}
	require.NoError(t, billingService.HandleCheckoutCompleted(ctx, in))

	sub, premium, err := entitlementService.Resolve(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, premium)
	assert.Equal(t, domain.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, "monthly", sub.Plan)
	assert.Equal(t, "cus_123", sub.StripeCustomerID)

	// Webhooks are delivered at-least-once; a replay must not create a
	// second row.
	require.NoError(t, billingService.HandleCheckoutCompleted(ctx, in))

	var count int64
	require.NoError(t, testDB.DB.Model(&domain.Subscription{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBillingService_HandleSubscriptionUpdated(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	billingService := service.NewBillingService(repos.Subscription)
	entitlementService := service.NewEntitlementService(repos.Subscription)
	ctx := context.Background()

	user := testutil.NewUserBuilder().Build(t, testDB.DB)
	testutil.NewSubscriptionBuilder().
		WithUserID(user.ID).
		WithCustomerID("cus_upd").
		Build(t, testDB.DB)

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Truncate(time.Second)

	tests := []struct {
		name        string
		status      string
		wantPremium bool
	}{
		{name: "trialing keeps premium", status: "trialing", wantPremium: true},
		{name: "active keeps premium", status: "active", wantPremium: true},
		{name: "past_due drops premium", status: "past_due", wantPremium: false},
		{name: "canceled drops premium", status: "canceled", wantPremium: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := billingService.HandleSubscriptionUpdated(ctx, "cus_upd", "sub_upd", tt.status, periodEnd)
			require.NoError(t, err)

			sub, premium, err := entitlementService.Resolve(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPremium, premium)
			assert.Equal(t, domain.SubscriptionStatus(tt.status), sub.Status)
			require.NotNil(t, sub.CurrentPeriodEnd)
			assert.WithinDuration(t, periodEnd, *sub.CurrentPeriodEnd, time.Second)
		})
	}
}

func TestBillingService_HandleSubscriptionUpdated_UnknownCustomer(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	billingService := service.NewBillingService(repos.Subscription)
	ctx := context.Background()

	err := billingService.HandleSubscriptionUpdated(ctx, "cus_ghost", "sub_ghost", "active", time.Now())
	require.NoError(t, err)

	var count int64
	require.NoError(t, testDB.DB.Model(&domain.Subscription{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestBillingService_HandleSubscriptionDeleted(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	billingService := service.NewBillingService(repos.Subscription)
	entitlementService := service.NewEntitlementService(repos.Subscription)
	ctx := context.Background()

	user := testutil.NewUserBuilder().Build(t, testDB.DB)
	testutil.NewSubscriptionBuilder().
		WithUserID(user.ID).
		WithCustomerID("cus_del").
		Build(t, testDB.DB)

	require.NoError(t, billingService.HandleSubscriptionDeleted(ctx, "cus_del"))

	sub, premium, err := entitlementService.Resolve(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, premium)
	assert.Equal(t, domain.SubscriptionStatusCanceled, sub.Status)

	// A delete for a customer that was never seen is acknowledged silently.
	assert.NoError(t, billingService.HandleSubscriptionDeleted(ctx, "cus_ghost"))
}

func TestEntitlementService_Resolve(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	entitlementService := service.NewEntitlementService(repos.Subscription)
	ctx := context.Background()

	t.Run("no subscription row", func(t *testing.T) {
		user := testutil.NewUserBuilder().Build(t, testDB.DB)

		sub, premium, err := entitlementService.Resolve(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, sub)
		assert.False(t, premium)
	})

	statuses := []struct {
		status      domain.SubscriptionStatus
		wantPremium bool
	}{
		{domain.SubscriptionStatusActive, true},
		{domain.SubscriptionStatusTrialing, true},
		{domain.SubscriptionStatusCanceled, false},
	}

	for _, tt := range statuses {
		t.Run(string(tt.status), func(t *testing.T) {
			user := testutil.NewUserBuilder().Build(t, testDB.DB)
			testutil.NewSubscriptionBuilder().
				WithUserID(user.ID).
				WithStatus(tt.status).
				Build(t, testDB.DB)

			_, premium, err := entitlementService.Resolve(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPremium, premium)
		})
	}
}
