package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/fitscan/fitscan-backend/internal/domain"
	"github.com/fitscan/fitscan-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testImage = "ZmFrZS1qcGVnLWJ5dGVz"

func TestScan_RequiresAuth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := postJSON(t, ts.APIURL("/scan"), map[string]string{"image": testImage}, nil)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
}

func TestScan(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, cookie := testutil.Authenticate(t, ts, "scanner@example.com")
	userID := uuid.MustParse(user.ID)

	resp := postJSON(t, ts.APIURL("/scan"), map[string]string{"image": testImage}, cookie)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var analysis domain.MachineAnalysis
	decodeBody(t, resp, &analysis)
	assert.Equal(t, "Leg Press", analysis.MachineName)

	// The scan lands in the history and burns one usage slot.
	var records []domain.ScanRecord
	listResp := getJSON(t, ts.APIURL("/scans"), cookie, &records)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	require.Len(t, records, 1)
	assert.Equal(t, "Leg Press", records[0].MachineName)
	assert.Equal(t, userID, records[0].UserID)

	var usageCount int64
	require.NoError(t, ts.DB.DB.Model(&domain.UsageLog{}).Where("user_id = ?", userID).Count(&usageCount).Error)
	assert.Equal(t, int64(1), usageCount)
}

func TestScan_EmptyImage(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, cookie := testutil.Authenticate(t, ts, "empty@example.com")

	resp := postJSON(t, ts.APIURL("/scan"), map[string]string{"image": ""}, cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScan_FreeLimit(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, cookie := testutil.Authenticate(t, ts, "heavy@example.com")

	for i := 0; i < ts.Config.FreeDailyLimit; i++ {
		resp := postJSON(t, ts.APIURL("/scan"), map[string]string{"image": testImage}, cookie)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := postJSON(t, ts.APIURL("/scan"), map[string]string{"image": testImage}, cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// Workout generation draws from its own daily allowance.
	resp = postJSON(t, ts.APIURL("/workouts/generate"), nil, cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestScan_PremiumBypassesDailyLimit(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, cookie := testutil.Authenticate(t, ts, "premium@example.com")
	testutil.NewSubscriptionBuilder().
		WithUserID(uuid.MustParse(user.ID)).
		Build(t, ts.DB.DB)

	for i := 0; i < ts.Config.FreeDailyLimit+2; i++ {
		resp := postJSON(t, ts.APIURL("/scan"), map[string]string{"image": testImage}, cookie)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestScan_UpstreamFailure(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, cookie := testutil.Authenticate(t, ts, "unlucky@example.com")
	ts.Generator.Err = errors.New("model timeout")

	resp := postJSON(t, ts.APIURL("/scan"), map[string]string{"image": testImage}, cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// Nothing half-written lands in the history.
	var count int64
	require.NoError(t, ts.DB.DB.Model(&domain.ScanRecord{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGenerateWorkout(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, cookie := testutil.Authenticate(t, ts, "lifter@example.com")

	resp := postJSON(t, ts.APIURL("/workouts/generate"), nil, cookie)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var plan domain.WorkoutPlan
	decodeBody(t, resp, &plan)
	assert.Equal(t, "Treino A", plan.Title)
	assert.NotEmpty(t, plan.Exercises)

	var records []domain.WorkoutRecord
	listResp := getJSON(t, ts.APIURL("/workouts"), cookie, &records)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	require.Len(t, records, 1)
	assert.Equal(t, "Treino A", records[0].Title)
	assert.Equal(t, uuid.MustParse(user.ID), records[0].UserID)
}

func TestHistory_OnlyOwnRecords(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, aliceCookie := testutil.Authenticate(t, ts, "alice@example.com")
	_, bobCookie := testutil.Authenticate(t, ts, "bob@example.com")

	resp := postJSON(t, ts.APIURL("/scan"), map[string]string{"image": testImage}, aliceCookie)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var aliceRecords []domain.ScanRecord
	getJSON(t, ts.APIURL("/scans"), aliceCookie, &aliceRecords)
	assert.Len(t, aliceRecords, 1)

	var bobRecords []domain.ScanRecord
	getJSON(t, ts.APIURL("/scans"), bobCookie, &bobRecords)
	assert.Len(t, bobRecords, 0)
}

func TestUsageSummaryEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, cookie := testutil.Authenticate(t, ts, "meter@example.com")

	resp := postJSON(t, ts.APIURL("/scan"), map[string]string{"image": testImage}, cookie)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary struct {
		Premium  bool   `json:"premium"`
		Period   string `json:"period"`
		Limit    int    `json:"limit"`
		Scans    int64  `json:"scans"`
		Workouts int64  `json:"workouts"`
		Total    int64  `json:"total"`
	}
	sumResp := getJSON(t, ts.APIURL("/usage"), cookie, &summary)
	require.Equal(t, http.StatusOK, sumResp.StatusCode)

	assert.False(t, summary.Premium)
	assert.Equal(t, "day", summary.Period)
	assert.Equal(t, ts.Config.FreeDailyLimit, summary.Limit)
	assert.Equal(t, int64(1), summary.Scans)
	assert.Equal(t, int64(0), summary.Workouts)
	assert.Equal(t, int64(1), summary.Total)
}
