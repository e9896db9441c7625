package service

import (
	"context"
	"testing"

	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/pkg/paywall"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUsageStatus(t *testing.T) {
	h := newHarness(t)
	svc := NewUsageService(h.gate, h.resolver, h.counter, h.catalog)
	ctx := context.Background()
	userId := h.user(t)

	for i := 0; i < 2; i++ {
		_, err := h.counter.Increment(ctx, userId, entity.FeatureCVGenerations)
		require.NoError(t, err)
	}

	res, err := svc.GetUsageStatus(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, "free", res.Tier)
	assert.True(t, res.UpgradeAvailable)
	assert.True(t, res.PeriodEnd.After(res.PeriodStart))

	byKey := map[string]dto.FeatureUsageResponse{}
	for _, f := range res.Features {
		byKey[f.FeatureKey] = f
	}
	cv := byKey["cv_generations"]
	assert.Equal(t, 2, cv.Used)
	assert.Equal(t, 3, cv.Limit)
	require.NotNil(t, cv.Remaining)
	assert.Equal(t, 1, *cv.Remaining)
	assert.True(t, cv.CanUse)

	h.subscribe(t, userId, "premium_monthly", entity.SubscriptionStatusActive)
	res, err = svc.GetUsageStatus(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, "premium", res.Tier)
	assert.False(t, res.UpgradeAvailable)
	for _, f := range res.Features {
		assert.True(t, f.Unlimited, f.FeatureKey)
		assert.Equal(t, -1, f.Limit)
	}
}

func TestCheckFeature(t *testing.T) {
	h := newHarness(t)
	svc := NewUsageService(h.gate, h.resolver, h.counter, h.catalog)
	ctx := context.Background()
	userId := h.user(t)

	res, err := svc.CheckFeature(ctx, userId, &dto.FeatureCheckRequest{FeatureKey: "cv_generations"})
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	for i := 0; i < 3; i++ {
		_, err := h.counter.Increment(ctx, userId, entity.FeatureCVGenerations)
		require.NoError(t, err)
	}
	_, err = svc.CheckFeature(ctx, userId, &dto.FeatureCheckRequest{FeatureKey: "cv_generations"})
	var quotaErr *paywall.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Contains(t, quotaErr.Decision.PaywallInfo.Message, "Upgrade to Pro")
}

func TestGetPlans(t *testing.T) {
	h := newHarness(t)
	svc := NewUsageService(h.gate, h.resolver, h.counter, h.catalog)

	out := svc.GetPlans(context.Background())
	require.Len(t, out, 4)
	assert.Equal(t, "free", out[0].Id)
	assert.Equal(t, 3, out[0].Limits["cv_generations"].Limit)
	assert.Equal(t, -1, out[1].Limits["ats_scores"].Limit)
}
