package plans

import (
	"testing"

	"ai-jobassist-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, c.Validate())

	q, ok := c.Quota(entity.TierFree, entity.FeatureCVGenerations)
	require.True(t, ok)
	assert.Equal(t, entity.Quota{Limit: 3}, q)

	q, ok = c.Quota(entity.TierPro, entity.FeatureATSScores)
	require.True(t, ok)
	assert.True(t, q.Unlimited)

	plan, ok := c.PlanByPriceId("price_pro_monthly")
	require.True(t, ok)
	assert.Equal(t, "pro_monthly", plan.Id)
	assert.Equal(t, entity.TierPro, plan.Tier)
	assert.Equal(t, entity.ModelClassCapable, plan.ModelClass)

	assert.Equal(t, entity.ModelClassCheap, c.ModelClass(entity.TierFree))
	assert.Equal(t, "free", c.Plans()[0].Id)
}

func TestNextTier(t *testing.T) {
	c := Default()
	assert.Equal(t, entity.TierPro, c.NextTier(entity.TierFree))
	assert.Equal(t, entity.TierPremium, c.NextTier(entity.TierPro))
	assert.Equal(t, entity.Tier(""), c.NextTier(entity.TierPremium))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad quota", "tiers:\n  free:\n    limits:\n      cv_generations: lots\n"},
		{"missing free", "tiers:\n  pro:\n    limits: {}\n"},
		{"unknown tier", "tiers:\n  free: {}\n  gold: {}\n"},
		{"undefined plan tier", "tiers:\n  free: {}\nplans:\n  - id: x\n    tier: pro\n"},
		{"duplicate price", "tiers:\n  free: {}\nplans:\n  - id: a\n    tier: free\n    provider_price_ids: [p]\n  - id: b\n    tier: free\n    provider_price_ids: [p]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestValidate_FlagsNegativeAndMissing(t *testing.T) {
	c, err := Parse([]byte("tiers:\n  free:\n    limits:\n      cv_generations: -2\n      cover_letters: 1\n"))
	require.NoError(t, err)

	problems := c.Validate()
	assert.Len(t, problems, 2)

	q, ok := c.Quota(entity.TierFree, entity.FeatureCVGenerations)
	require.True(t, ok)
	assert.Equal(t, -2, q.Limit)
}
