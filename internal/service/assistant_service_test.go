package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/pkg/paywall"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCV      = "Summary\nBackend engineer with six years of Go, PostgreSQL and Redis.\nExperience\nBuilt billing systems.\nEducation\nBSc Computer Science\nSkills\nGo, SQL"
	testPosting = "We are hiring a backend engineer to build billing services in Go with PostgreSQL and Redis."
)

func newAssistant(h *harness, provider *fakeLLM) IAssistantService {
	return NewAssistantService(h.gate, provider, ModelNames{Cheap: "small-model", Capable: "large-model"}, time.Second, h.log)
}

func TestGenerateCoverLetter_FreeTierQuota(t *testing.T) {
	h := newHarness(t)
	provider := &fakeLLM{reply: "  Dear hiring manager  "}
	svc := newAssistant(h, provider)
	userId := h.user(t)
	ctx := context.Background()
	req := &dto.CoverLetterRequest{JobDescription: testPosting, CVText: testCV, CompanyName: "Acme"}

	for i := 1; i <= 3; i++ {
		res, err := svc.GenerateCoverLetter(ctx, userId, req)
		require.NoError(t, err)
		assert.Equal(t, "Dear hiring manager", res.Content)
		assert.Equal(t, i, res.Usage.Used)
		require.NotNil(t, res.Usage.Remaining)
		assert.Equal(t, 3-i, *res.Usage.Remaining)
	}

	_, err := svc.GenerateCoverLetter(ctx, userId, req)
	var quotaErr *paywall.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	require.NotNil(t, quotaErr.Decision.PaywallInfo)
	assert.Equal(t, entity.TierPro, quotaErr.Decision.PaywallInfo.UpgradeTier)
	assert.Len(t, provider.models, 3)
	assert.Equal(t, "small-model", provider.models[0])
	assert.Contains(t, provider.messages[0][1].Content, "Acme")
}

func TestGenerate_PaidTierUsesCapableModel(t *testing.T) {
	h := newHarness(t)
	provider := &fakeLLM{reply: "ok"}
	svc := newAssistant(h, provider)
	userId := h.user(t)
	h.subscribe(t, userId, "pro_monthly", entity.SubscriptionStatusActive)

	res, err := svc.SuggestCVImprovements(context.Background(), userId, &dto.CVSuggestionsRequest{JobDescription: testPosting, CVText: testCV})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ModelClassCapable), res.ModelClass)
	assert.Equal(t, []string{"large-model"}, provider.models)
	assert.Contains(t, provider.messages[0][1].Content, "at most 8 suggestions")
}

func TestGenerate_FailedModelCallStillCounts(t *testing.T) {
	h := newHarness(t)
	svc := newAssistant(h, &fakeLLM{err: errors.New("upstream 500")})
	userId := h.user(t)
	ctx := context.Background()

	_, err := svc.GenerateCoverLetter(ctx, userId, &dto.CoverLetterRequest{JobDescription: testPosting, CVText: testCV})
	assert.ErrorIs(t, err, ErrAssistantUnavailable)

	used, err := h.counter.GetUsage(ctx, userId, entity.FeatureCoverLetters)
	require.NoError(t, err)
	assert.Equal(t, 1, used)
}

func TestScoreATS_RecordsUsage(t *testing.T) {
	h := newHarness(t)
	svc := newAssistant(h, &fakeLLM{})
	userId := h.user(t)
	ctx := context.Background()

	res, err := svc.ScoreATS(ctx, userId, &dto.ATSScoreRequest{JobDescription: testPosting, CVText: testCV})
	require.NoError(t, err)
	assert.Greater(t, res.Score, 0)
	assert.Contains(t, res.MatchedKeywords, "postgresql")
	assert.Equal(t, 1, res.Usage.Used)
	assert.Equal(t, 5, res.Usage.Limit)
}

func TestAssistant_BlankDocumentsAreNotMetered(t *testing.T) {
	h := newHarness(t)
	svc := newAssistant(h, &fakeLLM{})
	userId := h.user(t)
	ctx := context.Background()

	_, err := svc.ScoreATS(ctx, userId, &dto.ATSScoreRequest{JobDescription: testPosting, CVText: strings.Repeat(" ", 40)})
	assert.ErrorIs(t, err, ErrEmptyDocument)

	used, err := h.counter.GetUsage(ctx, userId, entity.FeatureATSScores)
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestAssistant_AdminIsNeverMetered(t *testing.T) {
	h := newHarness(t)
	provider := &fakeLLM{reply: "ok"}
	svc := newAssistant(h, provider)
	userId := h.user(t)
	ctx := context.Background()
	require.NoError(t, h.factory.NewUnitOfWork(ctx).RoleGrantRepository().Create(ctx, &entity.RoleGrant{
		UserId: userId, Role: entity.RoleAdmin, IsActive: true,
	}))

	for i := 0; i < 5; i++ {
		res, err := svc.GenerateCoverLetter(ctx, userId, &dto.CoverLetterRequest{JobDescription: testPosting, CVText: testCV})
		require.NoError(t, err)
		assert.True(t, res.Usage.Unlimited)
	}

	used, err := h.counter.GetUsage(ctx, userId, entity.FeatureCoverLetters)
	require.NoError(t, err)
	assert.Zero(t, used)
	assert.Equal(t, "large-model", provider.models[0])
}
