// Package paywall decides whether a user may run a metered feature and
// records the use when they may.
package paywall

import (
	"context"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/internal/repository/contract"
	"ai-jobassist-be/pkg/access"
	"ai-jobassist-be/pkg/events"
	"ai-jobassist-be/pkg/plans"
	"ai-jobassist-be/pkg/usage"

	"github.com/google/uuid"
)

type Gate struct {
	resolver  *access.Resolver
	counter   *usage.Counter
	catalog   *plans.Catalog
	publisher events.Publisher
	logger    logger.ILogger
}

func NewGate(
	resolver *access.Resolver,
	counter *usage.Counter,
	catalog *plans.Catalog,
	publisher events.Publisher,
	log logger.ILogger,
) *Gate {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Gate{
		resolver:  resolver,
		counter:   counter,
		catalog:   catalog,
		publisher: publisher,
		logger:    log,
	}
}

// CheckAccess answers without recording anything.
func (g *Gate) CheckAccess(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey) (*entity.AccessDecision, error) {
	acc, decision, quota, err := g.prepare(ctx, userId, feature)
	if err != nil || decision.Allowed {
		return decision, err
	}

	period, err := g.counter.Period(ctx, userId)
	if err != nil {
		return g.storeFailure(decision, "period", err)
	}
	decision.ResetsAt = period.End

	if quota.Unlimited {
		decision.Allowed = true
		return decision, nil
	}

	used, err := g.counter.CountIn(ctx, userId, feature, period)
	if err != nil {
		return g.storeFailure(decision, "usage", err)
	}
	decision.Used = used
	if used < quota.Limit {
		decision.Allowed = true
		decision.Remaining = remaining(quota.Limit, used)
		return decision, nil
	}

	g.deny(decision, acc)
	return decision, nil
}

// CheckAndRecordUsage decides and, when allowed, records one use in the same
// atomic store operation. Exempt roles are never counted. Unlimited quotas are
// still counted for reporting.
func (g *Gate) CheckAndRecordUsage(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey) (*entity.AccessDecision, error) {
	acc, decision, quota, err := g.prepare(ctx, userId, feature)
	if err != nil || decision.Allowed {
		return decision, err
	}

	period, err := g.counter.Period(ctx, userId)
	if err != nil {
		return g.storeFailure(decision, "period", err)
	}
	decision.ResetsAt = period.End

	limit := quota.Limit
	if quota.Unlimited {
		limit = contract.Unlimited
	}

	count, applied, err := g.counter.IncrementIn(ctx, userId, feature, period, limit)
	if err != nil {
		return g.storeFailure(decision, "increment", err)
	}
	decision.Used = count

	if !applied {
		g.deny(decision, acc)
		g.publishDenial(ctx, userId, decision)
		return decision, nil
	}

	decision.Allowed = true
	if !quota.Unlimited {
		decision.Remaining = remaining(quota.Limit, count)
	}
	return decision, nil
}

func (g *Gate) GetUpgradeMessage(feature entity.FeatureKey, tier entity.Tier, role entity.Role) string {
	return UpgradeMessage(g.catalog, feature, tier, role)
}

func (g *Gate) ModelClassFor(tier entity.Tier, role entity.Role) entity.ModelClass {
	return ModelClassFor(g.catalog, tier, role)
}

// prepare resolves the user and the quota. The returned decision is already
// final when it is allowed (exempt role) or when err is set.
func (g *Gate) prepare(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey) (access.Access, *entity.AccessDecision, entity.Quota, error) {
	decision := &entity.AccessDecision{FeatureKey: feature, Tier: entity.TierFree}
	if userId == uuid.Nil {
		return access.Free(), decision, entity.Quota{}, ErrNoUser
	}

	acc, err := g.resolver.Resolve(ctx, userId)
	if err != nil {
		// The resolver already returned the free tier; carry on with it.
		g.logger.Warn("PAYWALL", "Tier resolution failed, applying free tier", map[string]interface{}{
			"user_id": userId.String(),
			"feature": string(feature),
			"error":   err.Error(),
		})
	}

	decision.Tier = acc.Tier
	decision.Role = acc.Role
	decision.ModelClass = g.ModelClassFor(acc.Tier, acc.Role)

	if acc.Exempt() {
		decision.Allowed = true
		decision.Unlimited = true
		return acc, decision, entity.Quota{Unlimited: true}, nil
	}

	quota, cfgErr := g.quotaFor(acc.Tier, feature)
	if cfgErr != nil {
		g.logger.Error("PAYWALL", "Paywall configuration defect, denying", map[string]interface{}{
			"user_id": userId.String(),
			"feature": string(feature),
			"tier":    string(acc.Tier),
			"reason":  cfgErr.Reason,
		})
		return acc, decision, quota, cfgErr
	}

	decision.Unlimited = quota.Unlimited
	decision.Limit = quota.Limit
	return acc, decision, quota, nil
}

func (g *Gate) quotaFor(tier entity.Tier, feature entity.FeatureKey) (entity.Quota, *ConfigurationError) {
	if !feature.Known() {
		return entity.Quota{}, &ConfigurationError{Feature: feature, Tier: tier, Reason: "unknown feature"}
	}
	quota, ok := g.catalog.Quota(tier, feature)
	if !ok {
		return entity.Quota{}, &ConfigurationError{Feature: feature, Tier: tier, Reason: "no quota configured"}
	}
	if !quota.Unlimited && quota.Limit < 0 {
		return entity.Quota{}, &ConfigurationError{Feature: feature, Tier: tier, Reason: "negative quota"}
	}
	return quota, nil
}

func (g *Gate) deny(decision *entity.AccessDecision, acc access.Access) {
	decision.Allowed = false
	zero := 0
	decision.Remaining = &zero
	decision.PaywallInfo = &entity.PaywallInfo{
		FeatureKey:  decision.FeatureKey,
		Tier:        decision.Tier,
		Limit:       decision.Limit,
		Used:        decision.Used,
		ResetsAt:    decision.ResetsAt,
		Message:     g.GetUpgradeMessage(decision.FeatureKey, acc.Tier, acc.Role),
		UpgradeTier: g.catalog.NextTier(acc.Tier),
	}
}

func (g *Gate) storeFailure(decision *entity.AccessDecision, stage string, err error) (*entity.AccessDecision, error) {
	decision.Allowed = false
	g.logger.Error("PAYWALL", "Usage store failed, denying", map[string]interface{}{
		"feature": string(decision.FeatureKey),
		"stage":   stage,
		"error":   err.Error(),
	})
	return decision, err
}

func (g *Gate) publishDenial(ctx context.Context, userId uuid.UUID, decision *entity.AccessDecision) {
	evt := events.New(events.TypeQuotaExceeded, map[string]interface{}{
		"user_id":   userId.String(),
		"feature":   string(decision.FeatureKey),
		"tier":      string(decision.Tier),
		"limit":     decision.Limit,
		"used":      decision.Used,
		"resets_at": decision.ResetsAt.Format(time.RFC3339),
	})
	if err := g.publisher.Publish(ctx, evt); err != nil {
		g.logger.Warn("PAYWALL", "Failed to publish quota event", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	}
}

func remaining(limit, used int) *int {
	r := limit - used
	if r < 0 {
		r = 0
	}
	return &r
}
