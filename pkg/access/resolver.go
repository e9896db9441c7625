// Package access resolves the effective tier and role behind every paywall decision.
package access

import (
	"context"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/internal/repository/unitofwork"
	"ai-jobassist-be/pkg/plans"

	"github.com/google/uuid"
)

// roleTier is the tier an exempt role is treated as.
const roleTier = entity.TierPremium

type Access struct {
	Tier         entity.Tier
	Role         entity.Role
	Grant        *entity.RoleGrant
	Subscription *entity.UserSubscription
	PlanId       string
}

func (a Access) Exempt() bool {
	return a.Role.Exempt()
}

func Free() Access {
	return Access{Tier: entity.TierFree}
}

type Resolver struct {
	uowFactory unitofwork.RepositoryFactory
	catalog    *plans.Catalog
	logger     logger.ILogger
	now        func() time.Time
}

func NewResolver(uowFactory unitofwork.RepositoryFactory, catalog *plans.Catalog, log logger.ILogger) *Resolver {
	return &Resolver{
		uowFactory: uowFactory,
		catalog:    catalog,
		logger:     log,
		now:        time.Now,
	}
}

// Resolve reads the user's role grant and current subscription. Any store
// failure yields the free tier together with the error; callers must never
// treat an error as permission.
func (r *Resolver) Resolve(ctx context.Context, userId uuid.UUID) (Access, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	now := r.now().UTC()

	grant, err := uow.RoleGrantRepository().FindEffective(ctx, userId, now)
	if err != nil {
		r.logger.Error("ACCESS", "Role lookup failed, resolving as free", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return Free(), err
	}
	if grant.EffectiveAt(now) {
		return Access{Tier: roleTier, Role: grant.Role, Grant: grant}, nil
	}

	sub, err := uow.SubscriptionRepository().FindCurrentByUserId(ctx, userId)
	if err != nil {
		r.logger.Error("ACCESS", "Subscription lookup failed, resolving as free", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return Free(), err
	}
	if sub == nil || !sub.Status.Entitling() {
		out := Free()
		out.Subscription = sub
		return out, nil
	}

	plan, ok := r.catalog.Plan(sub.PlanId)
	if !ok {
		r.logger.Error("ACCESS", "Subscription references unknown plan", map[string]interface{}{
			"user_id":         userId.String(),
			"plan_id":         sub.PlanId,
			"subscription_id": sub.Id.String(),
		})
		out := Free()
		out.Subscription = sub
		return out, nil
	}

	return Access{Tier: plan.Tier, Subscription: sub, PlanId: plan.Id}, nil
}
