package service

import (
	"context"

	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/mapper"
	"ai-jobassist-be/internal/repository/contract"
	"ai-jobassist-be/pkg/access"
	"ai-jobassist-be/pkg/paywall"
	"ai-jobassist-be/pkg/plans"
	"ai-jobassist-be/pkg/usage"

	"github.com/google/uuid"
)

type IUsageService interface {
	GetPlans(ctx context.Context) []*dto.PlanResponse
	CheckFeature(ctx context.Context, userId uuid.UUID, req *dto.FeatureCheckRequest) (*dto.AccessDecisionResponse, error)
	GetUsageStatus(ctx context.Context, userId uuid.UUID) (*dto.UsageStatusResponse, error)
}

type usageService struct {
	gate         *paywall.Gate
	resolver     *access.Resolver
	counter      *usage.Counter
	catalog      *plans.Catalog
	accessMapper *mapper.AccessMapper
}

func NewUsageService(gate *paywall.Gate, resolver *access.Resolver, counter *usage.Counter, catalog *plans.Catalog) IUsageService {
	return &usageService{
		gate:         gate,
		resolver:     resolver,
		counter:      counter,
		catalog:      catalog,
		accessMapper: mapper.NewAccessMapper(),
	}
}

func (s *usageService) GetPlans(ctx context.Context) []*dto.PlanResponse {
	defs := s.catalog.Plans()
	res := make([]*dto.PlanResponse, 0, len(defs))
	for _, p := range defs {
		limits := make(map[string]dto.PlanLimitResponse, len(p.Limits))
		for feature, q := range p.Limits {
			limit := q.Limit
			if q.Unlimited {
				limit = contract.Unlimited
			}
			limits[string(feature)] = dto.PlanLimitResponse{Limit: limit, Unlimited: q.Unlimited}
		}
		res = append(res, &dto.PlanResponse{
			Id:           p.Id,
			Name:         p.Name,
			Tier:         string(p.Tier),
			Price:        p.Price,
			Currency:     p.Currency,
			BillingCycle: string(p.BillingCycle),
			ModelClass:   string(p.ModelClass),
			Purchasable:  p.Purchasable,
			Limits:       limits,
		})
	}
	return res
}

// CheckFeature answers the paywall question without spending anything. A
// denial comes back as *paywall.QuotaExceededError.
func (s *usageService) CheckFeature(ctx context.Context, userId uuid.UUID, req *dto.FeatureCheckRequest) (*dto.AccessDecisionResponse, error) {
	decision, err := s.gate.CheckAccess(ctx, userId, entity.FeatureKey(req.FeatureKey))
	if err != nil {
		return nil, err
	}
	if err := paywall.Denied(decision); err != nil {
		return nil, err
	}
	return s.accessMapper.DecisionToResponse(decision), nil
}

func (s *usageService) GetUsageStatus(ctx context.Context, userId uuid.UUID) (*dto.UsageStatusResponse, error) {
	acc, err := s.resolver.Resolve(ctx, userId)
	if err != nil {
		return nil, err
	}
	period, counts, err := s.counter.Snapshot(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := &dto.UsageStatusResponse{
		UserId:           userId,
		Tier:             string(acc.Tier),
		Role:             string(acc.Role),
		PlanId:           acc.PlanId,
		PeriodStart:      period.Start,
		PeriodEnd:        period.End,
		Features:         make([]dto.FeatureUsageResponse, 0, len(entity.MeteredFeatures)),
		UpgradeAvailable: !acc.Exempt() && s.catalog.NextTier(acc.Tier) != "",
	}

	for _, feature := range entity.MeteredFeatures {
		used := counts[feature]
		item := dto.FeatureUsageResponse{FeatureKey: string(feature), Used: used}

		quota, ok := s.catalog.Quota(acc.Tier, feature)
		switch {
		case acc.Exempt() || (ok && quota.Unlimited):
			item.Unlimited = true
			item.Limit = contract.Unlimited
			item.CanUse = true
		case ok && quota.Limit >= 0:
			left := quota.Limit - used
			if left < 0 {
				left = 0
			}
			item.Limit = quota.Limit
			item.Remaining = &left
			item.CanUse = left > 0
		default:
			// Misconfigured quota: shown as unusable, matching the gate.
			zero := 0
			item.Remaining = &zero
		}
		res.Features = append(res.Features, item)
	}
	return res, nil
}
