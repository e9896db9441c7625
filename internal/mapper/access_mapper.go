package mapper

import (
	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/repository/contract"
)

type AccessMapper struct{}

func NewAccessMapper() *AccessMapper {
	return &AccessMapper{}
}

func (m *AccessMapper) DecisionToResponse(d *entity.AccessDecision) *dto.AccessDecisionResponse {
	if d == nil {
		return nil
	}

	res := &dto.AccessDecisionResponse{
		Allowed:    d.Allowed,
		FeatureKey: string(d.FeatureKey),
		Tier:       string(d.Tier),
		Role:       string(d.Role),
		Unlimited:  d.Unlimited,
		Limit:      d.Limit,
		Used:       d.Used,
		Remaining:  d.Remaining,
		ModelClass: string(d.ModelClass),
	}
	if d.Unlimited {
		res.Limit = contract.Unlimited
	}
	if !d.ResetsAt.IsZero() {
		resets := d.ResetsAt
		res.ResetsAt = &resets
	}
	if d.PaywallInfo != nil {
		info := m.PaywallInfoToResponse(d.PaywallInfo)
		res.PaywallInfo = &info
	}
	return res
}

func (m *AccessMapper) PaywallInfoToResponse(p *entity.PaywallInfo) dto.PaywallInfoResponse {
	return dto.PaywallInfoResponse{
		FeatureKey:  string(p.FeatureKey),
		Tier:        string(p.Tier),
		Limit:       p.Limit,
		Used:        p.Used,
		ResetsAt:    p.ResetsAt,
		Message:     p.Message,
		UpgradeTier: string(p.UpgradeTier),
	}
}

// DecisionToUsage summarises an approved decision after the use was recorded.
func (m *AccessMapper) DecisionToUsage(d *entity.AccessDecision) dto.FeatureUsageResponse {
	res := dto.FeatureUsageResponse{
		FeatureKey: string(d.FeatureKey),
		Used:       d.Used,
		Limit:      d.Limit,
		Unlimited:  d.Unlimited,
		Remaining:  d.Remaining,
		CanUse:     d.Unlimited || d.Remaining == nil || *d.Remaining > 0,
	}
	if d.Unlimited {
		res.Limit = contract.Unlimited
	}
	return res
}
