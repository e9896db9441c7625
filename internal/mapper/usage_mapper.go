package mapper

import (
	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/model"
)

type UsageMapper struct{}

func NewUsageMapper() *UsageMapper {
	return &UsageMapper{}
}

func (m *UsageMapper) ToEntity(u *model.UsageRecord) *entity.UsageRecord {
	if u == nil {
		return nil
	}
	return &entity.UsageRecord{
		Id:          u.Id,
		UserId:      u.UserId,
		FeatureKey:  entity.FeatureKey(u.FeatureKey),
		PeriodStart: u.PeriodStart,
		Count:       u.Count,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (m *UsageMapper) ToEntities(models []*model.UsageRecord) []*entity.UsageRecord {
	out := make([]*entity.UsageRecord, 0, len(models))
	for _, u := range models {
		out = append(out, m.ToEntity(u))
	}
	return out
}
