package mapper

import (
	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/model"

	"gorm.io/datatypes"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.UserSubscription) *entity.UserSubscription {
	if s == nil {
		return nil
	}
	return &entity.UserSubscription{
		Id:                     s.Id,
		UserId:                 s.UserId,
		PlanId:                 s.PlanId,
		Status:                 entity.SubscriptionStatus(s.Status),
		CurrentPeriodStart:     s.CurrentPeriodStart,
		CurrentPeriodEnd:       s.CurrentPeriodEnd,
		CancelAtPeriodEnd:      s.CancelAtPeriodEnd,
		ProviderSubscriptionId: s.ProviderSubscriptionId,
		ProviderCustomerId:     s.ProviderCustomerId,
		LastEventAt:            s.LastEventAt,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.UserSubscription) *model.UserSubscription {
	if s == nil {
		return nil
	}
	return &model.UserSubscription{
		Id:                     s.Id,
		UserId:                 s.UserId,
		PlanId:                 s.PlanId,
		Status:                 string(s.Status),
		CurrentPeriodStart:     s.CurrentPeriodStart,
		CurrentPeriodEnd:       s.CurrentPeriodEnd,
		CancelAtPeriodEnd:      s.CancelAtPeriodEnd,
		ProviderSubscriptionId: s.ProviderSubscriptionId,
		ProviderCustomerId:     s.ProviderCustomerId,
		LastEventAt:            s.LastEventAt,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) LogToModel(l *entity.SubscriptionLog) *model.SubscriptionLog {
	if l == nil {
		return nil
	}
	out := &model.SubscriptionLog{
		Id:             l.Id,
		SubscriptionId: l.SubscriptionId,
		UserId:         l.UserId,
		Reason:         l.Reason,
		EventId:        l.EventId,
		After:          datatypes.NewJSONType(snapshotToModel(l.After)),
		CreatedAt:      l.CreatedAt,
	}
	if l.Before != nil {
		before := datatypes.NewJSONType(snapshotToModel(*l.Before))
		out.Before = &before
	}
	return out
}

func (m *SubscriptionMapper) LogToEntity(l *model.SubscriptionLog) *entity.SubscriptionLog {
	if l == nil {
		return nil
	}
	out := &entity.SubscriptionLog{
		Id:             l.Id,
		SubscriptionId: l.SubscriptionId,
		UserId:         l.UserId,
		Reason:         l.Reason,
		EventId:        l.EventId,
		After:          snapshotToEntity(l.After.Data()),
		CreatedAt:      l.CreatedAt,
	}
	if l.Before != nil {
		before := snapshotToEntity(l.Before.Data())
		out.Before = &before
	}
	return out
}

func snapshotToModel(s entity.SubscriptionSnapshot) model.SubscriptionSnapshot {
	return model.SubscriptionSnapshot{
		PlanId:             s.PlanId,
		Status:             string(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
	}
}

func snapshotToEntity(s model.SubscriptionSnapshot) entity.SubscriptionSnapshot {
	return entity.SubscriptionSnapshot{
		PlanId:             s.PlanId,
		Status:             entity.SubscriptionStatus(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
	}
}
