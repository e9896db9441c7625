package mapper

import (
	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/model"

	"gorm.io/datatypes"
)

type WebhookEventMapper struct{}

func NewWebhookEventMapper() *WebhookEventMapper {
	return &WebhookEventMapper{}
}

func (m *WebhookEventMapper) ToModel(e *entity.WebhookEvent) *model.WebhookEvent {
	if e == nil {
		return nil
	}
	return &model.WebhookEvent{
		Id:                     e.Id,
		Provider:               e.Provider,
		EventId:                e.EventId,
		EventType:              e.EventType,
		ProviderSubscriptionId: e.ProviderSubscriptionId,
		Outcome:                string(e.Outcome),
		Payload:                datatypes.JSON(e.Payload),
		ProcessedAt:            e.ProcessedAt,
	}
}

func (m *WebhookEventMapper) ToEntity(e *model.WebhookEvent) *entity.WebhookEvent {
	if e == nil {
		return nil
	}
	return &entity.WebhookEvent{
		Id:                     e.Id,
		Provider:               e.Provider,
		EventId:                e.EventId,
		EventType:              e.EventType,
		ProviderSubscriptionId: e.ProviderSubscriptionId,
		Outcome:                entity.SyncOutcome(e.Outcome),
		Payload:                []byte(e.Payload),
		ProcessedAt:            e.ProcessedAt,
	}
}
