package implementation

import (
	"context"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/mapper"
	"ai-jobassist-be/internal/model"
	"ai-jobassist-be/internal/repository/contract"
	"ai-jobassist-be/internal/repository/specification"

	"gorm.io/gorm"
)

type WebhookEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WebhookEventMapper
}

func NewWebhookEventRepository(db *gorm.DB) contract.WebhookEventRepository {
	return &WebhookEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewWebhookEventMapper(),
	}
}

func (r *WebhookEventRepositoryImpl) Exists(ctx context.Context, provider, eventId string) (bool, error) {
	var count int64
	query := specification.Apply(r.db.WithContext(ctx).Model(&model.WebhookEvent{}),
		specification.ByWebhookEvent{Provider: provider, EventID: eventId},
	)
	if err := query.Count(&count).Error; err != nil {
		return false, storeError("check webhook event", err)
	}
	return count > 0, nil
}

func (r *WebhookEventRepositoryImpl) Create(ctx context.Context, event *entity.WebhookEvent) error {
	m := r.mapper.ToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return storeError("record webhook event", err)
	}
	event.Id = m.Id
	return nil
}

func (r *WebhookEventRepositoryImpl) FindRecent(ctx context.Context, limit int) ([]*entity.WebhookEvent, error) {
	var models []*model.WebhookEvent
	query := specification.Apply(r.db.WithContext(ctx),
		specification.OrderBy{Field: "processed_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, storeError("list webhook events", err)
	}
	out := make([]*entity.WebhookEvent, 0, len(models))
	for _, m := range models {
		out = append(out, r.mapper.ToEntity(m))
	}
	return out, nil
}
