package contract

import (
	"context"

	"ai-jobassist-be/internal/entity"
)

type WebhookEventRepository interface {
	Exists(ctx context.Context, provider, eventId string) (bool, error)
	// Create returns ErrDuplicate when the (provider, eventId) pair was already recorded.
	Create(ctx context.Context, event *entity.WebhookEvent) error
	FindRecent(ctx context.Context, limit int) ([]*entity.WebhookEvent, error)
}
