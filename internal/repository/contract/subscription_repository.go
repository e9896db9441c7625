package contract

import (
	"context"
	"time"

	"ai-jobassist-be/internal/entity"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entity.UserSubscription) error
	// Update writes sub only if the stored LastEventAt still equals readLastEventAt,
	// otherwise it returns ErrConflict and changes nothing.
	Update(ctx context.Context, sub *entity.UserSubscription, readLastEventAt time.Time) error
	FindByProviderSubscriptionId(ctx context.Context, providerSubscriptionId string) (*entity.UserSubscription, error)
	// FindByProviderSubscriptionIdForUpdate also locks the row until the
	// surrounding transaction ends.
	FindByProviderSubscriptionIdForUpdate(ctx context.Context, providerSubscriptionId string) (*entity.UserSubscription, error)
	// FindCurrentByUserId returns the newest active or trialing record, or the
	// newest record of any status when none is live.
	FindCurrentByUserId(ctx context.Context, userId uuid.UUID) (*entity.UserSubscription, error)
	FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.UserSubscription, error)

	CreateLog(ctx context.Context, log *entity.SubscriptionLog) error
	FindLogsBySubscriptionId(ctx context.Context, subscriptionId uuid.UUID) ([]*entity.SubscriptionLog, error)
}
