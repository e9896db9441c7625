package contract

import (
	"context"
	"time"

	"ai-jobassist-be/internal/entity"

	"github.com/google/uuid"
)

// Unlimited passed as limit to IncrementAtomic increments without a ceiling.
const Unlimited = -1

type UsageRepository interface {
	// FindOne returns nil when no usage was recorded in the period.
	FindOne(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey, periodStart time.Time) (*entity.UsageRecord, error)
	FindAllByPeriod(ctx context.Context, userId uuid.UUID, periodStart time.Time) ([]*entity.UsageRecord, error)
	// IncrementAtomic adds one to the period counter only while count < limit, as a
	// single atomic step. It returns the resulting count and whether the increment
	// was applied; when not applied the count is the current value.
	IncrementAtomic(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey, periodStart time.Time, limit int) (int, bool, error)
}
