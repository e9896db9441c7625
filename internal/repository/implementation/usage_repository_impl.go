package implementation

import (
	"context"
	"errors"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/mapper"
	"ai-jobassist-be/internal/model"
	"ai-jobassist-be/internal/repository/contract"
	"ai-jobassist-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The WHERE on the conflict branch makes check-and-increment one statement:
// when the ceiling is reached no row is returned and nothing changes.
const incrementUsageSQL = `
INSERT INTO usage_records (id, user_id, feature_key, period_start, count, created_at, updated_at)
VALUES (gen_random_uuid(), ?, ?, ?, 1, NOW(), NOW())
ON CONFLICT (user_id, feature_key, period_start)
DO UPDATE SET count = usage_records.count + 1, updated_at = NOW()
WHERE ? < 0 OR usage_records.count < ?
RETURNING count`

type UsageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UsageMapper
}

func NewUsageRepository(db *gorm.DB) contract.UsageRepository {
	return &UsageRepositoryImpl{
		db:     db,
		mapper: mapper.NewUsageMapper(),
	}
}

func (r *UsageRepositoryImpl) FindOne(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey, periodStart time.Time) (*entity.UsageRecord, error) {
	var m model.UsageRecord
	query := specification.Apply(r.db.WithContext(ctx),
		specification.ByUserID{UserID: userId},
		specification.ByFeature{FeatureKey: string(feature)},
		specification.ByUsagePeriod{PeriodStart: periodStart},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError("find usage", err)
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UsageRepositoryImpl) FindAllByPeriod(ctx context.Context, userId uuid.UUID, periodStart time.Time) ([]*entity.UsageRecord, error) {
	var models []*model.UsageRecord
	query := specification.Apply(r.db.WithContext(ctx),
		specification.ByUserID{UserID: userId},
		specification.ByUsagePeriod{PeriodStart: periodStart},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, storeError("list usage", err)
	}
	return r.mapper.ToEntities(models), nil
}

func (r *UsageRepositoryImpl) IncrementAtomic(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey, periodStart time.Time, limit int) (int, bool, error) {
	if limit == 0 {
		current, err := r.currentCount(ctx, userId, feature, periodStart)
		return current, false, err
	}

	var counts []int
	err := r.db.WithContext(ctx).
		Raw(incrementUsageSQL, userId, string(feature), periodStart, limit, limit).
		Scan(&counts).Error
	if err != nil {
		return 0, false, storeError("increment usage", err)
	}
	if len(counts) == 0 {
		current, err := r.currentCount(ctx, userId, feature, periodStart)
		return current, false, err
	}
	return counts[0], true, nil
}

func (r *UsageRepositoryImpl) currentCount(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey, periodStart time.Time) (int, error) {
	rec, err := r.FindOne(ctx, userId, feature, periodStart)
	if err != nil || rec == nil {
		return 0, err
	}
	return rec.Count, nil
}
