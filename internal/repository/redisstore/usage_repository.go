package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "usage"

// Keys outlive their period by this much so closed periods can still be inspected.
const grace = 30 * 24 * time.Hour

// ARGV[1] = limit (negative means no ceiling), ARGV[2] = ttl in seconds.
// Returns {count, applied}.
var incrementScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if limit >= 0 and current >= limit then
  return {current, 0}
end
local next = redis.call('INCR', KEYS[1])
redis.call('EXPIRE', KEYS[1], ARGV[2])
return {next, 1}
`)

type UsageRepository struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewUsageRepository(client redis.UniversalClient) contract.UsageRepository {
	return &UsageRepository{client: client, now: time.Now}
}

// ttl keeps the key until the period's end plus grace. Periods are one month
// from their start; an anchor clamped into a short month can end up to three
// days later, which grace absorbs.
func (r *UsageRepository) ttl(periodStart time.Time) time.Duration {
	d := periodStart.AddDate(0, 1, 0).Add(grace).Sub(r.now())
	if d < grace {
		return grace
	}
	return d
}

func key(userId uuid.UUID, feature entity.FeatureKey, periodStart time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%d", keyPrefix, userId, feature, periodStart.UTC().Unix())
}

func (r *UsageRepository) FindOne(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey, periodStart time.Time) (*entity.UsageRecord, error) {
	count, err := r.client.Get(ctx, key(userId, feature, periodStart)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get usage: %w: %v", contract.ErrStoreUnavailable, err)
	}
	return &entity.UsageRecord{
		UserId:      userId,
		FeatureKey:  feature,
		PeriodStart: periodStart,
		Count:       count,
	}, nil
}

func (r *UsageRepository) FindAllByPeriod(ctx context.Context, userId uuid.UUID, periodStart time.Time) ([]*entity.UsageRecord, error) {
	keys := make([]string, len(entity.MeteredFeatures))
	for i, f := range entity.MeteredFeatures {
		keys[i] = key(userId, f, periodStart)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list usage: %w: %v", contract.ErrStoreUnavailable, err)
	}

	out := make([]*entity.UsageRecord, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var count int
		if _, err := fmt.Sscan(s, &count); err != nil {
			continue
		}
		out = append(out, &entity.UsageRecord{
			UserId:      userId,
			FeatureKey:  entity.MeteredFeatures[i],
			PeriodStart: periodStart,
			Count:       count,
		})
	}
	return out, nil
}

func (r *UsageRepository) IncrementAtomic(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey, periodStart time.Time, limit int) (int, bool, error) {
	ttl := int64(r.ttl(periodStart) / time.Second)
	res, err := incrementScript.Run(ctx, r.client, []string{key(userId, feature, periodStart)}, limit, ttl).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("increment usage: %w: %v", contract.ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("increment usage: %w: unexpected script reply %v", contract.ErrStoreUnavailable, res)
	}
	return int(res[0]), res[1] == 1, nil
}
