package redisstore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/repository/contract"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (contract.UsageRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewUsageRepository(client), mr
}

func TestIncrementAtomic_StopsAtLimit(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	userId := uuid.New()
	period := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	var applied int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.IncrementAtomic(ctx, userId, entity.FeatureCVGenerations, period, 3)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&applied, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), applied)

	rec, err := repo.FindOne(ctx, userId, entity.FeatureCVGenerations, period)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 3, rec.Count)
}

func TestIncrementAtomic_UnlimitedAndExpiry(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()
	userId := uuid.New()
	period := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	count, ok, err := repo.IncrementAtomic(ctx, userId, entity.FeatureATSScores, period, contract.Unlimited)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, count)

	k := key(userId, entity.FeatureATSScores, period)
	assert.True(t, mr.Exists(k))
	assert.GreaterOrEqual(t, mr.TTL(k), grace)
}

func TestIncrementAtomic_KeyExpiresAtPeriodEndPlusGrace(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()
	period := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		now     time.Time
		wantTTL time.Duration
	}{
		{"start of period", period, 31*24*time.Hour + grace},
		{"mid period", period.Add(10 * 24 * time.Hour), 21*24*time.Hour + grace},
		{"late write to a closed period", period.AddDate(0, 3, 0), grace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo.(*UsageRepository).now = func() time.Time { return tt.now }
			userId := uuid.New()

			_, ok, err := repo.IncrementAtomic(ctx, userId, entity.FeatureCoverLetters, period, 5)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.wantTTL, mr.TTL(key(userId, entity.FeatureCoverLetters, period)))
		})
	}
}

func TestFindAllByPeriod(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	userId := uuid.New()
	period := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	_, _, err := repo.IncrementAtomic(ctx, userId, entity.FeatureCoverLetters, period, 5)
	require.NoError(t, err)
	_, _, err = repo.IncrementAtomic(ctx, userId, entity.FeatureCoverLetters, period, 5)
	require.NoError(t, err)

	records, err := repo.FindAllByPeriod(ctx, userId, period)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entity.FeatureCoverLetters, records[0].FeatureKey)
	assert.Equal(t, 2, records[0].Count)

	missing, err := repo.FindOne(ctx, userId, entity.FeatureCVGenerations, period)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIncrementAtomic_StoreDown(t *testing.T) {
	repo, mr := newTestRepo(t)
	mr.Close()

	_, _, err := repo.IncrementAtomic(context.Background(), uuid.New(), entity.FeatureCVGenerations, time.Now(), 3)
	assert.ErrorIs(t, err, contract.ErrStoreUnavailable)
}
