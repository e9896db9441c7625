package usage

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_IncrementNTimes(t *testing.T) {
	factory := memory.NewRepositoryFactory(memory.NewStore())
	counter := NewCounter(factory, AnchorCalendar)
	ctx := context.Background()
	userId := uuid.New()

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := counter.Increment(ctx, userId, entity.FeatureCoverLetters)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	used, err := counter.GetUsage(ctx, userId, entity.FeatureCoverLetters)
	require.NoError(t, err)
	assert.Equal(t, n, used)

	other, err := counter.GetUsage(ctx, userId, entity.FeatureCVGenerations)
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestCounter_ResetsOnNewPeriod(t *testing.T) {
	factory := memory.NewRepositoryFactory(memory.NewStore())
	now := date(2026, 3, 31, 23)
	counter := NewCounter(factory, AnchorCalendar, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	userId := uuid.New()

	_, err := counter.Increment(ctx, userId, entity.FeatureATSScores)
	require.NoError(t, err)

	now = date(2026, 4, 1, 0)
	used, err := counter.GetUsage(ctx, userId, entity.FeatureATSScores)
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestCounter_AccountAnchor(t *testing.T) {
	store := memory.NewStore()
	userId := uuid.New()
	store.PutUser(entity.User{Id: userId, Email: "a@example.com", CreatedAt: date(2025, 11, 20, 0)})

	counter := NewCounter(memory.NewRepositoryFactory(store), AnchorAccount,
		WithClock(func() time.Time { return date(2026, 3, 5, 0) }))

	p, err := counter.Period(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, date(2026, 2, 20, 0), p.Start)

	unknown, err := counter.Period(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, date(2026, 3, 1, 0), unknown.Start)
}

func TestCounter_Snapshot(t *testing.T) {
	counter := NewCounter(memory.NewRepositoryFactory(memory.NewStore()), AnchorCalendar)
	ctx := context.Background()
	userId := uuid.New()

	_, _, err := counter.IncrementWithin(ctx, userId, entity.FeatureCVGenerations, 3)
	require.NoError(t, err)

	_, counts, err := counter.Snapshot(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[entity.FeatureCVGenerations])
	assert.Equal(t, 0, counts[entity.FeatureCoverLetters])
	assert.Len(t, counts, len(entity.MeteredFeatures))
}
