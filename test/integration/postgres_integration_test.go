package integration

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/model"
	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/internal/repository/contract"
	"ai-jobassist-be/internal/repository/unitofwork"
	"ai-jobassist-be/pkg/database"
	"ai-jobassist-be/pkg/events"
	"ai-jobassist-be/pkg/plans"
	"ai-jobassist-be/pkg/subscription"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.UsageRecord{},
		&model.RoleGrant{},
		&model.UserSubscription{},
		&model.SubscriptionLog{},
		&model.WebhookEvent{},
	))
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_role_grants_one_active ON role_grants (user_id) WHERE is_active;`).Error)
	return db
}

func TestPostgresUsage_ConcurrentIncrementsStopAtLimit(t *testing.T) {
	db := openDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	ctx := context.Background()
	userId := uuid.New()
	period := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t.Cleanup(func() { db.Where("user_id = ?", userId).Delete(&model.UsageRecord{}) })

	var applied int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := factory.NewUnitOfWork(ctx).UsageRepository().
				IncrementAtomic(ctx, userId, entity.FeatureCoverLetters, period, 5)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&applied, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), applied)
	rec, err := factory.NewUnitOfWork(ctx).UsageRepository().FindOne(ctx, userId, entity.FeatureCoverLetters, period)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 5, rec.Count)
}

func TestPostgresRoleGrant_OneActivePerUser(t *testing.T) {
	db := openDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	ctx := context.Background()
	userId := uuid.New()
	t.Cleanup(func() { db.Where("user_id = ?", userId).Delete(&model.RoleGrant{}) })

	repo := factory.NewUnitOfWork(ctx).RoleGrantRepository()
	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, &entity.RoleGrant{Id: uuid.New(), UserId: userId, Role: entity.RoleAdmin, IsActive: true, CreatedAt: now}))

	err := repo.Create(ctx, &entity.RoleGrant{Id: uuid.New(), UserId: userId, Role: entity.RoleSuperUser, IsActive: true, CreatedAt: now})
	assert.ErrorIs(t, err, contract.ErrDuplicate)

	n, err := repo.DeactivateByUserId(ctx, userId)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	g, err := repo.FindEffective(ctx, userId, now)
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestPostgresSubscription_ConcurrentDeliveriesKeepNewestState(t *testing.T) {
	db := openDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	synchronizer := subscription.NewSynchronizer(factory, plans.Default(), events.NopPublisher{}, logger.NewNopLogger())
	ctx := context.Background()
	userId := uuid.New()
	subId := "sub_" + uuid.NewString()[:12]
	base := time.Now().UTC().Truncate(time.Second)
	t.Cleanup(func() {
		db.Where("user_id = ?", userId).Delete(&model.SubscriptionLog{})
		db.Where("user_id = ?", userId).Delete(&model.UserSubscription{})
		db.Where("provider_subscription_id = ?", subId).Delete(&model.WebhookEvent{})
	})

	event := func(typ entity.ProviderEventType, at time.Duration) *entity.ProviderEvent {
		return &entity.ProviderEvent{
			Provider:               "stripe",
			EventId:                "evt_" + uuid.NewString(),
			Type:                   typ,
			OccurredAt:             base.Add(at),
			ProviderSubscriptionId: subId,
			ProviderCustomerId:     "cus_it",
			UserId:                 userId,
			PriceId:                "price_pro_monthly",
			Status:                 entity.SubscriptionStatusActive,
			CurrentPeriodStart:     base,
			CurrentPeriodEnd:       base.AddDate(0, 1, 0),
		}
	}

	_, err := synchronizer.Apply(ctx, event(entity.EventSubscriptionCreated, 0))
	require.NoError(t, err)

	deliveries := []*entity.ProviderEvent{
		event(entity.EventInvoicePaymentFailed, 10*time.Second),
		event(entity.EventInvoicePaymentSucceeded, 20*time.Second),
	}

	var wg sync.WaitGroup
	for _, evt := range deliveries {
		wg.Add(1)
		go func(evt *entity.ProviderEvent) {
			defer wg.Done()
			// A rejected delivery is redelivered by the provider.
			if _, err := synchronizer.Apply(ctx, evt); err != nil {
				_, err = synchronizer.Apply(ctx, evt)
				assert.NoError(t, err)
			}
		}(evt)
	}
	wg.Wait()

	sub, err := factory.NewUnitOfWork(ctx).SubscriptionRepository().FindByProviderSubscriptionId(ctx, subId)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.True(t, sub.LastEventAt.Equal(base.Add(20*time.Second)), "last event at %s", sub.LastEventAt)
}
