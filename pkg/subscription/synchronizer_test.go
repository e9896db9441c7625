package subscription

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/internal/repository/contract"
	"ai-jobassist-be/internal/repository/memory"
	"ai-jobassist-be/internal/repository/unitofwork"
	"ai-jobassist-be/pkg/events"
	"ai-jobassist-be/pkg/plans"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, e.EventType())
	return nil
}

var base = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

type builder struct {
	userId uuid.UUID
	subId  string
	n      int
}

func newBuilder() *builder {
	return &builder{userId: uuid.New(), subId: "sub_" + uuid.NewString()[:8]}
}

func (b *builder) event(typ entity.ProviderEventType, at time.Duration, mutate ...func(*entity.ProviderEvent)) *entity.ProviderEvent {
	b.n++
	evt := &entity.ProviderEvent{
		Provider:               "stripe",
		EventId:                "evt_" + uuid.NewString(),
		Type:                   typ,
		OccurredAt:             base.Add(at),
		ProviderSubscriptionId: b.subId,
		ProviderCustomerId:     "cus_1",
		UserId:                 b.userId,
		PriceId:                "price_pro_monthly",
		Status:                 entity.SubscriptionStatusActive,
		CurrentPeriodStart:     base,
		CurrentPeriodEnd:       base.AddDate(0, 1, 0),
	}
	for _, m := range mutate {
		m(evt)
	}
	return evt
}

func newSync(factory unitofwork.RepositoryFactory) (*Synchronizer, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewSynchronizer(factory, plans.Default(), pub, logger.NewNopLogger()), pub
}

func current(t *testing.T, factory unitofwork.RepositoryFactory, subId string) *entity.UserSubscription {
	t.Helper()
	ctx := context.Background()
	sub, err := factory.NewUnitOfWork(ctx).SubscriptionRepository().FindByProviderSubscriptionId(ctx, subId)
	require.NoError(t, err)
	return sub
}

func TestApply_CreateThenReplayIsIdempotent(t *testing.T) {
	factory := memory.NewRepositoryFactory(memory.NewStore())
	s, pub := newSync(factory)
	b := newBuilder()
	created := b.event(entity.EventSubscriptionCreated, 0)

	res, err := s.Apply(context.Background(), created)
	require.NoError(t, err)
	assert.Equal(t, entity.SyncApplied, res.Outcome)
	first := current(t, factory, b.subId)
	require.NotNil(t, first)
	assert.Equal(t, "pro_monthly", first.PlanId)
	assert.Equal(t, entity.SubscriptionStatusActive, first.Status)

	for i := 0; i < 3; i++ {
		res, err = s.Apply(context.Background(), created)
		require.NoError(t, err)
		assert.Equal(t, entity.SyncDuplicate, res.Outcome)
	}
	assert.Equal(t, first, current(t, factory, b.subId))
	assert.Len(t, pub.types, 1)
}

func TestApply_CreatedAndUpdatedConvergeInEitherOrder(t *testing.T) {
	for _, order := range []string{"created-first", "updated-first"} {
		t.Run(order, func(t *testing.T) {
			factory := memory.NewRepositoryFactory(memory.NewStore())
			s, _ := newSync(factory)
			b := newBuilder()

			created := b.event(entity.EventSubscriptionCreated, 0, func(e *entity.ProviderEvent) {
				e.Status = entity.SubscriptionStatusTrialing
			})
			updated := b.event(entity.EventSubscriptionUpdated, time.Minute, func(e *entity.ProviderEvent) {
				e.PriceId = "price_premium_monthly"
				e.Status = entity.SubscriptionStatusActive
				e.CancelAtPeriodEnd = true
				e.CurrentPeriodEnd = base.AddDate(0, 2, 0)
			})

			sequence := []*entity.ProviderEvent{created, updated}
			if order == "updated-first" {
				sequence = []*entity.ProviderEvent{updated, created}
			}
			for _, evt := range sequence {
				_, err := s.Apply(context.Background(), evt)
				require.NoError(t, err)
			}

			got := current(t, factory, b.subId)
			require.NotNil(t, got)
			assert.Equal(t, "premium_monthly", got.PlanId)
			assert.Equal(t, entity.SubscriptionStatusActive, got.Status)
			assert.True(t, got.CancelAtPeriodEnd)
			assert.Equal(t, base.AddDate(0, 2, 0), got.CurrentPeriodEnd)
		})
	}
}

func TestApply_PaymentFailureAndRecovery(t *testing.T) {
	factory := memory.NewRepositoryFactory(memory.NewStore())
	s, pub := newSync(factory)
	b := newBuilder()

	steps := []struct {
		typ  entity.ProviderEventType
		want entity.SubscriptionStatus
	}{
		{entity.EventSubscriptionCreated, entity.SubscriptionStatusActive},
		{entity.EventInvoicePaymentFailed, entity.SubscriptionStatusPastDue},
		{entity.EventInvoicePaymentSucceeded, entity.SubscriptionStatusActive},
	}
	for i, step := range steps {
		_, err := s.Apply(context.Background(), b.event(step.typ, time.Duration(i)*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, step.want, current(t, factory, b.subId).Status, "after %s", step.typ)
	}
	assert.Equal(t, []string{
		events.TypeSubscriptionUpdated,
		events.TypeSubscriptionPastDue,
		events.TypeSubscriptionUpdated,
	}, pub.types)
}

func TestApply_DeleteIsTerminal(t *testing.T) {
	factory := memory.NewRepositoryFactory(memory.NewStore())
	s, pub := newSync(factory)
	b := newBuilder()

	_, err := s.Apply(context.Background(), b.event(entity.EventSubscriptionCreated, 0))
	require.NoError(t, err)
	res, err := s.Apply(context.Background(), b.event(entity.EventSubscriptionDeleted, time.Hour))
	require.NoError(t, err)
	assert.Equal(t, entity.SyncApplied, res.Outcome)

	// A late payment event must not resurrect the subscription.
	res, err = s.Apply(context.Background(), b.event(entity.EventInvoicePaymentSucceeded, 2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, entity.SyncIgnored, res.Outcome)

	assert.Equal(t, entity.SubscriptionStatusCanceled, current(t, factory, b.subId).Status)
	assert.Contains(t, pub.types, events.TypeSubscriptionCanceled)
}

func TestApply_StaleUpdateSkipped(t *testing.T) {
	factory := memory.NewRepositoryFactory(memory.NewStore())
	s, _ := newSync(factory)
	b := newBuilder()

	_, err := s.Apply(context.Background(), b.event(entity.EventSubscriptionCreated, time.Hour))
	require.NoError(t, err)
	res, err := s.Apply(context.Background(), b.event(entity.EventSubscriptionUpdated, 0, func(e *entity.ProviderEvent) {
		e.Status = entity.SubscriptionStatusPastDue
	}))
	require.NoError(t, err)
	assert.Equal(t, entity.SyncStale, res.Outcome)
	assert.Equal(t, entity.SubscriptionStatusActive, current(t, factory, b.subId).Status)
}

func TestApply_UnknownAndUnlinkedEvents(t *testing.T) {
	factory := memory.NewRepositoryFactory(memory.NewStore())
	s, _ := newSync(factory)
	b := newBuilder()

	res, err := s.Apply(context.Background(), b.event(entity.EventUnknown, 0, func(e *entity.ProviderEvent) {
		e.RawType = "customer.created"
	}))
	require.NoError(t, err)
	assert.Equal(t, entity.SyncIgnored, res.Outcome)

	_, err = s.Apply(context.Background(), b.event(entity.EventInvoicePaymentFailed, 0, func(e *entity.ProviderEvent) {
		e.UserId = uuid.Nil
	}))
	assert.ErrorIs(t, err, ErrUnlinkedSubscription)
	assert.Nil(t, current(t, factory, b.subId))

	res, err = s.Apply(context.Background(), b.event(entity.EventSubscriptionDeleted, 0, func(e *entity.ProviderEvent) {
		e.UserId = uuid.Nil
	}))
	require.NoError(t, err)
	assert.Equal(t, entity.SyncIgnored, res.Outcome)

	_, err = s.Apply(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestApply_PlanFromMetadataHint(t *testing.T) {
	factory := memory.NewRepositoryFactory(memory.NewStore())
	s, _ := newSync(factory)
	b := newBuilder()

	_, err := s.Apply(context.Background(), b.event(entity.EventCheckoutCompleted, 0, func(e *entity.ProviderEvent) {
		e.PriceId = ""
		e.PlanId = "pro_yearly"
	}))
	require.NoError(t, err)
	assert.Equal(t, "pro_yearly", current(t, factory, b.subId).PlanId)
}

func TestApply_WritesAuditLog(t *testing.T) {
	factory := memory.NewRepositoryFactory(memory.NewStore())
	s, _ := newSync(factory)
	b := newBuilder()

	_, err := s.Apply(context.Background(), b.event(entity.EventSubscriptionCreated, 0))
	require.NoError(t, err)
	_, err = s.Apply(context.Background(), b.event(entity.EventInvoicePaymentFailed, time.Hour))
	require.NoError(t, err)

	sub := current(t, factory, b.subId)
	ctx := context.Background()
	logs, err := factory.NewUnitOfWork(ctx).SubscriptionRepository().FindLogsBySubscriptionId(ctx, sub.Id)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Nil(t, logs[0].Before)
	require.NotNil(t, logs[1].Before)
	assert.Equal(t, entity.SubscriptionStatusActive, logs[1].Before.Status)
	assert.Equal(t, entity.SubscriptionStatusPastDue, logs[1].After.Status)
}

type brokenSubscriptions struct {
	contract.SubscriptionRepository
}

func (brokenSubscriptions) FindByProviderSubscriptionIdForUpdate(context.Context, string) (*entity.UserSubscription, error) {
	return nil, errors.Join(contract.ErrStoreUnavailable, errors.New("read timeout"))
}

type brokenUoW struct {
	unitofwork.UnitOfWork
}

func (brokenUoW) SubscriptionRepository() contract.SubscriptionRepository {
	return brokenSubscriptions{}
}

type brokenFactory struct {
	inner unitofwork.RepositoryFactory
}

func (f brokenFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return brokenUoW{UnitOfWork: f.inner.NewUnitOfWork(ctx)}
}

func TestApply_StoreFailureIsRetryable(t *testing.T) {
	inner := memory.NewRepositoryFactory(memory.NewStore())
	s, _ := newSync(brokenFactory{inner: inner})
	b := newBuilder()
	evt := b.event(entity.EventSubscriptionCreated, 0)

	_, err := s.Apply(context.Background(), evt)
	assert.ErrorIs(t, err, contract.ErrStoreUnavailable)

	// Nothing was recorded, so the retry against a healthy store applies.
	healthy, _ := newSync(inner)
	res, err := healthy.Apply(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, entity.SyncApplied, res.Outcome)
}

// unlockedUoW does not serialize transactions and takes no locks on reads, so
// two deliveries can interleave the way they may under READ COMMITTED.
type unlockedUoW struct {
	unitofwork.UnitOfWork
	factory *interleavingFactory
}

func (unlockedUoW) Begin(context.Context) error { return nil }
func (unlockedUoW) Commit() error { return nil }
func (unlockedUoW) Rollback() error { return nil }

func (u unlockedUoW) SubscriptionRepository() contract.SubscriptionRepository {
	return interleavingSubscriptions{SubscriptionRepository: u.UnitOfWork.SubscriptionRepository(), factory: u.factory}
}

type interleavingSubscriptions struct {
	contract.SubscriptionRepository
	factory *interleavingFactory
}

// FindByProviderSubscriptionIdForUpdate runs the pending concurrent delivery
// right after the read, before the caller writes.
func (s interleavingSubscriptions) FindByProviderSubscriptionIdForUpdate(ctx context.Context, id string) (*entity.UserSubscription, error) {
	sub, err := s.SubscriptionRepository.FindByProviderSubscriptionIdForUpdate(ctx, id)
	if err == nil && s.factory.between != nil {
		run := s.factory.between
		s.factory.between = nil
		run()
	}
	return sub, err
}

type interleavingFactory struct {
	inner   unitofwork.RepositoryFactory
	between func()
}

func (f *interleavingFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return unlockedUoW{UnitOfWork: f.inner.NewUnitOfWork(ctx), factory: f}
}

func TestApply_InterleavedDeliveriesKeepNewestState(t *testing.T) {
	tests := []struct {
		name     string
		first    entity.ProviderEventType
		firstAt  time.Duration
		second   entity.ProviderEventType
		secondAt time.Duration
	}{
		{"older event reads first", entity.EventInvoicePaymentFailed, 10 * time.Second, entity.EventInvoicePaymentSucceeded, 20 * time.Second},
		{"newer event reads first", entity.EventInvoicePaymentSucceeded, 20 * time.Second, entity.EventInvoicePaymentFailed, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			inner := memory.NewRepositoryFactory(memory.NewStore())
			b := newBuilder()
			seeder, _ := newSync(inner)
			_, err := seeder.Apply(ctx, b.event(entity.EventSubscriptionCreated, 0))
			require.NoError(t, err)

			factory := &interleavingFactory{inner: inner}
			s, _ := newSync(factory)
			first := b.event(tt.first, tt.firstAt)
			second := b.event(tt.second, tt.secondAt)
			factory.between = func() {
				res, err := s.Apply(ctx, second)
				require.NoError(t, err)
				assert.Equal(t, entity.SyncApplied, res.Outcome)
			}

			_, err = s.Apply(ctx, first)
			assert.ErrorIs(t, err, contract.ErrConflict)

			// The provider redelivers the rejected event.
			_, err = s.Apply(ctx, first)
			require.NoError(t, err)

			sub := current(t, inner, b.subId)
			assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
			assert.True(t, sub.LastEventAt.Equal(base.Add(20*time.Second)), "last event at %s", sub.LastEventAt)
		})
	}
}
