package service

import (
	"context"
	"sync"
	"testing"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/internal/repository/memory"
	"ai-jobassist-be/pkg/access"
	"ai-jobassist-be/pkg/events"
	"ai-jobassist-be/pkg/llm"
	"ai-jobassist-be/pkg/paywall"
	"ai-jobassist-be/pkg/plans"
	"ai-jobassist-be/pkg/usage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store     *memory.Store
	factory   *memory.RepositoryFactory
	catalog   *plans.Catalog
	resolver  *access.Resolver
	counter   *usage.Counter
	gate      *paywall.Gate
	publisher *capturePublisher
	log       logger.ILogger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	factory := memory.NewRepositoryFactory(store)
	catalog := plans.Default()
	log := logger.NewNopLogger()
	resolver := access.NewResolver(factory, catalog, log)
	counter := usage.NewCounter(factory, usage.AnchorCalendar)
	pub := &capturePublisher{}
	return &harness{
		store:     store,
		factory:   factory,
		catalog:   catalog,
		resolver:  resolver,
		counter:   counter,
		gate:      paywall.NewGate(resolver, counter, catalog, pub, log),
		publisher: pub,
		log:       log,
	}
}

func (h *harness) user(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	h.store.PutUser(entity.User{Id: id, Email: id.String()[:8] + "@example.com", FullName: "Test User"})
	return id
}

func (h *harness) subscribe(t *testing.T, userId uuid.UUID, planId string, status entity.SubscriptionStatus) *entity.UserSubscription {
	t.Helper()
	ctx := context.Background()
	sub := &entity.UserSubscription{
		Id:                     uuid.New(),
		UserId:                 userId,
		PlanId:                 planId,
		Status:                 status,
		ProviderSubscriptionId: "sub_" + uuid.NewString()[:8],
		ProviderCustomerId:     "cus_" + uuid.NewString()[:8],
	}
	require.NoError(t, h.factory.NewUnitOfWork(ctx).SubscriptionRepository().Create(ctx, sub))
	return sub
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type fakeLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	models   []string
	messages [][]llm.Message
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.models = append(f.models, llm.Apply(opts...).Model)
	f.messages = append(f.messages, history)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
