package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type userRepository struct {
	uow *UnitOfWork
}

func (r *userRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	defer r.uow.acquire()()
	u, ok := r.uow.store.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	defer r.uow.acquire()()
	for _, u := range r.uow.store.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

type roleGrantRepository struct {
	uow *UnitOfWork
}

func (r *roleGrantRepository) Create(ctx context.Context, grant *entity.RoleGrant) error {
	defer r.uow.acquire()()
	now := time.Now().UTC()
	if grant.Id == uuid.Nil {
		grant.Id = uuid.New()
	}
	grant.CreatedAt, grant.UpdatedAt = now, now
	r.uow.store.grants[grant.Id] = *grant
	return nil
}

func (r *roleGrantRepository) FindEffective(ctx context.Context, userId uuid.UUID, now time.Time) (*entity.RoleGrant, error) {
	defer r.uow.acquire()()
	var best *entity.RoleGrant
	for _, g := range r.uow.store.grants {
		g := g
		if g.UserId != userId || !g.EffectiveAt(now) {
			continue
		}
		if best == nil || g.CreatedAt.After(best.CreatedAt) {
			best = &g
		}
	}
	return best, nil
}

func (r *roleGrantRepository) FindAll(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.RoleGrant, error) {
	defer r.uow.acquire()()
	now := time.Now().UTC()
	out := make([]*entity.RoleGrant, 0)
	for _, g := range r.uow.store.grants {
		g := g
		if activeOnly && !g.EffectiveAt(now) {
			continue
		}
		out = append(out, &g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (r *roleGrantRepository) DeactivateByUserId(ctx context.Context, userId uuid.UUID) (int64, error) {
	defer r.uow.acquire()()
	var changed int64
	for id, g := range r.uow.store.grants {
		if g.UserId == userId && g.IsActive {
			g.IsActive = false
			g.UpdatedAt = time.Now().UTC()
			r.uow.store.grants[id] = g
			changed++
		}
	}
	return changed, nil
}

type subscriptionRepository struct {
	uow *UnitOfWork
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *entity.UserSubscription) error {
	defer r.uow.acquire()()
	for _, existing := range r.uow.store.subs {
		if existing.ProviderSubscriptionId == sub.ProviderSubscriptionId {
			return contract.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	if sub.Id == uuid.Nil {
		sub.Id = uuid.New()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	r.uow.store.subs[sub.Id] = *sub
	return nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *entity.UserSubscription, readLastEventAt time.Time) error {
	defer r.uow.acquire()()
	stored, ok := r.uow.store.subs[sub.Id]
	if !ok || !stored.LastEventAt.Equal(readLastEventAt) {
		return contract.ErrConflict
	}
	sub.UpdatedAt = time.Now().UTC()
	r.uow.store.subs[sub.Id] = *sub
	return nil
}

func (r *subscriptionRepository) FindByProviderSubscriptionId(ctx context.Context, providerSubscriptionId string) (*entity.UserSubscription, error) {
	defer r.uow.acquire()()
	for _, s := range r.uow.store.subs {
		if s.ProviderSubscriptionId == providerSubscriptionId {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

// FindByProviderSubscriptionIdForUpdate needs no row lock: transactions on the
// store are already serialized.
func (r *subscriptionRepository) FindByProviderSubscriptionIdForUpdate(ctx context.Context, providerSubscriptionId string) (*entity.UserSubscription, error) {
	return r.FindByProviderSubscriptionId(ctx, providerSubscriptionId)
}

func (r *subscriptionRepository) FindCurrentByUserId(ctx context.Context, userId uuid.UUID) (*entity.UserSubscription, error) {
	all, err := r.FindAllByUserId(ctx, userId)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	for _, s := range all {
		if s.Status.Entitling() {
			return s, nil
		}
	}
	return all[0], nil
}

func (r *subscriptionRepository) FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.UserSubscription, error) {
	defer r.uow.acquire()()
	out := make([]*entity.UserSubscription, 0)
	for _, s := range r.uow.store.subs {
		s := s
		if s.UserId == userId {
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *subscriptionRepository) CreateLog(ctx context.Context, log *entity.SubscriptionLog) error {
	defer r.uow.acquire()()
	if log.Id == uuid.Nil {
		log.Id = uuid.New()
	}
	log.CreatedAt = time.Now().UTC()
	r.uow.store.logs = append(r.uow.store.logs, *log)
	return nil
}

func (r *subscriptionRepository) FindLogsBySubscriptionId(ctx context.Context, subscriptionId uuid.UUID) ([]*entity.SubscriptionLog, error) {
	defer r.uow.acquire()()
	out := make([]*entity.SubscriptionLog, 0)
	for _, l := range r.uow.store.logs {
		l := l
		if l.SubscriptionId == subscriptionId {
			out = append(out, &l)
		}
	}
	return out, nil
}

type usageRepository struct {
	uow *UnitOfWork
}

func usageKey(userId uuid.UUID, feature entity.FeatureKey, periodStart time.Time) string {
	return userId.String() + "|" + string(feature) + "|" + periodStart.UTC().Format(time.RFC3339)
}

func (r *usageRepository) FindOne(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey, periodStart time.Time) (*entity.UsageRecord, error) {
	defer r.uow.acquire()()
	if v, ok := r.uow.store.usage.Get(usageKey(userId, feature, periodStart)); ok {
		rec := v.(entity.UsageRecord)
		return &rec, nil
	}
	return nil, nil
}

func (r *usageRepository) FindAllByPeriod(ctx context.Context, userId uuid.UUID, periodStart time.Time) ([]*entity.UsageRecord, error) {
	defer r.uow.acquire()()
	out := make([]*entity.UsageRecord, 0)
	for _, item := range r.uow.store.usage.Items() {
		rec := item.Object.(entity.UsageRecord)
		if rec.UserId == userId && rec.PeriodStart.Equal(periodStart) {
			out = append(out, &rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FeatureKey < out[j].FeatureKey })
	return out, nil
}

func (r *usageRepository) IncrementAtomic(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey, periodStart time.Time, limit int) (int, bool, error) {
	defer r.uow.acquire()()
	key := usageKey(userId, feature, periodStart)

	rec := entity.UsageRecord{
		Id:          uuid.New(),
		UserId:      userId,
		FeatureKey:  feature,
		PeriodStart: periodStart,
	}
	if v, ok := r.uow.store.usage.Get(key); ok {
		rec = v.(entity.UsageRecord)
	}
	if limit >= 0 && rec.Count >= limit {
		return rec.Count, false, nil
	}
	rec.Count++
	rec.UpdatedAt = time.Now().UTC()
	r.uow.store.usage.Set(key, rec, cache.DefaultExpiration)
	return rec.Count, true, nil
}

type webhookEventRepository struct {
	uow *UnitOfWork
}

func eventKey(provider, eventId string) string {
	return provider + "|" + eventId
}

func (r *webhookEventRepository) Exists(ctx context.Context, provider, eventId string) (bool, error) {
	defer r.uow.acquire()()
	_, ok := r.uow.store.events[eventKey(provider, eventId)]
	return ok, nil
}

func (r *webhookEventRepository) Create(ctx context.Context, event *entity.WebhookEvent) error {
	defer r.uow.acquire()()
	key := eventKey(event.Provider, event.EventId)
	if _, ok := r.uow.store.events[key]; ok {
		return contract.ErrDuplicate
	}
	if event.Id == uuid.Nil {
		event.Id = uuid.New()
	}
	r.uow.store.events[key] = *event
	return nil
}

func (r *webhookEventRepository) FindRecent(ctx context.Context, limit int) ([]*entity.WebhookEvent, error) {
	defer r.uow.acquire()()
	out := make([]*entity.WebhookEvent, 0, len(r.uow.store.events))
	for _, e := range r.uow.store.events {
		e := e
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessedAt.After(out[j].ProcessedAt) })
	return paginate(out, limit, 0), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
