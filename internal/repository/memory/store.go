package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/repository/contract"
	"ai-jobassist-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// usageRetention bounds how long closed periods stay in memory.
const usageRetention = 100 * 24 * time.Hour

// Store is a process-local backend for development and tests. A unit of work
// that begins a transaction holds the store lock until commit or rollback, so
// transactions are fully serialized.
type Store struct {
	mu     sync.Mutex
	users  map[uuid.UUID]entity.User
	grants map[uuid.UUID]entity.RoleGrant
	subs   map[uuid.UUID]entity.UserSubscription
	logs   []entity.SubscriptionLog
	events map[string]entity.WebhookEvent
	usage  *cache.Cache
}

func NewStore() *Store {
	return &Store{
		users:  make(map[uuid.UUID]entity.User),
		grants: make(map[uuid.UUID]entity.RoleGrant),
		subs:   make(map[uuid.UUID]entity.UserSubscription),
		events: make(map[string]entity.WebhookEvent),
		usage:  cache.New(usageRetention, time.Hour),
	}
}

// PutUser seeds a user; the auth service owns users in every other backend.
func (s *Store) PutUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.Id] = u
}

type snapshot struct {
	users  map[uuid.UUID]entity.User
	grants map[uuid.UUID]entity.RoleGrant
	subs   map[uuid.UUID]entity.UserSubscription
	logs   []entity.SubscriptionLog
	events map[string]entity.WebhookEvent
	usage  map[string]cache.Item
}

func (s *Store) snapshot() *snapshot {
	return &snapshot{
		users:  cloneMap(s.users),
		grants: cloneMap(s.grants),
		subs:   cloneMap(s.subs),
		logs:   append([]entity.SubscriptionLog(nil), s.logs...),
		events: cloneMap(s.events),
		usage:  s.usage.Items(),
	}
}

func (s *Store) restore(snap *snapshot) {
	s.users = snap.users
	s.grants = snap.grants
	s.subs = snap.subs
	s.logs = snap.logs
	s.events = snap.events
	s.usage.Flush()
	for k, item := range snap.usage {
		ttl := cache.NoExpiration
		if item.Expiration > 0 {
			ttl = time.Until(time.Unix(0, item.Expiration))
		}
		s.usage.Set(k, item.Object, ttl)
	}
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) *RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

type UnitOfWork struct {
	store *Store
	snap  *snapshot
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.snap != nil {
		return unitofwork.ErrTxAlreadyStarted
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", contract.ErrStoreUnavailable, err)
	}
	u.store.mu.Lock()
	u.snap = u.store.snapshot()
	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.snap == nil {
		return unitofwork.ErrNoTransaction
	}
	u.snap = nil
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.snap == nil {
		return unitofwork.ErrNoTransaction
	}
	u.store.restore(u.snap)
	u.snap = nil
	u.store.mu.Unlock()
	return nil
}

// acquire locks the store unless this unit of work already holds it.
func (u *UnitOfWork) acquire() func() {
	if u.snap != nil {
		return func() {}
	}
	u.store.mu.Lock()
	return u.store.mu.Unlock
}

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{uow: u}
}

func (u *UnitOfWork) RoleGrantRepository() contract.RoleGrantRepository {
	return &roleGrantRepository{uow: u}
}

func (u *UnitOfWork) SubscriptionRepository() contract.SubscriptionRepository {
	return &subscriptionRepository{uow: u}
}

func (u *UnitOfWork) UsageRepository() contract.UsageRepository {
	return &usageRepository{uow: u}
}

func (u *UnitOfWork) WebhookEventRepository() contract.WebhookEventRepository {
	return &webhookEventRepository{uow: u}
}
