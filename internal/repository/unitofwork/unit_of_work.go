package unitofwork

import (
	"context"

	"ai-jobassist-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	RoleGrantRepository() contract.RoleGrantRepository
	SubscriptionRepository() contract.SubscriptionRepository
	UsageRepository() contract.UsageRepository
	WebhookEventRepository() contract.WebhookEventRepository
}
