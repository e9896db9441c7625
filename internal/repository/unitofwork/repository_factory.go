package unitofwork

import (
	"context"

	"ai-jobassist-be/internal/repository/contract"
)

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

type FactoryOption func(*factoryOptions)

type factoryOptions struct {
	usage contract.UsageRepository
}

// WithUsageRepository routes usage counting to a store outside the database,
// such as Redis. The override is not part of database transactions.
func WithUsageRepository(repo contract.UsageRepository) FactoryOption {
	return func(o *factoryOptions) {
		o.usage = repo
	}
}
