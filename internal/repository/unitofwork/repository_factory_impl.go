package unitofwork

import (
	"context"

	"gorm.io/gorm"
)

type RepositoryFactoryImpl struct {
	db   *gorm.DB
	opts factoryOptions
}

func NewRepositoryFactory(db *gorm.DB, opts ...FactoryOption) RepositoryFactory {
	f := &RepositoryFactoryImpl{db: db}
	for _, opt := range opts {
		opt(&f.opts)
	}
	return f
}

// NewUnitOfWork is cheap; one per request or per webhook delivery.
func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return &UnitOfWorkImpl{
		db:    f.db,
		usage: f.opts.usage,
	}
}
