package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/mapper"
	"ai-jobassist-be/internal/model"
	"ai-jobassist-be/internal/repository/contract"
	"ai-jobassist-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *entity.UserSubscription) error {
	m := r.mapper.ToModel(sub)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return storeError("create subscription", err)
	}
	*sub = *r.mapper.ToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *entity.UserSubscription, readLastEventAt time.Time) error {
	m := r.mapper.ToModel(sub)
	m.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&model.UserSubscription{}).
		Where("id = ? AND last_event_at = ?", m.Id, readLastEventAt).
		Select("plan_id", "status", "current_period_start", "current_period_end",
			"cancel_at_period_end", "provider_customer_id", "last_event_at", "updated_at").
		Updates(m)
	if result.Error != nil {
		return storeError("update subscription", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update subscription %s: %w", m.Id, contract.ErrConflict)
	}
	*sub = *r.mapper.ToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) FindByProviderSubscriptionId(ctx context.Context, providerSubscriptionId string) (*entity.UserSubscription, error) {
	return r.findOne(ctx, specification.ByProviderSubscriptionID{ID: providerSubscriptionId})
}

func (r *SubscriptionRepositoryImpl) FindByProviderSubscriptionIdForUpdate(ctx context.Context, providerSubscriptionId string) (*entity.UserSubscription, error) {
	return r.findOne(ctx,
		specification.ByProviderSubscriptionID{ID: providerSubscriptionId},
		specification.ForUpdate{},
	)
}

func (r *SubscriptionRepositoryImpl) FindCurrentByUserId(ctx context.Context, userId uuid.UUID) (*entity.UserSubscription, error) {
	return r.findOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.LiveFirst{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

func (r *SubscriptionRepositoryImpl) FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.UserSubscription, error) {
	var models []*model.UserSubscription
	query := specification.Apply(r.db.WithContext(ctx),
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, storeError("list subscriptions", err)
	}
	out := make([]*entity.UserSubscription, 0, len(models))
	for _, m := range models {
		out = append(out, r.mapper.ToEntity(m))
	}
	return out, nil
}

func (r *SubscriptionRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.UserSubscription, error) {
	var m model.UserSubscription
	if err := specification.Apply(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError("find subscription", err)
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) CreateLog(ctx context.Context, log *entity.SubscriptionLog) error {
	m := r.mapper.LogToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return storeError("create subscription log", err)
	}
	log.Id = m.Id
	log.CreatedAt = m.CreatedAt
	return nil
}

func (r *SubscriptionRepositoryImpl) FindLogsBySubscriptionId(ctx context.Context, subscriptionId uuid.UUID) ([]*entity.SubscriptionLog, error) {
	var models []*model.SubscriptionLog
	query := specification.Apply(r.db.WithContext(ctx),
		specification.Filter("subscription_id", subscriptionId),
		specification.OrderBy{Field: "created_at"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, storeError("list subscription logs", err)
	}
	out := make([]*entity.SubscriptionLog, 0, len(models))
	for _, m := range models {
		out = append(out, r.mapper.LogToEntity(m))
	}
	return out, nil
}
