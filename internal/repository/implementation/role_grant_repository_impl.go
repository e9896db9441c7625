package implementation

import (
	"context"
	"errors"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/mapper"
	"ai-jobassist-be/internal/model"
	"ai-jobassist-be/internal/repository/contract"
	"ai-jobassist-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleGrantRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RoleGrantMapper
}

func NewRoleGrantRepository(db *gorm.DB) contract.RoleGrantRepository {
	return &RoleGrantRepositoryImpl{
		db:     db,
		mapper: mapper.NewRoleGrantMapper(),
	}
}

func (r *RoleGrantRepositoryImpl) Create(ctx context.Context, grant *entity.RoleGrant) error {
	m := r.mapper.ToModel(grant)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return storeError("create role grant", err)
	}
	*grant = *r.mapper.ToEntity(m)
	return nil
}

func (r *RoleGrantRepositoryImpl) FindEffective(ctx context.Context, userId uuid.UUID, now time.Time) (*entity.RoleGrant, error) {
	var m model.RoleGrant
	query := specification.Apply(r.db.WithContext(ctx),
		specification.ByUserID{UserID: userId},
		specification.EffectiveGrantAt{Now: now},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError("find role grant", err)
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RoleGrantRepositoryImpl) FindAll(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.RoleGrant, error) {
	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	}
	if activeOnly {
		specs = append(specs, specification.EffectiveGrantAt{Now: time.Now().UTC()})
	}

	var models []*model.RoleGrant
	if err := specification.Apply(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, storeError("list role grants", err)
	}
	return r.mapper.ToEntities(models), nil
}

func (r *RoleGrantRepositoryImpl) DeactivateByUserId(ctx context.Context, userId uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.RoleGrant{}).
		Where("user_id = ? AND is_active = ?", userId, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return 0, storeError("deactivate role grants", result.Error)
	}
	return result.RowsAffected, nil
}
