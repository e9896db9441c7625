package contract

import (
	"context"
	"time"

	"ai-jobassist-be/internal/entity"

	"github.com/google/uuid"
)

type RoleGrantRepository interface {
	Create(ctx context.Context, grant *entity.RoleGrant) error
	// FindEffective returns the user's active, unexpired grant or nil.
	FindEffective(ctx context.Context, userId uuid.UUID, now time.Time) (*entity.RoleGrant, error)
	FindAll(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.RoleGrant, error)
	// DeactivateByUserId switches off every active grant for the user and returns how many changed.
	DeactivateByUserId(ctx context.Context, userId uuid.UUID) (int64, error)
}
