package service

import (
	"context"
	"fmt"
	"time"

	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/internal/repository/unitofwork"
	"ai-jobassist-be/pkg/events"

	"github.com/google/uuid"
)

type IRoleService interface {
	IsAdmin(ctx context.Context, userId uuid.UUID) (bool, error)
	GrantRole(ctx context.Context, actorId uuid.UUID, req *dto.GrantRoleRequest) (*dto.RoleGrantResponse, error)
	RevokeRole(ctx context.Context, actorId, userId uuid.UUID) (*dto.RevokeRoleResponse, error)
	ListGrants(ctx context.Context, activeOnly bool, page, limit int) ([]*dto.RoleGrantResponse, error)
}

type roleService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
	now        func() time.Time
}

func NewRoleService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, log logger.ILogger) IRoleService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &roleService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     log,
		now:        time.Now,
	}
}

func (s *roleService) IsAdmin(ctx context.Context, userId uuid.UUID) (bool, error) {
	grant, err := s.uowFactory.NewUnitOfWork(ctx).RoleGrantRepository().FindEffective(ctx, userId, s.now().UTC())
	if err != nil {
		return false, err
	}
	return grant != nil && grant.Role == entity.RoleAdmin, nil
}

// GrantRole replaces whatever grant the user had. actorId is uuid.Nil when the
// grant comes from the operator CLI.
func (s *roleService) GrantRole(ctx context.Context, actorId uuid.UUID, req *dto.GrantRoleRequest) (*dto.RoleGrantResponse, error) {
	role := entity.Role(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	now := s.now().UTC()
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: expiry must be in the future", ErrInvalidRole)
	}

	grant := &entity.RoleGrant{
		Id:        uuid.New(),
		UserId:    req.UserId,
		Role:      role,
		IsActive:  true,
		ExpiresAt: req.ExpiresAt,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if actorId != uuid.Nil {
		actor := actorId
		grant.GrantedBy = &actor
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if _, err := uow.RoleGrantRepository().DeactivateByUserId(ctx, req.UserId); err != nil {
		return nil, err
	}
	if err := uow.RoleGrantRepository().Create(ctx, grant); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("ADMIN", "Role granted", map[string]interface{}{
		"user_id":  req.UserId.String(),
		"role":     string(role),
		"actor_id": actorId.String(),
	})
	s.emit(ctx, events.TypeRoleGranted, req.UserId, actorId, role)
	return toGrantResponse(grant), nil
}

func (s *roleService) RevokeRole(ctx context.Context, actorId, userId uuid.UUID) (*dto.RevokeRoleResponse, error) {
	n, err := s.uowFactory.NewUnitOfWork(ctx).RoleGrantRepository().DeactivateByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		s.logger.Info("ADMIN", "Role revoked", map[string]interface{}{
			"user_id":  userId.String(),
			"actor_id": actorId.String(),
		})
		s.emit(ctx, events.TypeRoleRevoked, userId, actorId, entity.RoleNone)
	}
	return &dto.RevokeRoleResponse{UserId: userId, Revoked: n}, nil
}

const (
	defaultGrantPageSize = 20
	MaxGrantPageSize     = 100
	maxGrantPage         = 10000
)

func (s *roleService) ListGrants(ctx context.Context, activeOnly bool, page, limit int) ([]*dto.RoleGrantResponse, error) {
	switch {
	case limit <= 0:
		limit = defaultGrantPageSize
	case limit > MaxGrantPageSize:
		limit = MaxGrantPageSize
	}
	switch {
	case page <= 0:
		page = 1
	case page > maxGrantPage:
		page = maxGrantPage
	}
	grants, err := s.uowFactory.NewUnitOfWork(ctx).RoleGrantRepository().FindAll(ctx, activeOnly, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.RoleGrantResponse, 0, len(grants))
	for _, g := range grants {
		res = append(res, toGrantResponse(g))
	}
	return res, nil
}

func (s *roleService) emit(ctx context.Context, eventType string, userId, actorId uuid.UUID, role entity.Role) {
	err := s.publisher.Publish(ctx, events.New(eventType, map[string]interface{}{
		"user_id":  userId.String(),
		"actor_id": actorId.String(),
		"role":     string(role),
	}))
	if err != nil {
		s.logger.Warn("ADMIN", "Failed to publish role event", map[string]interface{}{"error": err.Error()})
	}
}

func toGrantResponse(g *entity.RoleGrant) *dto.RoleGrantResponse {
	return &dto.RoleGrantResponse{
		Id:        g.Id,
		UserId:    g.UserId,
		Role:      string(g.Role),
		IsActive:  g.IsActive,
		ExpiresAt: g.ExpiresAt,
		GrantedBy: g.GrantedBy,
		Notes:     g.Notes,
		CreatedAt: g.CreatedAt,
	}
}
