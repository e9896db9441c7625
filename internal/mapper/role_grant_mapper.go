package mapper

import (
	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/model"
)

type RoleGrantMapper struct{}

func NewRoleGrantMapper() *RoleGrantMapper {
	return &RoleGrantMapper{}
}

func (m *RoleGrantMapper) ToEntity(g *model.RoleGrant) *entity.RoleGrant {
	if g == nil {
		return nil
	}
	return &entity.RoleGrant{
		Id:        g.Id,
		UserId:    g.UserId,
		Role:      entity.Role(g.Role),
		IsActive:  g.IsActive,
		ExpiresAt: g.ExpiresAt,
		GrantedBy: g.GrantedBy,
		Notes:     g.Notes,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func (m *RoleGrantMapper) ToModel(g *entity.RoleGrant) *model.RoleGrant {
	if g == nil {
		return nil
	}
	return &model.RoleGrant{
		Id:        g.Id,
		UserId:    g.UserId,
		Role:      string(g.Role),
		IsActive:  g.IsActive,
		ExpiresAt: g.ExpiresAt,
		GrantedBy: g.GrantedBy,
		Notes:     g.Notes,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func (m *RoleGrantMapper) ToEntities(models []*model.RoleGrant) []*entity.RoleGrant {
	out := make([]*entity.RoleGrant, 0, len(models))
	for _, g := range models {
		out = append(out, m.ToEntity(g))
	}
	return out
}
