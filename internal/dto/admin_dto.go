// DTOs for admin role management and inspection
package dto

import (
	"time"

	"github.com/google/uuid"
)

type GrantRoleRequest struct {
	UserId    uuid.UUID  `json:"user_id" validate:"required"`
	Role      string     `json:"role" validate:"required,oneof=admin super_user"`
	ExpiresAt *time.Time `json:"expires_at"`
	Notes     string     `json:"notes" validate:"max=500"`
}

type RoleGrantResponse struct {
	Id        uuid.UUID  `json:"id"`
	UserId    uuid.UUID  `json:"user_id"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	GrantedBy *uuid.UUID `json:"granted_by,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type RevokeRoleResponse struct {
	UserId  uuid.UUID `json:"user_id"`
	Revoked int64     `json:"revoked"`
}

type AdminLogQuery struct {
	Level string `query:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	Page  int    `query:"page" validate:"omitempty,min=1"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=200"`
}
