package entity

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleNone      Role = ""
	RoleAdmin     Role = "admin"
	RoleSuperUser Role = "super_user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperUser
}

// Exempt reports whether the role bypasses tier quotas and metering.
func (r Role) Exempt() bool {
	return r.Valid()
}

type RoleGrant struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Role      Role
	IsActive  bool
	ExpiresAt *time.Time
	GrantedBy *uuid.UUID
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveAt treats an expired grant exactly like a missing one.
func (g *RoleGrant) EffectiveAt(now time.Time) bool {
	if g == nil || !g.IsActive || !g.Role.Valid() {
		return false
	}
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}
