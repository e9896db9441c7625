package model

import (
	"time"

	"github.com/google/uuid"
)

type RoleGrant struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Role      string     `gorm:"type:varchar(32);not null"`
	IsActive  bool       `gorm:"not null;default:true"`
	ExpiresAt *time.Time `gorm:"index"`
	GrantedBy *uuid.UUID `gorm:"type:uuid"`
	Notes     string     `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (RoleGrant) TableName() string {
	return "role_grants"
}
