package model

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord is unique per (user, feature, period); the composite index backs
// the conditional upsert in the usage repository.
type UsageRecord struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_user_feature_period,priority:1"`
	FeatureKey  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_usage_user_feature_period,priority:2"`
	PeriodStart time.Time `gorm:"not null;uniqueIndex:idx_usage_user_feature_period,priority:3"`
	Count       int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}
