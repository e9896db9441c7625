package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserSubscription struct {
	Id                     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId                 uuid.UUID `gorm:"type:uuid;not null;index"`
	PlanId                 string    `gorm:"type:varchar(64);not null"`
	Status                 string    `gorm:"type:varchar(32);not null"`
	CurrentPeriodStart     time.Time `gorm:"type:timestamptz"`
	CurrentPeriodEnd       time.Time `gorm:"type:timestamptz"`
	CancelAtPeriodEnd      bool      `gorm:"not null;default:false"`
	ProviderSubscriptionId string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	ProviderCustomerId     string    `gorm:"type:varchar(255);index"`
	LastEventAt            time.Time `gorm:"not null"`
	CreatedAt              time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}

type SubscriptionSnapshot struct {
	PlanId             string    `json:"plan_id"`
	Status             string    `json:"status"`
	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	CancelAtPeriodEnd  bool      `json:"cancel_at_period_end"`
}

type SubscriptionLog struct {
	Id             uuid.UUID                                 `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId uuid.UUID                                 `gorm:"type:uuid;not null;index"`
	UserId         uuid.UUID                                 `gorm:"type:uuid;not null;index"`
	Reason         string                                    `gorm:"type:varchar(64);not null"`
	EventId        string                                    `gorm:"type:varchar(255)"`
	Before         *datatypes.JSONType[SubscriptionSnapshot] `gorm:"type:jsonb"`
	After          datatypes.JSONType[SubscriptionSnapshot]  `gorm:"type:jsonb;not null"`
	CreatedAt      time.Time                                 `gorm:"autoCreateTime"`
}

func (SubscriptionLog) TableName() string {
	return "subscription_logs"
}
