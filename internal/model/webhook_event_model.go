package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WebhookEvent struct {
	Id                     uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Provider               string         `gorm:"type:varchar(32);not null;uniqueIndex:idx_webhook_provider_event,priority:1"`
	EventId                string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_webhook_provider_event,priority:2"`
	EventType              string         `gorm:"type:varchar(128);not null"`
	ProviderSubscriptionId string         `gorm:"type:varchar(255);index"`
	Outcome                string         `gorm:"type:varchar(32);not null"`
	Payload                datatypes.JSON `gorm:"type:jsonb"`
	ProcessedAt            time.Time      `gorm:"not null"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
