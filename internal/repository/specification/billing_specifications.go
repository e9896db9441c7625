package specification

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EffectiveGrantAt keeps active role grants that have not expired at Now.
type EffectiveGrantAt struct {
	Now time.Time
}

func (s EffectiveGrantAt) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", s.Now)
}

type ByProviderSubscriptionID struct {
	ID string
}

func (s ByProviderSubscriptionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("provider_subscription_id = ?", s.ID)
}

// ForUpdate takes a row lock held until the transaction ends.
type ForUpdate struct{}

func (ForUpdate) Apply(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// LiveFirst orders active and trialing subscriptions ahead of the rest.
type LiveFirst struct{}

func (LiveFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("CASE WHEN status IN ('active', 'trialing') THEN 0 ELSE 1 END")
}

type ByUsagePeriod struct {
	PeriodStart time.Time
}

func (s ByUsagePeriod) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("period_start = ?", s.PeriodStart)
}

type ByFeature struct {
	FeatureKey string
}

func (s ByFeature) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("feature_key = ?", s.FeatureKey)
}

type ByWebhookEvent struct {
	Provider string
	EventID  string
}

func (s ByWebhookEvent) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("provider = ? AND event_id = ?", s.Provider, s.EventID)
}
