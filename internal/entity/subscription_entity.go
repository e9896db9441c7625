package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusTrialing, SubscriptionStatusPastDue, SubscriptionStatusCanceled:
		return true
	}
	return false
}

// Entitling reports whether the status grants the plan's tier.
func (s SubscriptionStatus) Entitling() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

type UserSubscription struct {
	Id                     uuid.UUID
	UserId                 uuid.UUID
	PlanId                 string
	Status                 SubscriptionStatus
	CurrentPeriodStart     time.Time
	CurrentPeriodEnd       time.Time
	CancelAtPeriodEnd      bool
	ProviderSubscriptionId string
	ProviderCustomerId     string
	LastEventAt            time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// SubscriptionLog is the audit trail of every applied transition.
type SubscriptionLog struct {
	Id             uuid.UUID
	SubscriptionId uuid.UUID
	UserId         uuid.UUID
	Reason         string
	EventId        string
	Before         *SubscriptionSnapshot
	After          SubscriptionSnapshot
	CreatedAt      time.Time
}

type SubscriptionSnapshot struct {
	PlanId             string             `json:"plan_id"`
	Status             SubscriptionStatus `json:"status"`
	CurrentPeriodStart time.Time          `json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end"`
}

func (s *UserSubscription) Snapshot() SubscriptionSnapshot {
	return SubscriptionSnapshot{
		PlanId:             s.PlanId,
		Status:             s.Status,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
	}
}
