package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ProviderEventType string

const (
	EventCheckoutCompleted       ProviderEventType = "checkout.completed"
	EventSubscriptionCreated     ProviderEventType = "subscription.created"
	EventSubscriptionUpdated     ProviderEventType = "subscription.updated"
	EventSubscriptionDeleted     ProviderEventType = "subscription.deleted"
	EventInvoicePaymentSucceeded ProviderEventType = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    ProviderEventType = "invoice.payment_failed"
	EventUnknown                 ProviderEventType = "unknown"
)

// ProviderEvent is a verified payment-provider notification reduced to what the
// subscription state machine needs.
type ProviderEvent struct {
	Provider               string
	EventId                string
	Type                   ProviderEventType
	RawType                string
	OccurredAt             time.Time
	ProviderSubscriptionId string
	ProviderCustomerId     string
	UserId                 uuid.UUID
	PriceId                string
	// PlanId is the catalog id hint from checkout metadata.
	PlanId                 string
	Status                 SubscriptionStatus
	CurrentPeriodStart     time.Time
	CurrentPeriodEnd       time.Time
	CancelAtPeriodEnd      bool
	Payload                json.RawMessage
}

type SyncOutcome string

const (
	SyncApplied   SyncOutcome = "applied"
	SyncDuplicate SyncOutcome = "duplicate"
	SyncIgnored   SyncOutcome = "ignored"
	SyncStale     SyncOutcome = "stale"
)

type WebhookEvent struct {
	Id                     uuid.UUID
	Provider               string
	EventId                string
	EventType              string
	ProviderSubscriptionId string
	Outcome                SyncOutcome
	Payload                json.RawMessage
	ProcessedAt            time.Time
}
