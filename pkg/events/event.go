package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SUBSCRIPTION_CANCELED").
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

const (
	TypeSubscriptionUpdated  = "SUBSCRIPTION_UPDATED"
	TypeSubscriptionPastDue  = "SUBSCRIPTION_PAST_DUE"
	TypeSubscriptionCanceled = "SUBSCRIPTION_CANCELED"
	TypeQuotaExceeded        = "QUOTA_EXCEEDED"
	TypeRoleGranted          = "ROLE_GRANTED"
	TypeRoleRevoked          = "ROLE_REVOKED"
)

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Envelope is the wire form shared by every transport.
type Envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func ToEnvelope(e Event) Envelope {
	return Envelope{Type: e.EventType(), OccurredAt: e.Timestamp(), Data: e.Payload()}
}
