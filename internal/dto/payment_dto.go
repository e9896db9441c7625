// DTOs for checkout, subscription status and webhooks
package dto

import "time"

type CheckoutRequest struct {
	PlanId string `json:"plan_id" validate:"required,max=64"`
}

type CheckoutResponse struct {
	SessionId   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type PortalResponse struct {
	URL string `json:"url"`
}

type SubscriptionStatusResponse struct {
	HasSubscription    bool       `json:"has_subscription"`
	Tier               string     `json:"tier"`
	PlanId             string     `json:"plan_id,omitempty"`
	PlanName           string     `json:"plan_name,omitempty"`
	Status             string     `json:"status,omitempty"`
	Entitling          bool       `json:"entitling"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
}

type WebhookAckResponse struct {
	Outcome string `json:"outcome"`
}
