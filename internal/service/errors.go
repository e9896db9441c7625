package service

import "errors"

var (
	ErrPlanNotFound         = errors.New("plan not found")
	ErrPlanNotPurchasable   = errors.New("plan cannot be purchased")
	ErrAlreadySubscribed    = errors.New("already subscribed, change plans in the billing portal")
	ErrNoSubscription       = errors.New("no active subscription found")
	ErrBillingUnavailable   = errors.New("billing is not configured")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidRole          = errors.New("invalid role")
	ErrEmptyDocument        = errors.New("cv and job description must contain text")
	ErrAssistantUnavailable = errors.New("assistant is temporarily unavailable")
	ErrWebhookRejected      = errors.New("webhook rejected")
)
