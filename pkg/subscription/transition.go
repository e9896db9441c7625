package subscription

import (
	"time"

	"ai-jobassist-be/internal/entity"

	"github.com/google/uuid"
)

// transition computes the record after evt. current is nil for an unseen
// subscription. It returns the outcome and, for SyncApplied, the next state.
// Fields are written absolutely so replaying or reordering converges.
func transition(current *entity.UserSubscription, evt *entity.ProviderEvent, planId string) (*entity.UserSubscription, entity.SyncOutcome, error) {
	if current == nil {
		return create(evt, planId)
	}

	if current.Status == entity.SubscriptionStatusCanceled && evt.Type != entity.EventSubscriptionDeleted {
		return nil, entity.SyncIgnored, nil
	}
	if evt.Type != entity.EventSubscriptionDeleted && evt.OccurredAt.Before(current.LastEventAt) {
		return nil, entity.SyncStale, nil
	}

	next := *current
	switch evt.Type {
	case entity.EventCheckoutCompleted, entity.EventSubscriptionCreated:
		fillMissing(&next, evt)
		if next == *current {
			return nil, entity.SyncIgnored, nil
		}
	case entity.EventSubscriptionUpdated:
		if evt.Status.Valid() {
			next.Status = evt.Status
		}
		if planId != "" {
			next.PlanId = planId
		}
		next.CancelAtPeriodEnd = evt.CancelAtPeriodEnd
		applyPeriod(&next, evt)
	case entity.EventSubscriptionDeleted:
		if current.Status == entity.SubscriptionStatusCanceled {
			return nil, entity.SyncIgnored, nil
		}
		next.Status = entity.SubscriptionStatusCanceled
		next.CancelAtPeriodEnd = false
	case entity.EventInvoicePaymentSucceeded:
		next.Status = entity.SubscriptionStatusActive
		applyPeriod(&next, evt)
	case entity.EventInvoicePaymentFailed:
		next.Status = entity.SubscriptionStatusPastDue
	default:
		return nil, entity.SyncIgnored, nil
	}

	next.LastEventAt = latest(current.LastEventAt, evt.OccurredAt)
	return &next, entity.SyncApplied, nil
}

func create(evt *entity.ProviderEvent, planId string) (*entity.UserSubscription, entity.SyncOutcome, error) {
	if evt.UserId == uuid.Nil || planId == "" {
		if evt.Type == entity.EventSubscriptionDeleted {
			return nil, entity.SyncIgnored, nil
		}
		return nil, "", ErrUnlinkedSubscription
	}

	status := initialStatus(evt)
	sub := &entity.UserSubscription{
		UserId:                 evt.UserId,
		PlanId:                 planId,
		Status:                 status,
		ProviderSubscriptionId: evt.ProviderSubscriptionId,
		ProviderCustomerId:     evt.ProviderCustomerId,
		CancelAtPeriodEnd:      evt.CancelAtPeriodEnd && status != entity.SubscriptionStatusCanceled,
		LastEventAt:            evt.OccurredAt,
	}
	applyPeriod(sub, evt)
	return sub, entity.SyncApplied, nil
}

func initialStatus(evt *entity.ProviderEvent) entity.SubscriptionStatus {
	switch evt.Type {
	case entity.EventSubscriptionDeleted:
		return entity.SubscriptionStatusCanceled
	case entity.EventInvoicePaymentFailed:
		return entity.SubscriptionStatusPastDue
	case entity.EventInvoicePaymentSucceeded:
		return entity.SubscriptionStatusActive
	}
	if evt.Status.Valid() {
		return evt.Status
	}
	return entity.SubscriptionStatusActive
}

func fillMissing(sub *entity.UserSubscription, evt *entity.ProviderEvent) {
	if sub.ProviderCustomerId == "" {
		sub.ProviderCustomerId = evt.ProviderCustomerId
	}
	if sub.CurrentPeriodEnd.IsZero() {
		applyPeriod(sub, evt)
	}
}

func applyPeriod(sub *entity.UserSubscription, evt *entity.ProviderEvent) {
	if !evt.CurrentPeriodStart.IsZero() {
		sub.CurrentPeriodStart = evt.CurrentPeriodStart
	}
	if !evt.CurrentPeriodEnd.IsZero() {
		sub.CurrentPeriodEnd = evt.CurrentPeriodEnd
	}
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
