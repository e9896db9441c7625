// Package subscription keeps local subscription records in step with the
// payment provider's webhook notifications.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/internal/repository/contract"
	"ai-jobassist-be/internal/repository/unitofwork"
	"ai-jobassist-be/pkg/events"
	"ai-jobassist-be/pkg/plans"
)

var (
	// ErrUnlinkedSubscription means the event names a subscription we have not
	// seen and carries no user to attach it to. The provider should retry.
	ErrUnlinkedSubscription = errors.New("subscription is not linked to a user yet")
	ErrMalformedEvent       = errors.New("malformed provider event")
)

type Result struct {
	Outcome      entity.SyncOutcome
	Subscription *entity.UserSubscription
}

type Synchronizer struct {
	uowFactory unitofwork.RepositoryFactory
	catalog    *plans.Catalog
	publisher  events.Publisher
	logger     logger.ILogger
	now        func() time.Time
}

func NewSynchronizer(uowFactory unitofwork.RepositoryFactory, catalog *plans.Catalog, publisher events.Publisher, log logger.ILogger) *Synchronizer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Synchronizer{
		uowFactory: uowFactory,
		catalog:    catalog,
		publisher:  publisher,
		logger:     log,
		now:        time.Now,
	}
}

// Apply processes one verified event. The event id is recorded in the same
// transaction as the state change, so a redelivery is answered as duplicate.
// A returned error means nothing was committed and the event should be retried.
func (s *Synchronizer) Apply(ctx context.Context, evt *entity.ProviderEvent) (*Result, error) {
	if evt == nil || evt.EventId == "" || evt.Provider == "" {
		return nil, ErrMalformedEvent
	}
	if evt.Type == entity.EventUnknown {
		s.logger.Debug("BILLING", "Ignoring unhandled provider event", map[string]interface{}{
			"event_id": evt.EventId,
			"type":     evt.RawType,
		})
		return &Result{Outcome: entity.SyncIgnored}, nil
	}
	if evt.ProviderSubscriptionId == "" {
		s.logger.Info("BILLING", "Event carries no subscription, ignoring", map[string]interface{}{
			"event_id": evt.EventId,
			"type":     string(evt.Type),
		})
		return &Result{Outcome: entity.SyncIgnored}, nil
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = s.now().UTC()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin webhook transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = uow.Rollback()
		}
	}()

	seen, err := uow.WebhookEventRepository().Exists(ctx, evt.Provider, evt.EventId)
	if err != nil {
		return nil, err
	}
	if seen {
		return &Result{Outcome: entity.SyncDuplicate}, nil
	}

	subs := uow.SubscriptionRepository()
	current, err := subs.FindByProviderSubscriptionIdForUpdate(ctx, evt.ProviderSubscriptionId)
	if err != nil {
		return nil, err
	}

	next, outcome, err := transition(current, evt, s.resolvePlan(evt))
	if err != nil {
		s.logger.Warn("BILLING", "Cannot apply event yet", map[string]interface{}{
			"event_id":        evt.EventId,
			"type":            string(evt.Type),
			"subscription_id": evt.ProviderSubscriptionId,
			"error":           err.Error(),
		})
		return nil, err
	}

	if outcome == entity.SyncApplied {
		if err := s.persist(ctx, subs, current, next, evt); err != nil {
			if errors.Is(err, contract.ErrConflict) || errors.Is(err, contract.ErrDuplicate) {
				s.logger.Warn("BILLING", "Subscription changed by a concurrent delivery, event will be retried", map[string]interface{}{
					"event_id":        evt.EventId,
					"type":            string(evt.Type),
					"subscription_id": evt.ProviderSubscriptionId,
				})
			}
			return nil, err
		}
	}

	err = uow.WebhookEventRepository().Create(ctx, &entity.WebhookEvent{
		Provider:               evt.Provider,
		EventId:                evt.EventId,
		EventType:              string(evt.Type),
		ProviderSubscriptionId: evt.ProviderSubscriptionId,
		Outcome:                outcome,
		Payload:                evt.Payload,
		ProcessedAt:            s.now().UTC(),
	})
	if errors.Is(err, contract.ErrDuplicate) {
		// A concurrent delivery of the same event won the race.
		return &Result{Outcome: entity.SyncDuplicate}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit webhook transaction: %w", err)
	}
	committed = true

	result := &Result{Outcome: outcome, Subscription: next}
	if next == nil {
		result.Subscription = current
	}

	s.logger.Info("BILLING", "Provider event processed", map[string]interface{}{
		"event_id":        evt.EventId,
		"type":            string(evt.Type),
		"subscription_id": evt.ProviderSubscriptionId,
		"outcome":         string(outcome),
	})
	if outcome == entity.SyncApplied {
		s.publish(ctx, current, next, evt)
	}
	return result, nil
}

// resolvePlan prefers the catalog mapping of the provider price id and falls
// back to the plan id hint from metadata.
func (s *Synchronizer) resolvePlan(evt *entity.ProviderEvent) string {
	if evt.PriceId != "" {
		if plan, ok := s.catalog.PlanByPriceId(evt.PriceId); ok {
			return plan.Id
		}
	}
	if evt.PlanId != "" {
		if plan, ok := s.catalog.Plan(evt.PlanId); ok {
			return plan.Id
		}
	}
	if evt.PriceId != "" || evt.PlanId != "" {
		s.logger.Warn("BILLING", "Event references unknown plan", map[string]interface{}{
			"event_id": evt.EventId,
			"price_id": evt.PriceId,
			"plan_id":  evt.PlanId,
		})
	}
	return ""
}

func (s *Synchronizer) persist(ctx context.Context, subs contract.SubscriptionRepository, current, next *entity.UserSubscription, evt *entity.ProviderEvent) error {
	var before *entity.SubscriptionSnapshot
	if current == nil {
		if err := subs.Create(ctx, next); err != nil {
			return err
		}
	} else {
		snap := current.Snapshot()
		before = &snap
		if err := subs.Update(ctx, next, current.LastEventAt); err != nil {
			return err
		}
	}

	return subs.CreateLog(ctx, &entity.SubscriptionLog{
		SubscriptionId: next.Id,
		UserId:         next.UserId,
		Reason:         string(evt.Type),
		EventId:        evt.EventId,
		Before:         before,
		After:          next.Snapshot(),
	})
}

func (s *Synchronizer) publish(ctx context.Context, current, next *entity.UserSubscription, evt *entity.ProviderEvent) {
	eventType := events.TypeSubscriptionUpdated
	switch next.Status {
	case entity.SubscriptionStatusPastDue:
		eventType = events.TypeSubscriptionPastDue
	case entity.SubscriptionStatusCanceled:
		eventType = events.TypeSubscriptionCanceled
	}
	if current != nil && current.Status == next.Status && eventType != events.TypeSubscriptionUpdated {
		eventType = events.TypeSubscriptionUpdated
	}

	err := s.publisher.Publish(ctx, events.New(eventType, map[string]interface{}{
		"user_id":                  next.UserId.String(),
		"subscription_id":          next.Id.String(),
		"provider_subscription_id": next.ProviderSubscriptionId,
		"plan_id":                  next.PlanId,
		"status":                   string(next.Status),
		"current_period_end":       next.CurrentPeriodEnd.Format(time.RFC3339),
		"cause":                    string(evt.Type),
	}))
	if err != nil {
		s.logger.Warn("BILLING", "Failed to publish subscription event", map[string]interface{}{
			"subscription_id": next.Id.String(),
			"error":           err.Error(),
		})
	}
}
