package service

import (
	"context"
	"errors"

	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/internal/pkg/mailer"
	"ai-jobassist-be/internal/repository/unitofwork"
	"ai-jobassist-be/pkg/events"
	"ai-jobassist-be/pkg/plans"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type INotificationConsumer interface {
	Consume(ctx context.Context) error
}

type notificationConsumer struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	catalog    *plans.Catalog
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationConsumer(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	catalog *plans.Catalog,
	emailService mailer.IEmailService,
	log logger.ILogger,
) INotificationConsumer {
	return &notificationConsumer{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		catalog:    catalog,
		mailer:     emailService,
		logger:     log,
	}
}

// Consume emails users about failed payments and ended subscriptions. Emails
// are best effort: every message is acked.
func (c *notificationConsumer) Consume(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(ctx, msg)
			msg.Ack()
		}
	}()
	return nil
}

func (c *notificationConsumer) processMessage(ctx context.Context, msg *message.Message) {
	eventType := msg.Metadata.Get(events.MetadataEventType)
	if eventType != events.TypeSubscriptionPastDue && eventType != events.TypeSubscriptionCanceled {
		return
	}

	env, err := events.DecodeMessage(msg)
	if err != nil {
		c.logger.Warn("NOTIFY", "Dropping undecodable event", map[string]interface{}{"error": err.Error()})
		return
	}

	rawUserId, _ := env.Data["user_id"].(string)
	userId, err := uuid.Parse(rawUserId)
	if err != nil {
		c.logger.Warn("NOTIFY", "Event has no usable user id", map[string]interface{}{"type": env.Type})
		return
	}

	user, err := c.uowFactory.NewUnitOfWork(ctx).UserRepository().FindById(ctx, userId)
	if err != nil || user == nil {
		c.logger.Warn("NOTIFY", "Cannot load user for notification", map[string]interface{}{
			"user_id": userId.String(),
			"found":   user != nil,
		})
		return
	}

	planName := "paid"
	if planId, _ := env.Data["plan_id"].(string); planId != "" {
		if plan, ok := c.catalog.Plan(planId); ok {
			planName = plan.Name
		}
	}

	if env.Type == events.TypeSubscriptionPastDue {
		err = c.mailer.SendPaymentFailed(user.Email, user.FullName, planName)
	} else {
		err = c.mailer.SendSubscriptionCanceled(user.Email, user.FullName, planName)
	}
	switch {
	case errors.Is(err, mailer.ErrMailerNotConfigured):
		c.logger.Debug("NOTIFY", "Mailer not configured, skipping email", map[string]interface{}{"type": env.Type})
	case err != nil:
		c.logger.Error("NOTIFY", "Notification email failed", map[string]interface{}{
			"user_id": userId.String(),
			"type":    env.Type,
			"error":   err.Error(),
		})
	}
}
