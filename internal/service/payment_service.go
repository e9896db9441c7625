package service

import (
	"context"
	"errors"
	"fmt"

	"ai-jobassist-be/internal/dto"
	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/pkg/logger"
	"ai-jobassist-be/internal/repository/unitofwork"
	"ai-jobassist-be/pkg/access"
	"ai-jobassist-be/pkg/payment/stripe"
	"ai-jobassist-be/pkg/plans"
	"ai-jobassist-be/pkg/subscription"

	"github.com/google/uuid"
)

// BillingProvider is the outbound half of the payment provider.
type BillingProvider interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, in stripe.CheckoutInput) (*stripe.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerId string) (string, error)
	CancelAtPeriodEnd(ctx context.Context, providerSubscriptionId string) error
}

// WebhookVerifier authenticates and normalizes inbound provider notifications.
type WebhookVerifier interface {
	VerifyAndParse(payload []byte, signature string) (*entity.ProviderEvent, error)
}

type IPaymentService interface {
	CreateCheckout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	GetSubscriptionStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error)
	CancelSubscription(ctx context.Context, userId uuid.UUID) error
	CreatePortalSession(ctx context.Context, userId uuid.UUID) (*dto.PortalResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookAckResponse, error)
}

type paymentService struct {
	uowFactory   unitofwork.RepositoryFactory
	catalog      *plans.Catalog
	resolver     *access.Resolver
	billing      BillingProvider
	verifier     WebhookVerifier
	synchronizer *subscription.Synchronizer
	logger       logger.ILogger
}

func NewPaymentService(
	uowFactory unitofwork.RepositoryFactory,
	catalog *plans.Catalog,
	resolver *access.Resolver,
	billing BillingProvider,
	verifier WebhookVerifier,
	synchronizer *subscription.Synchronizer,
	log logger.ILogger,
) IPaymentService {
	return &paymentService{
		uowFactory:   uowFactory,
		catalog:      catalog,
		resolver:     resolver,
		billing:      billing,
		verifier:     verifier,
		synchronizer: synchronizer,
		logger:       log,
	}
}

func (s *paymentService) CreateCheckout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	plan, ok := s.catalog.Plan(req.PlanId)
	if !ok {
		return nil, ErrPlanNotFound
	}
	if !plan.Purchasable || len(plan.ProviderPriceIds) == 0 {
		return nil, ErrPlanNotPurchasable
	}
	if !s.billing.Configured() {
		return nil, ErrBillingUnavailable
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindById(ctx, userId)
	if err != nil {
		return nil, err
	}
	current, err := uow.SubscriptionRepository().FindCurrentByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	// A second checkout would open a parallel subscription; plan changes go through the portal.
	if current != nil && current.Status.Entitling() {
		return nil, ErrAlreadySubscribed
	}

	in := stripe.CheckoutInput{
		UserId:  userId,
		PlanId:  plan.Id,
		PriceId: plan.ProviderPriceIds[0],
	}
	if user != nil {
		in.Email = user.Email
	}
	if current != nil {
		in.CustomerId = current.ProviderCustomerId
	}

	sess, err := s.billing.CreateCheckoutSession(ctx, in)
	if err != nil {
		return nil, err
	}

	s.logger.Info("PAYMENT", "Checkout session created", map[string]interface{}{
		"user_id":    userId.String(),
		"plan_id":    plan.Id,
		"session_id": sess.Id,
	})
	return &dto.CheckoutResponse{SessionId: sess.Id, CheckoutURL: sess.URL}, nil
}

func (s *paymentService) GetSubscriptionStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error) {
	acc, err := s.resolver.Resolve(ctx, userId)
	if err != nil {
		return nil, err
	}
	current, err := s.uowFactory.NewUnitOfWork(ctx).SubscriptionRepository().FindCurrentByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := &dto.SubscriptionStatusResponse{Tier: string(acc.Tier)}
	if current == nil {
		return res, nil
	}

	start, end := current.CurrentPeriodStart, current.CurrentPeriodEnd
	res.HasSubscription = true
	res.PlanId = current.PlanId
	res.Status = string(current.Status)
	res.Entitling = current.Status.Entitling()
	res.CancelAtPeriodEnd = current.CancelAtPeriodEnd
	if !start.IsZero() {
		res.CurrentPeriodStart = &start
	}
	if !end.IsZero() {
		res.CurrentPeriodEnd = &end
	}
	if plan, ok := s.catalog.Plan(current.PlanId); ok {
		res.PlanName = plan.Name
	}
	return res, nil
}

// CancelSubscription asks the provider to stop renewal. Access continues until
// the provider reports the subscription deleted.
func (s *paymentService) CancelSubscription(ctx context.Context, userId uuid.UUID) error {
	if !s.billing.Configured() {
		return ErrBillingUnavailable
	}
	current, err := s.uowFactory.NewUnitOfWork(ctx).SubscriptionRepository().FindCurrentByUserId(ctx, userId)
	if err != nil {
		return err
	}
	if current == nil || !current.Status.Entitling() {
		return ErrNoSubscription
	}
	if current.CancelAtPeriodEnd {
		return nil
	}

	if err := s.billing.CancelAtPeriodEnd(ctx, current.ProviderSubscriptionId); err != nil {
		return err
	}
	s.logger.Info("PAYMENT", "Cancellation requested", map[string]interface{}{
		"user_id":         userId.String(),
		"subscription_id": current.ProviderSubscriptionId,
	})
	return nil
}

func (s *paymentService) CreatePortalSession(ctx context.Context, userId uuid.UUID) (*dto.PortalResponse, error) {
	if !s.billing.Configured() {
		return nil, ErrBillingUnavailable
	}
	current, err := s.uowFactory.NewUnitOfWork(ctx).SubscriptionRepository().FindCurrentByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	if current == nil || current.ProviderCustomerId == "" {
		return nil, ErrNoSubscription
	}

	url, err := s.billing.CreatePortalSession(ctx, current.ProviderCustomerId)
	if err != nil {
		return nil, err
	}
	return &dto.PortalResponse{URL: url}, nil
}

// HandleWebhook returns ErrWebhookRejected for requests that will never
// succeed (bad signature, malformed event). Any other error asks the provider
// to retry.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookAckResponse, error) {
	evt, err := s.verifier.VerifyAndParse(payload, signature)
	switch {
	case errors.Is(err, stripe.ErrNotConfigured):
		s.logger.Error("PAYMENT", "Webhook received but no signing secret is configured", nil)
		return nil, err
	case errors.Is(err, stripe.ErrSignatureInvalid):
		s.logger.Warn("SECURITY", "Webhook signature verification failed", map[string]interface{}{
			"error":        err.Error(),
			"payload_size": len(payload),
		})
		return nil, fmt.Errorf("%w: %v", ErrWebhookRejected, err)
	case err != nil:
		s.logger.Error("PAYMENT", "Webhook payload could not be parsed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrWebhookRejected, err)
	}

	result, err := s.synchronizer.Apply(ctx, evt)
	if errors.Is(err, subscription.ErrMalformedEvent) {
		return nil, fmt.Errorf("%w: %v", ErrWebhookRejected, err)
	}
	if err != nil {
		s.logger.Error("PAYMENT", "Webhook processing failed, provider will retry", map[string]interface{}{
			"event_id": evt.EventId,
			"type":     evt.RawType,
			"error":    err.Error(),
		})
		return nil, err
	}
	return &dto.WebhookAckResponse{Outcome: string(result.Outcome)}, nil
}
