package stripe

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var ErrClientNotConfigured = errors.New("stripe secret key is not configured")

type Config struct {
	SecretKey       string
	SuccessURL      string
	CancelURL       string
	PortalReturnURL string
}

type CheckoutInput struct {
	UserId     uuid.UUID
	Email      string
	PlanId     string
	PriceId    string
	CustomerId string
}

type CheckoutSession struct {
	Id  string
	URL string
}

// Client talks to the Stripe API with its own key; it never touches stripe.Key.
type Client struct {
	api *client.API
	cfg Config
}

func NewClient(cfg Config) *Client {
	c := &Client{cfg: cfg}
	if cfg.SecretKey != "" {
		c.api = &client.API{}
		c.api.Init(cfg.SecretKey, nil)
	}
	return c
}

func (c *Client) Configured() bool {
	return c.api != nil
}

// CreateCheckoutSession starts a subscription checkout. The user and plan are
// written to the session and to the subscription metadata so every later
// webhook can be linked back.
func (c *Client) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*CheckoutSession, error) {
	if !c.Configured() {
		return nil, ErrClientNotConfigured
	}

	metadata := map[string]string{
		MetadataUserId: in.UserId.String(),
		MetadataPlanId: in.PlanId,
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(in.PriceId),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(in.UserId.String()),
		SuccessURL:        stripe.String(c.cfg.SuccessURL),
		CancelURL:         stripe.String(c.cfg.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
		AllowPromotionCodes: stripe.Bool(true),
	}
	if in.CustomerId != "" {
		params.Customer = stripe.String(in.CustomerId)
	} else if in.Email != "" {
		params.CustomerEmail = stripe.String(in.Email)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{Id: sess.ID, URL: sess.URL}, nil
}

func (c *Client) CreatePortalSession(ctx context.Context, customerId string) (string, error) {
	if !c.Configured() {
		return "", ErrClientNotConfigured
	}
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerId),
		ReturnURL: stripe.String(c.cfg.PortalReturnURL),
	}
	params.Context = ctx

	sess, err := c.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return sess.URL, nil
}

// CancelAtPeriodEnd asks Stripe to stop renewing. The local record changes
// when the resulting customer.subscription.updated webhook arrives.
func (c *Client) CancelAtPeriodEnd(ctx context.Context, providerSubscriptionId string) error {
	if !c.Configured() {
		return ErrClientNotConfigured
	}
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx

	if _, err := c.api.Subscriptions.Update(providerSubscriptionId, params); err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	return nil
}
