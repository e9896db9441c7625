// Package stripe adapts Stripe Checkout, Billing Portal and webhooks to the
// subscription domain.
package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-jobassist-be/internal/entity"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	ProviderName    = "stripe"
	SignatureHeader = "Stripe-Signature"

	MetadataUserId = "user_id"
	MetadataPlanId = "plan_id"
)

var (
	ErrNotConfigured    = errors.New("stripe webhook secret is not configured")
	ErrSignatureInvalid = errors.New("stripe signature invalid")
	ErrPayloadInvalid   = errors.New("stripe payload invalid")
)

var eventTypes = map[string]entity.ProviderEventType{
	"checkout.session.completed":    entity.EventCheckoutCompleted,
	"customer.subscription.created": entity.EventSubscriptionCreated,
	"customer.subscription.updated": entity.EventSubscriptionUpdated,
	"customer.subscription.deleted": entity.EventSubscriptionDeleted,
	"invoice.payment_succeeded":     entity.EventInvoicePaymentSucceeded,
	"invoice.paid":                  entity.EventInvoicePaymentSucceeded,
	"invoice.payment_failed":        entity.EventInvoicePaymentFailed,
}

type Processor struct {
	secret string
}

func NewProcessor(webhookSecret string) *Processor {
	return &Processor{secret: webhookSecret}
}

func (p *Processor) Configured() bool {
	return p.secret != ""
}

// VerifyAndParse checks the signature and reduces the event to a ProviderEvent.
// Event types the synchronizer does not handle come back as EventUnknown.
func (p *Processor) VerifyAndParse(payload []byte, sigHeader string) (*entity.ProviderEvent, error) {
	if !p.Configured() {
		return nil, ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, p.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	out := &entity.ProviderEvent{
		Provider:   ProviderName,
		EventId:    event.ID,
		RawType:    string(event.Type),
		Type:       entity.EventUnknown,
		OccurredAt: time.Unix(event.Created, 0).UTC(),
		Payload:    json.RawMessage(payload),
	}

	typ, known := eventTypes[string(event.Type)]
	if !known || event.Data == nil {
		return out, nil
	}
	out.Type = typ

	switch typ {
	case entity.EventCheckoutCompleted:
		err = fillFromCheckout(out, event.Data.Raw)
	case entity.EventSubscriptionCreated, entity.EventSubscriptionUpdated, entity.EventSubscriptionDeleted:
		err = fillFromSubscription(out, event.Data.Raw)
	case entity.EventInvoicePaymentSucceeded, entity.EventInvoicePaymentFailed:
		err = fillFromInvoice(out, event.Data.Raw)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func fillFromCheckout(out *entity.ProviderEvent, raw json.RawMessage) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return fmt.Errorf("%w: checkout session: %v", ErrPayloadInvalid, err)
	}
	if sess.Mode != stripe.CheckoutSessionModeSubscription {
		out.Type = entity.EventUnknown
		return nil
	}

	if sess.Subscription != nil {
		out.ProviderSubscriptionId = sess.Subscription.ID
	}
	if sess.Customer != nil {
		out.ProviderCustomerId = sess.Customer.ID
	}
	out.UserId = parseUserId(sess.ClientReferenceID)
	if out.UserId == uuid.Nil {
		out.UserId = parseUserId(sess.Metadata[MetadataUserId])
	}
	out.PlanId = sess.Metadata[MetadataPlanId]
	out.Status = entity.SubscriptionStatusActive
	return nil
}

func fillFromSubscription(out *entity.ProviderEvent, raw json.RawMessage) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("%w: subscription: %v", ErrPayloadInvalid, err)
	}

	out.ProviderSubscriptionId = sub.ID
	if sub.Customer != nil {
		out.ProviderCustomerId = sub.Customer.ID
	}
	out.UserId = parseUserId(sub.Metadata[MetadataUserId])
	out.PlanId = sub.Metadata[MetadataPlanId]
	out.Status = mapStatus(sub.Status)
	out.CancelAtPeriodEnd = sub.CancelAtPeriodEnd

	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			out.PriceId = item.Price.ID
		}
		if item.CurrentPeriodStart > 0 {
			out.CurrentPeriodStart = time.Unix(item.CurrentPeriodStart, 0).UTC()
		}
		if item.CurrentPeriodEnd > 0 {
			out.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
		}
	}
	return nil
}

func fillFromInvoice(out *entity.ProviderEvent, raw json.RawMessage) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(raw, &invoice); err != nil {
		return fmt.Errorf("%w: invoice: %v", ErrPayloadInvalid, err)
	}

	if invoice.Customer != nil {
		out.ProviderCustomerId = invoice.Customer.ID
	}
	if invoice.Parent == nil || invoice.Parent.SubscriptionDetails == nil {
		// One-off invoice, nothing to synchronize.
		return nil
	}
	details := invoice.Parent.SubscriptionDetails
	if details.Subscription != nil {
		out.ProviderSubscriptionId = details.Subscription.ID
	}
	out.UserId = parseUserId(details.Metadata[MetadataUserId])
	out.PlanId = details.Metadata[MetadataPlanId]
	return nil
}

// mapStatus folds Stripe's statuses into ours. Anything that is not paying
// and not finished counts as past_due so it grants no paid tier.
func mapStatus(s stripe.SubscriptionStatus) entity.SubscriptionStatus {
	switch s {
	case stripe.SubscriptionStatusActive:
		return entity.SubscriptionStatusActive
	case stripe.SubscriptionStatusTrialing:
		return entity.SubscriptionStatusTrialing
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return entity.SubscriptionStatusCanceled
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid,
		stripe.SubscriptionStatusIncomplete, stripe.SubscriptionStatusPaused:
		return entity.SubscriptionStatusPastDue
	}
	return ""
}

func parseUserId(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
