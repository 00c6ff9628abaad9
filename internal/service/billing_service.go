package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/viralacademy/academy-api/internal/domain"
	"github.com/viralacademy/academy-api/internal/repository/ports"
)

var (
	ErrWebhookSignature = errors.New("invalid webhook signature")
	ErrWebhookPayload   = errors.New("unreadable webhook payload")
)

type BillingService struct {
	subscriptions ports.SubscriptionRepository
	users         ports.UserRepository
	webhookSecret string
}

func NewBillingService(subscriptions ports.SubscriptionRepository, users ports.UserRepository, webhookSecret string) *BillingService {
	return &BillingService{
		subscriptions: subscriptions,
		users:         users,
		webhookSecret: webhookSecret,
	}
}

// HandleWebhook verifies and applies one Stripe event. Events for customers
// or subscriptions we do not know are acknowledged without effect so Stripe
// stops retrying them.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := webhook.ConstructEvent(payload, signatureHeader, s.webhookSecret)
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrNotSigned),
			errors.Is(err, webhook.ErrInvalidHeader),
			errors.Is(err, webhook.ErrNoValidSignature),
			errors.Is(err, webhook.ErrTooOld):
			return ErrWebhookSignature
		}
		// Signed fine but otherwise unusable, e.g. an API version this
		// SDK does not accept.
		return ErrWebhookPayload
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return ErrWebhookPayload
		}
		return s.activateFromCheckout(ctx, &session)
	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return ErrWebhookPayload
		}
		return s.applyStatus(ctx, sub.ID, mapStripeStatus(sub.Status), periodEnd(&sub))
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return ErrWebhookPayload
		}
		return s.applyStatus(ctx, sub.ID, domain.SubscriptionStatusCanceled, nil)
	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return ErrWebhookPayload
		}
		if invoice.Subscription == nil {
			return nil
		}
		return s.applyStatus(ctx, invoice.Subscription.ID, domain.SubscriptionStatusPastDue, nil)
	default:
		return nil
	}
}

func (s *BillingService) Current(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	sub, err := s.subscriptions.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// activateFromCheckout joins a completed checkout to a local account by the
// email the customer paid with.
func (s *BillingService) activateFromCheckout(ctx context.Context, session *stripe.CheckoutSession) error {
	email := checkoutEmail(session)
	if email == "" || session.Subscription == nil || session.Customer == nil {
		return nil
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	_, err = s.subscriptions.Upsert(ctx, &domain.Subscription{
		UserID:               user.ID,
		StripeCustomerID:     session.Customer.ID,
		StripeSubscriptionID: session.Subscription.ID,
		Status:               domain.SubscriptionStatusActive,
	})
	return err
}

func (s *BillingService) applyStatus(ctx context.Context, stripeSubID string, status domain.SubscriptionStatus, currentPeriodEnd *time.Time) error {
	sub, err := s.subscriptions.UpdateStatus(ctx, stripeSubID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	if currentPeriodEnd != nil {
		sub.CurrentPeriodEnd = currentPeriodEnd
		_, err = s.subscriptions.Upsert(ctx, sub)
	}
	return err
}

func mapStripeStatus(status stripe.SubscriptionStatus) domain.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return domain.SubscriptionStatusActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return domain.SubscriptionStatusPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return domain.SubscriptionStatusCanceled
	default:
		return domain.SubscriptionStatusIncomplete
	}
}

func periodEnd(sub *stripe.Subscription) *time.Time {
	if sub.CurrentPeriodEnd == 0 {
		return nil
	}
	end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	return &end
}

func checkoutEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}
