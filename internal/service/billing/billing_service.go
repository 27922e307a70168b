// Package billing redirects users to Stripe checkout and the customer portal, and applies
// subscription changes reported by Stripe webhooks.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/domain/dto"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/logger"
	"github.com/ougirez/supplytwin/internal/pkg/store"
	"github.com/stripe/stripe-go/v82"
)

const (
	defaultCycle = "monthly"

	eventCheckoutCompleted   = "checkout.session.completed"
	eventSubscriptionDeleted = "customer.subscription.deleted"
	eventSubscriptionUpdated = "customer.subscription.updated"
)

type Config struct {
	// Prices maps "<plan>_<cycle>" to a Stripe price id.
	Prices          map[string]string
	SuccessURL      string
	CancelURL       string
	PortalReturnURL string
}

type Service struct {
	store   store.Store
	gateway Gateway
	cfg     Config
}

// NewService returns a billing service. A nil gateway disables billing endpoints.
func NewService(store store.Store, gateway Gateway, cfg Config) *Service {
	return &Service{store: store, gateway: gateway, cfg: cfg}
}

// Checkout creates a subscription checkout session and returns its URL.
func (s *Service) Checkout(ctx context.Context, user *domain.User, req *dto.CheckoutRequest) (string, error) {
	if s.gateway == nil {
		return "", constants.ErrBillingNotConfigured
	}

	cycle := req.Cycle
	if cycle == "" {
		cycle = defaultCycle
	}
	priceKey := fmt.Sprintf("%s_%s", strings.ToLower(req.Plan), cycle)
	priceID := s.cfg.Prices[priceKey]
	if priceID == "" {
		return "", fmt.Errorf("%w: price not configured for %s", constants.ErrBadRequest, priceKey)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(strconv.FormatInt(user.ID, 10)),
		Metadata: map[string]string{
			"plan_type":     strings.ToLower(req.Plan),
			"billing_cycle": cycle,
		},
	}
	if user.StripeCustomerID != nil {
		params.Customer = user.StripeCustomerID
	} else {
		params.CustomerEmail = stripe.String(user.Email)
	}

	sess, err := s.gateway.CreateCheckoutSession(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	logger.Infof(ctx, "checkout session %s created for user %d (%s)", sess.ID, user.ID, priceKey)
	return sess.URL, nil
}

// Portal opens the Stripe customer portal for a user who has paid before.
func (s *Service) Portal(ctx context.Context, user *domain.User) (string, error) {
	if s.gateway == nil {
		return "", constants.ErrBillingNotConfigured
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return "", constants.ErrNoCustomer
	}

	sess, err := s.gateway.CreatePortalSession(&stripe.BillingPortalSessionParams{
		Customer:  user.StripeCustomerID,
		ReturnURL: stripe.String(s.cfg.PortalReturnURL),
	})
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}

	return sess.URL, nil
}

// HandleWebhook verifies and applies one Stripe event. Unknown event types are ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return constants.ErrBillingNotConfigured
	}

	event, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %s", constants.ErrBadRequest, err.Error())
	}
	if event.Data == nil {
		return fmt.Errorf("%w: event without data", constants.ErrBadRequest)
	}

	switch string(event.Type) {
	case eventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("%w: decode checkout session: %s", constants.ErrBadRequest, err.Error())
		}
		return s.checkoutCompleted(ctx, &sess)

	case eventSubscriptionDeleted, eventSubscriptionUpdated:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%w: decode subscription: %s", constants.ErrBadRequest, err.Error())
		}
		return s.subscriptionChanged(ctx, &sub)

	default:
		logger.Debugf(ctx, "stripe event %s ignored", event.Type)
		return nil
	}
}

func (s *Service) checkoutCompleted(ctx context.Context, sess *stripe.CheckoutSession) error {
	userID, err := strconv.ParseInt(sess.ClientReferenceID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: client_reference_id %q", constants.ErrBadRequest, sess.ClientReferenceID)
	}

	plan := sess.Metadata["plan_type"]
	if plan == "" {
		return fmt.Errorf("%w: checkout session without plan", constants.ErrBadRequest)
	}

	opts := store.UpdateUserOpts{Plan: &plan}
	if sess.Customer != nil && sess.Customer.ID != "" {
		opts.StripeCustomerID = &sess.Customer.ID
	}

	if _, err := s.store.UpdateUser(ctx, userID, opts); err != nil {
		return fmt.Errorf("store.UpdateUser: %w", err)
	}

	logger.Infof(ctx, "user %d upgraded to %s", userID, plan)
	return nil
}

func (s *Service) subscriptionChanged(ctx context.Context, sub *stripe.Subscription) error {
	if sub.Customer == nil || sub.Customer.ID == "" {
		return fmt.Errorf("%w: subscription without customer", constants.ErrBadRequest)
	}

	user, err := s.store.GetUserByStripeCustomer(ctx, sub.Customer.ID)
	if errors.Is(err, constants.ErrDBNotFound) {
		logger.Warnf(ctx, "stripe customer %s has no user", sub.Customer.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("store.GetUserByStripeCustomer: %w", err)
	}

	plan := sub.Metadata["plan_type"]
	switch sub.Status {
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusIncompleteExpired:
		plan = constants.PlanFree
	}
	if plan == "" || plan == user.Plan {
		return nil
	}

	if _, err := s.store.UpdateUser(ctx, user.ID, store.UpdateUserOpts{Plan: &plan}); err != nil {
		return fmt.Errorf("store.UpdateUser: %w", err)
	}

	logger.Infof(ctx, "user %d plan changed to %s", user.ID, plan)
	return nil
}
