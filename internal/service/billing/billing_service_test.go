package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/domain/dto"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

type fakeGateway struct {
	checkout *stripe.CheckoutSessionParams
	portal   *stripe.BillingPortalSessionParams
	event    stripe.Event
	eventErr error
}

func (g *fakeGateway) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	g.checkout = params
	return &stripe.CheckoutSession{ID: "cs_test", URL: "https://checkout.stripe.test/cs_test"}, nil
}

func (g *fakeGateway) CreatePortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	g.portal = params
	return &stripe.BillingPortalSession{URL: "https://billing.stripe.test/p"}, nil
}

func (g *fakeGateway) ConstructEvent([]byte, string) (stripe.Event, error) {
	return g.event, g.eventErr
}

var cfg = Config{
	Prices:          map[string]string{"pro_monthly": "price_pro_m", "pro_yearly": "price_pro_y"},
	SuccessURL:      "https://app.test/success",
	CancelURL:       "https://app.test/cancel",
	PortalReturnURL: "https://app.test/account",
}

func newUser(t *testing.T, st store.Store) *domain.User {
	t.Helper()
	u := &domain.User{Email: "buyer@example.com", Role: constants.RoleUser, Plan: constants.PlanFree}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func TestCheckout(t *testing.T) {
	st := store.NewMemoryStore()
	gw := &fakeGateway{}
	svc := NewService(st, gw, cfg)
	user := newUser(t, st)

	url, err := svc.Checkout(context.Background(), user, &dto.CheckoutRequest{Plan: "Pro"})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/cs_test", url)

	require.NotNil(t, gw.checkout)
	assert.Equal(t, "price_pro_m", *gw.checkout.LineItems[0].Price)
	assert.Equal(t, "buyer@example.com", *gw.checkout.CustomerEmail)
	assert.Equal(t, "1", *gw.checkout.ClientReferenceID)
	assert.Equal(t, "pro", gw.checkout.Metadata["plan_type"])

	_, err = svc.Checkout(context.Background(), user, &dto.CheckoutRequest{Plan: "enterprise", Cycle: "yearly"})
	assert.ErrorIs(t, err, constants.ErrBadRequest)
}

func TestBillingDisabledWithoutGateway(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), nil, cfg)

	_, err := svc.Checkout(context.Background(), &domain.User{}, &dto.CheckoutRequest{Plan: "pro"})
	assert.ErrorIs(t, err, constants.ErrBillingNotConfigured)
	assert.Equal(t, 503, constants.CodeOf(err))
}

func TestPortalNeedsCustomer(t *testing.T) {
	st := store.NewMemoryStore()
	gw := &fakeGateway{}
	svc := NewService(st, gw, cfg)
	user := newUser(t, st)

	_, err := svc.Portal(context.Background(), user)
	assert.ErrorIs(t, err, constants.ErrNoCustomer)

	customer := "cus_123"
	user.StripeCustomerID = &customer
	url, err := svc.Portal(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "https://billing.stripe.test/p", url)
	assert.Equal(t, "cus_123", *gw.portal.Customer)
	assert.Equal(t, cfg.PortalReturnURL, *gw.portal.ReturnURL)
}

func event(t *testing.T, typ string, obj interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(obj)
	require.NoError(t, err)
	return stripe.Event{Type: stripe.EventType(typ), Data: &stripe.EventData{Raw: raw}}
}

func TestWebhookUpgradesAndDowngrades(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	gw := &fakeGateway{}
	svc := NewService(st, gw, cfg)
	user := newUser(t, st)

	gw.event = event(t, eventCheckoutCompleted, map[string]interface{}{
		"id":                  "cs_test",
		"object":              "checkout.session",
		"client_reference_id": "1",
		"customer":            "cus_123",
		"metadata":            map[string]string{"plan_type": "pro"},
	})
	require.NoError(t, svc.HandleWebhook(ctx, []byte("{}"), "sig"))

	upgraded, err := st.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "pro", upgraded.Plan)
	require.NotNil(t, upgraded.StripeCustomerID)
	assert.Equal(t, "cus_123", *upgraded.StripeCustomerID)

	gw.event = event(t, eventSubscriptionDeleted, map[string]interface{}{
		"id":       "sub_1",
		"object":   "subscription",
		"customer": "cus_123",
		"status":   "canceled",
	})
	require.NoError(t, svc.HandleWebhook(ctx, []byte("{}"), "sig"))

	downgraded, err := st.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.PlanFree, downgraded.Plan)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	gw := &fakeGateway{eventErr: errors.New("no valid signature")}
	svc := NewService(store.NewMemoryStore(), gw, cfg)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "bad")
	assert.ErrorIs(t, err, constants.ErrBadRequest)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewService(store.NewMemoryStore(), gw, cfg)
	gw.event = event(t, "invoice.paid", map[string]string{"id": "in_1"})

	assert.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
}
