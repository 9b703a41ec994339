package services

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
)

// SessionLine is one product line sent to the hosted checkout page.
// UnitAmount is in minor currency units.
type SessionLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutSessionInput describes a hosted checkout session to create.
type CheckoutSessionInput struct {
	OrderID       string
	CustomerEmail string
	Lines         []SessionLine
	SuccessURL    string
	CancelURL     string
}

// PaymentGateway abstracts the payment provider so controllers and the
// checkout service can be tested against a fake.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (*stripe.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
	ParseWebhook(r *http.Request) (stripe.Event, error)
}

// StripeService is the single configured Stripe client instance, constructed
// once in main and injected into the checkout and webhook components.
type StripeService struct {
	webhookKey string
	currency   string
}

func NewStripeService(secretKey, webhookKey, currency string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{webhookKey: webhookKey, currency: currency}
}

// paymentMethods lists the payment method types offered on the hosted page:
// card plus the local methods the shop supports.
var paymentMethods = []string{"card", "ideal", "bancontact"}

// CreateCheckoutSession creates a one-time-payment hosted session. The order
// id is carried in metadata on both the session and its payment intent so the
// webhook handler can correlate later events. The success URL is augmented
// with the resulting session id.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (*stripe.CheckoutSession, error) {
	successURL := input.SuccessURL
	if strings.Contains(successURL, "?") {
		successURL += "&session_id={CHECKOUT_SESSION_ID}"
	} else {
		successURL += "?session_id={CHECKOUT_SESSION_ID}"
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.Lines))
	for _, line := range input.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.currency),
				UnitAmount: stripe.Int64(line.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice(paymentMethods),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(input.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"orderId": input.OrderID},
		},
	}
	params.Context = ctx
	if input.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(input.CustomerEmail)
	}
	params.AddMetadata("orderId", input.OrderID)

	return session.New(params)
}

// RetrieveSession fetches a checkout session by id.
func (s *StripeService) RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	return session.Get(sessionID, params)
}

// ParseWebhook reads the raw request body and verifies the provider
// signature. The body must reach this method unparsed or verification fails.
func (s *StripeService) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))
	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.webhookKey)
}
