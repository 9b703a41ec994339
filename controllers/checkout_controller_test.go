package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RafalSprengel/restaurant-pos-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
)

type fakeCheckout struct {
	lastReq *services.CheckoutRequest
	url     string
	err     *services.ServiceError
}

func (f *fakeCheckout) CreateSession(ctx context.Context, req *services.CheckoutRequest) (string, *services.ServiceError) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type statusGateway struct {
	webhookGateway
	session *stripe.CheckoutSession
}

func (g *statusGateway) RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	if g.session == nil {
		return nil, errSessionLookup
	}
	return g.session, nil
}

var errSessionLookup = &paramError{"lookup failed"}

func newCheckoutRouter(checkout *fakeCheckout, gateway services.PaymentGateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cc := NewCheckoutController(checkout, gateway)
	r.POST("/checkout/session", cc.CreateSession)
	r.GET("/checkout/session-status", cc.SessionStatus)
	return r
}

func checkoutBody(productID uuid.UUID) string {
	return `{
		"customer": {"name": "Anna", "surname": "Nowak", "email": "anna@example.com"},
		"items": [{"id": "` + productID.String() + `", "quantity": 2}],
		"orderType": "pickup",
		"successUrl": "https://shop.example/success",
		"cancelUrl": "https://shop.example/cancel"
	}`
}

func TestCreateSessionReturnsRedirectURL(t *testing.T) {
	checkout := &fakeCheckout{url: "https://checkout.stripe.test/cs_1"}
	r := newCheckoutRouter(checkout, &statusGateway{})

	req := httptest.NewRequest(http.MethodPost, "/checkout/session", strings.NewReader(checkoutBody(uuid.New())))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["url"] != "https://checkout.stripe.test/cs_1" {
		t.Fatalf("unexpected url: %q", resp["url"])
	}
	if checkout.lastReq == nil || checkout.lastReq.Customer.Email != "anna@example.com" {
		t.Fatalf("request not passed through: %+v", checkout.lastReq)
	}
}

func TestCreateSessionRejectsInvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing items", `{"customer": {"name": "A", "surname": "B", "email": "a@b.c"}, "orderType": "pickup", "successUrl": "https://s", "cancelUrl": "https://c"}`},
		{"bad email", `{"customer": {"name": "A", "surname": "B", "email": "nope"}, "items": [{"id": "` + uuid.New().String() + `", "quantity": 1}], "orderType": "pickup", "successUrl": "https://s.example", "cancelUrl": "https://c.example"}`},
		{"zero quantity", `{"customer": {"name": "A", "surname": "B", "email": "a@b.c"}, "items": [{"id": "` + uuid.New().String() + `", "quantity": 0}], "orderType": "pickup", "successUrl": "https://s.example", "cancelUrl": "https://c.example"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checkout := &fakeCheckout{url: "https://checkout.stripe.test/cs_1"}
			r := newCheckoutRouter(checkout, &statusGateway{})

			req := httptest.NewRequest(http.MethodPost, "/checkout/session", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if checkout.lastReq != nil {
				t.Fatal("service must not be called on invalid input")
			}
		})
	}
}

func TestCreateSessionPropagatesServiceError(t *testing.T) {
	checkout := &fakeCheckout{err: &services.ServiceError{StatusCode: 500, Message: "Failed to create checkout session"}}
	r := newCheckoutRouter(checkout, &statusGateway{})

	req := httptest.NewRequest(http.MethodPost, "/checkout/session", strings.NewReader(checkoutBody(uuid.New())))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestSessionStatus(t *testing.T) {
	orderID := uuid.New().String()
	gateway := &statusGateway{session: &stripe.CheckoutSession{
		Status:        stripe.CheckoutSessionStatusComplete,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Metadata:      map[string]string{"orderId": orderID},
	}}
	r := newCheckoutRouter(&fakeCheckout{}, gateway)

	req := httptest.NewRequest(http.MethodGet, "/checkout/session-status?session_id=cs_1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["status"] != "complete" || resp["paymentStatus"] != "paid" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp["orderId"] != orderID {
		t.Fatalf("expected order id %s, got %v", orderID, resp["orderId"])
	}
}

func TestSessionStatusRequiresSessionID(t *testing.T) {
	r := newCheckoutRouter(&fakeCheckout{}, &statusGateway{})

	req := httptest.NewRequest(http.MethodGet, "/checkout/session-status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSessionStatusProviderFailure(t *testing.T) {
	r := newCheckoutRouter(&fakeCheckout{}, &statusGateway{session: nil})

	req := httptest.NewRequest(http.MethodGet, "/checkout/session-status?session_id=cs_missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}
