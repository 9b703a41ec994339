package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/RafalSprengel/restaurant-pos-backend/models"
	"github.com/RafalSprengel/restaurant-pos-backend/repository"
	"github.com/RafalSprengel/restaurant-pos-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// WebhookController consumes asynchronous payment-provider notifications and
// reconciles them against stored orders. Every event type applies an absolute
// state, so redelivered or reordered events converge to the same record.
type WebhookController struct {
	gateway services.PaymentGateway
	orders  repository.OrderRepository
}

func NewWebhookController(gateway services.PaymentGateway, orders repository.OrderRepository) *WebhookController {
	return &WebhookController{gateway: gateway, orders: orders}
}

// StripeWebhook verifies the provider signature, dispatches by event type and
// acknowledges. Signature failures get a bare client error before any
// dispatch; processing failures get a server error so the provider retries.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	event, err := wc.gateway.ParseWebhook(c.Request)
	if err != nil {
		zap.L().Warn("Stripe webhook signature verification failed", zap.Error(err))
		c.Status(http.StatusBadRequest)
		return
	}

	zap.L().Info("Processing Stripe webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	switch event.Type {
	case "checkout.session.completed":
		err = wc.handleSessionCompleted(c, event)
	case "payment_intent.succeeded":
		err = wc.handleIntentSucceeded(c, event)
	case "payment_intent.payment_failed":
		err = wc.handleIntentFailed(c, event)
	case "payment_intent.canceled":
		err = wc.handleIntentCanceled(c, event)
	default:
		zap.L().Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
	}

	if err != nil {
		zap.L().Error("Failed to apply webhook event",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (wc *WebhookController) handleSessionCompleted(c *gin.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return err
	}

	updates := bson.M{
		"status":                 models.StatusCompleted,
		"is_paid":                true,
		"paid_at":                time.Now().UTC(),
		"stripe_session_id":      sess.ID,
		"payment_failure_reason": "",
	}
	if sess.PaymentIntent != nil {
		updates["stripe_payment_intent_id"] = sess.PaymentIntent.ID
	}
	return wc.applyOrderUpdate(c, sess.Metadata["orderId"], updates)
}

func (wc *WebhookController) handleIntentSucceeded(c *gin.Context, event stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return err
	}

	return wc.applyOrderUpdate(c, pi.Metadata["orderId"], bson.M{
		"status":                   models.StatusCompleted,
		"is_paid":                  true,
		"paid_at":                  time.Now().UTC(),
		"stripe_payment_intent_id": pi.ID,
		"payment_failure_reason":   "",
	})
}

func (wc *WebhookController) handleIntentFailed(c *gin.Context, event stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return err
	}

	reason := "Unknown reason"
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		reason = pi.LastPaymentError.Msg
	}

	return wc.applyOrderUpdate(c, pi.Metadata["orderId"], bson.M{
		"status":                   models.StatusFailed,
		"is_paid":                  false,
		"stripe_payment_intent_id": pi.ID,
		"payment_failure_reason":   reason,
	})
}

func (wc *WebhookController) handleIntentCanceled(c *gin.Context, event stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return err
	}

	return wc.applyOrderUpdate(c, pi.Metadata["orderId"], bson.M{
		"status":                   models.StatusCanceled,
		"is_paid":                  false,
		"stripe_payment_intent_id": pi.ID,
		"payment_failure_reason":   "Canceled by customer",
	})
}

// applyOrderUpdate locates the order by the id carried in event metadata and
// applies the absolute update. Missing or unknown order ids are tolerated
// silently; provider redelivery and test events reference orders this system
// never stored.
func (wc *WebhookController) applyOrderUpdate(c *gin.Context, rawOrderID string, updates bson.M) error {
	if rawOrderID == "" {
		zap.L().Warn("Webhook event missing orderId metadata")
		return nil
	}
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		zap.L().Warn("Webhook event carries malformed orderId metadata", zap.String("order_id", rawOrderID))
		return nil
	}

	matched, err := wc.orders.UpdateFields(c.Request.Context(), orderID, updates)
	if err != nil {
		return err
	}
	if matched == 0 {
		zap.L().Info("Webhook event references unknown order", zap.String("order_id", rawOrderID))
	}
	return nil
}
