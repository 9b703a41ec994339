package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDineIn   OrderType = "dine-in"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDelivery, OrderTypePickup, OrderTypeDineIn:
		return true
	}
	return false
}

type DeliveryAddress struct {
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postal_code" json:"postalCode"`
}

// OrderCustomer is the snapshot of the customer embedded in an order.
// Denormalized so the order stays meaningful if the customer record changes.
type OrderCustomer struct {
	CustomerID     uuid.UUID `bson:"customer_id" json:"customerId"`
	CustomerNumber int64     `bson:"customer_number" json:"customerNumber"`
	Name           string    `bson:"name" json:"name"`
	Surname        string    `bson:"surname" json:"surname"`
	Email          string    `bson:"email" json:"email"`
	Registered     bool      `bson:"registered" json:"registered"`
}

// OrderItem is the snapshot of one product-quantity pairing at order time.
type OrderItem struct {
	ProductID   uuid.UUID `bson:"product_id" json:"productId"`
	Name        string    `bson:"name" json:"name"`
	UnitPrice   float64   `bson:"unit_price" json:"unitPrice"`
	Quantity    int64     `bson:"quantity" json:"quantity"`
	Total       float64   `bson:"total" json:"total"`
	Vegetarian  bool      `bson:"vegetarian" json:"vegetarian"`
	GlutenFree  bool      `bson:"gluten_free" json:"glutenFree"`
	Ingredients []string  `bson:"ingredients" json:"ingredients"`
}

// Order is the persisted record of a purchase attempt. TotalPrice is the sum
// of item totals captured at creation time and is never recomputed from live
// product prices.
type Order struct {
	ID                    uuid.UUID        `bson:"_id" json:"id"`
	OrderNumber           int64            `bson:"order_number" json:"orderNumber"`
	Customer              OrderCustomer    `bson:"customer" json:"customer"`
	Items                 []OrderItem      `bson:"items" json:"items"`
	TotalPrice            float64          `bson:"total_price" json:"totalPrice"`
	OrderType             OrderType        `bson:"order_type" json:"orderType"`
	DeliveryAddress       *DeliveryAddress `bson:"delivery_address,omitempty" json:"deliveryAddress,omitempty"`
	OrderTime             string           `bson:"order_time,omitempty" json:"orderTime,omitempty"`
	Note                  string           `bson:"note,omitempty" json:"note,omitempty"`
	Status                OrderStatus      `bson:"status" json:"status"`
	IsPaid                bool             `bson:"is_paid" json:"isPaid"`
	PaidAt                *time.Time       `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	StripeSessionID       string           `bson:"stripe_session_id,omitempty" json:"stripeSessionId,omitempty"`
	StripePaymentIntentID string           `bson:"stripe_payment_intent_id,omitempty" json:"stripePaymentIntentId,omitempty"`
	PaymentFailureReason  string           `bson:"payment_failure_reason,omitempty" json:"paymentFailureReason,omitempty"`
	CreatedAt             time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt             time.Time        `bson:"updated_at" json:"updatedAt"`
}
