package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/RafalSprengel/restaurant-pos-backend/database"
	"github.com/RafalSprengel/restaurant-pos-backend/models"
	"github.com/RafalSprengel/restaurant-pos-backend/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type CheckoutItem struct {
	ID       uuid.UUID `json:"id" binding:"required"`
	Quantity int64     `json:"quantity" binding:"required,min=1"`
}

type CheckoutRequest struct {
	Customer struct {
		Name    string `json:"name" binding:"required"`
		Surname string `json:"surname" binding:"required"`
		Email   string `json:"email" binding:"required,email"`
	} `json:"customer" binding:"required"`
	Items           []CheckoutItem          `json:"items" binding:"required,min=1,dive"`
	OrderType       models.OrderType        `json:"orderType" binding:"required"`
	DeliveryAddress *models.DeliveryAddress `json:"deliveryAddress"`
	OrderTime       string                  `json:"orderTime"`
	Note            string                  `json:"note"`
	SuccessURL      string                  `json:"successUrl" binding:"required,url"`
	CancelURL       string                  `json:"cancelUrl" binding:"required,url"`
}

// SequenceSource hands out sequential customer/order numbers.
type SequenceSource interface {
	Next(ctx context.Context, name string) (int64, error)
}

// CheckoutService converts a client cart plus customer details into a
// persisted order and a hosted-payment redirect URL.
type CheckoutService struct {
	customers repository.CustomerRepository
	products  repository.ProductRepository
	orders    repository.OrderRepository
	sequences SequenceSource
	gateway   PaymentGateway
}

func NewCheckoutService(
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	sequences SequenceSource,
	gateway PaymentGateway,
) *CheckoutService {
	return &CheckoutService{
		customers: customers,
		products:  products,
		orders:    orders,
		sequences: sequences,
		gateway:   gateway,
	}
}

// CreateSession runs the checkout flow: customer upsert, authoritative price
// lookup, order persistence, provider session creation. The customer upsert
// and order insert are real writes even if the provider call fails afterwards.
func (s *CheckoutService) CreateSession(ctx context.Context, req *CheckoutRequest) (string, *ServiceError) {
	if !req.OrderType.Valid() {
		return "", &ServiceError{StatusCode: 400, Message: "Invalid order type"}
	}
	if req.OrderType == models.OrderTypeDelivery && req.DeliveryAddress == nil {
		return "", &ServiceError{StatusCode: 400, Message: "Delivery address is required for delivery orders"}
	}

	customer, err := s.upsertCustomer(ctx, req)
	if err != nil {
		zap.L().Error("Checkout: customer upsert failed", zap.Error(err))
		return "", &ServiceError{StatusCode: 500, Message: "Failed to create checkout session"}
	}

	order, svcErr := s.buildOrder(ctx, req, customer)
	if svcErr != nil {
		return "", svcErr
	}

	if err := s.orders.Create(ctx, order); err != nil {
		zap.L().Error("Checkout: failed to persist order", zap.Error(err))
		return "", &ServiceError{StatusCode: 500, Message: "Failed to create checkout session"}
	}

	input := CheckoutSessionInput{
		OrderID:       order.ID.String(),
		CustomerEmail: customer.Email,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
	}
	for _, item := range order.Items {
		if item.Quantity <= 0 {
			// Stripe rejects zero-quantity lines; the order snapshot keeps them.
			continue
		}
		input.Lines = append(input.Lines, SessionLine{
			Name:       item.Name,
			UnitAmount: int64(math.Round(item.UnitPrice * 100)),
			Quantity:   item.Quantity,
		})
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, input)
	if err != nil {
		zap.L().Error("Checkout: provider session creation failed",
			zap.String("order_id", order.ID.String()),
			zap.Int64("order_number", order.OrderNumber),
			zap.Error(err),
		)
		// The order is already persisted; mark it failed rather than leaving
		// it stranded in "new" with no provider identifiers.
		if _, uerr := s.orders.UpdateFields(ctx, order.ID, bson.M{
			"status":                 models.StatusFailed,
			"payment_failure_reason": "Payment session creation failed",
		}); uerr != nil {
			zap.L().Error("Checkout: failed to mark order failed", zap.String("order_id", order.ID.String()), zap.Error(uerr))
		}
		return "", &ServiceError{StatusCode: 500, Message: "Failed to create checkout session"}
	}

	if _, err := s.orders.UpdateFields(ctx, order.ID, bson.M{"stripe_session_id": sess.ID}); err != nil {
		zap.L().Warn("Checkout: failed to record session id on order",
			zap.String("order_id", order.ID.String()),
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
	}

	return sess.URL, nil
}

// upsertCustomer looks up the customer by normalized email, creating an
// unregistered record if none exists or refreshing name/surname otherwise.
// Email is the stable match key and is never changed here.
func (s *CheckoutService) upsertCustomer(ctx context.Context, req *CheckoutRequest) (*models.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(req.Customer.Email))

	existing, err := s.customers.FindByEmail(ctx, email)
	if err == nil {
		if err := s.customers.UpdateContact(ctx, existing.ID, req.Customer.Name, req.Customer.Surname); err != nil {
			return nil, err
		}
		existing.Name = req.Customer.Name
		existing.Surname = req.Customer.Surname
		return existing, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	number, err := s.sequences.Next(ctx, database.CustomerCounter)
	if err != nil {
		return nil, err
	}

	// Atomic insert-if-absent keyed by email. If a concurrent checkout won
	// the insert, this call degrades to the name/surname update and the
	// allocated number is simply skipped.
	return s.customers.UpsertByEmail(ctx, &models.Customer{
		ID:             uuid.New(),
		CustomerNumber: number,
		Name:           req.Customer.Name,
		Surname:        req.Customer.Surname,
		Email:          email,
		Registered:     false,
	})
}

// buildOrder resolves cart items against current product records and computes
// totals. Prices are re-read from storage, never trusted from the client.
// Cart entries whose product id resolves to nothing are dropped; resolved
// products with no cart entry default to quantity 0.
func (s *CheckoutService) buildOrder(ctx context.Context, req *CheckoutRequest, customer *models.Customer) (*models.Order, *ServiceError) {
	quantities := make(map[uuid.UUID]int64, len(req.Items))
	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		if _, seen := quantities[item.ID]; !seen {
			ids = append(ids, item.ID)
		}
		quantities[item.ID] += item.Quantity
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		zap.L().Error("Checkout: product lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create checkout session"}
	}

	byID := make(map[uuid.UUID]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var total float64
	items := make([]models.OrderItem, 0, len(ids))
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			continue
		}
		quantity := quantities[product.ID]
		lineTotal := product.Price * float64(quantity)
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			Name:        product.Name,
			UnitPrice:   product.Price,
			Quantity:    quantity,
			Total:       lineTotal,
			Vegetarian:  product.Vegetarian,
			GlutenFree:  product.GlutenFree,
			Ingredients: product.Ingredients,
		})
		total += lineTotal
	}

	number, err := s.sequences.Next(ctx, database.OrderCounter)
	if err != nil {
		zap.L().Error("Checkout: failed to allocate order number", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create checkout session"}
	}

	now := time.Now().UTC()
	return &models.Order{
		ID:          uuid.New(),
		OrderNumber: number,
		Customer: models.OrderCustomer{
			CustomerID:     customer.ID,
			CustomerNumber: customer.CustomerNumber,
			Name:           customer.Name,
			Surname:        customer.Surname,
			Email:          customer.Email,
			Registered:     customer.Registered,
		},
		Items:           items,
		TotalPrice:      total,
		OrderType:       req.OrderType,
		DeliveryAddress: req.DeliveryAddress,
		OrderTime:       req.OrderTime,
		Note:            req.Note,
		Status:          models.StatusNew,
		IsPaid:          false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
