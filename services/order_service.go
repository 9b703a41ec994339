package services

import (
	"context"

	"github.com/RafalSprengel/restaurant-pos-backend/models"
	"github.com/RafalSprengel/restaurant-pos-backend/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type OrderListResponse struct {
	Orders []*models.Order `json:"orders"`
	Meta   MetaData        `json:"meta"`
}

type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// OrderService backs the staff order panel. The checkout and webhook flows
// write orders; this service reads them and applies manual status changes.
type OrderService struct {
	orders repository.OrderRepository
}

func NewOrderService(orders repository.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// ListOrders returns paginated orders, newest first, optionally filtered by
// status.
func (s *OrderService) ListOrders(ctx context.Context, page, limit int, status models.OrderStatus) (*OrderListResponse, *ServiceError) {
	filter := bson.M{}
	if status != "" {
		if !status.Valid() {
			return nil, &ServiceError{StatusCode: 400, Message: "Invalid order status"}
		}
		filter["status"] = status
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	orders, err := s.orders.Find(ctx, filter, findOptions)
	if err != nil {
		zap.L().Error("Failed to fetch orders", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch orders"}
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		zap.L().Error("Failed to count orders", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch orders"}
	}

	if orders == nil {
		orders = []*models.Order{}
	}
	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: calculateTotalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		zap.L().Error("Failed to fetch order", zap.String("id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch order"}
	}
	return order, nil
}

// UpdateStatus applies a manual staff status change, validating the
// transition. Terminal states have no exit; payment fields are owned by the
// webhook handler and are not touched here.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, next models.OrderStatus) *ServiceError {
	if !next.Valid() {
		return &ServiceError{StatusCode: 400, Message: "Invalid order status"}
	}

	order, svcErr := s.GetOrder(ctx, id)
	if svcErr != nil {
		return svcErr
	}

	if !order.Status.CanTransition(next) {
		return &ServiceError{StatusCode: 409, Message: "Status transition not allowed"}
	}

	if _, err := s.orders.UpdateFields(ctx, id, bson.M{"status": next}); err != nil {
		zap.L().Error("Failed to update order status",
			zap.String("id", id.String()),
			zap.String("status", string(next)),
			zap.Error(err),
		)
		return &ServiceError{StatusCode: 500, Message: "Failed to update order status"}
	}
	return nil
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
