package services

import (
	"context"
	"regexp"

	"github.com/RafalSprengel/restaurant-pos-backend/models"
	"github.com/RafalSprengel/restaurant-pos-backend/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type CustomerListResponse struct {
	Customers []*models.Customer `json:"customers"`
	Meta      MetaData           `json:"meta"`
}

type CustomerService struct {
	customers repository.CustomerRepository
}

func NewCustomerService(customers repository.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

// ListCustomers returns paginated customers, optionally filtered by an email
// substring.
func (s *CustomerService) ListCustomers(ctx context.Context, page, limit int, emailQuery string) (*CustomerListResponse, *ServiceError) {
	filter := bson.M{}
	if emailQuery != "" {
		filter["email"] = bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(emailQuery), Options: "i"}}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "customer_number", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	customers, err := s.customers.Find(ctx, filter, findOptions)
	if err != nil {
		zap.L().Error("Failed to fetch customers", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch customers"}
	}
	total, err := s.customers.Count(ctx, filter)
	if err != nil {
		zap.L().Error("Failed to count customers", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch customers"}
	}

	if customers == nil {
		customers = []*models.Customer{}
	}
	return &CustomerListResponse{
		Customers: customers,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: calculateTotalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, *ServiceError) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &ServiceError{StatusCode: 404, Message: "Customer not found"}
		}
		zap.L().Error("Failed to fetch customer", zap.String("id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch customer"}
	}
	return customer, nil
}
