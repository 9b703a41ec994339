package controllers

import (
	"context"
	"time"

	"github.com/RafalSprengel/restaurant-pos-backend/models"
	"github.com/RafalSprengel/restaurant-pos-backend/services"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

const DefaultCacheTTL = 5 * time.Minute

// CheckoutAPI is the checkout service surface used by controllers.
type CheckoutAPI interface {
	CreateSession(ctx context.Context, req *services.CheckoutRequest) (string, *services.ServiceError)
}

// ProductServiceAPI is the product service surface used by controllers.
type ProductServiceAPI interface {
	ListProducts(ctx context.Context, params services.ListProductsParams) ([]*models.Product, int64, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *services.ServiceError)
	CreateProduct(ctx context.Context, req *services.ProductCreateRequest) (*models.Product, *services.ServiceError)
	UpdateProduct(ctx context.Context, id uuid.UUID, updates bson.M) *services.ServiceError
	DeleteProduct(ctx context.Context, id uuid.UUID) *services.ServiceError
	GeneratePresignedUpload(ctx context.Context, id uuid.UUID, filename, contentType string, expires int64) (string, string, *services.ServiceError)
}

// CategoryServiceAPI is the category service surface used by controllers.
type CategoryServiceAPI interface {
	ListCategories(ctx context.Context) ([]*models.Category, *services.ServiceError)
	CreateCategory(ctx context.Context, name string) (*models.Category, *services.ServiceError)
	UpdateCategory(ctx context.Context, id uuid.UUID, name string) *services.ServiceError
	DeleteCategory(ctx context.Context, id uuid.UUID) *services.ServiceError
}

// OrderServiceAPI is the staff order service surface used by controllers.
type OrderServiceAPI interface {
	ListOrders(ctx context.Context, page, limit int, status models.OrderStatus) (*services.OrderListResponse, *services.ServiceError)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, *services.ServiceError)
	UpdateStatus(ctx context.Context, id uuid.UUID, next models.OrderStatus) *services.ServiceError
}

// CustomerServiceAPI is the staff customer service surface used by controllers.
type CustomerServiceAPI interface {
	ListCustomers(ctx context.Context, page, limit int, emailQuery string) (*services.CustomerListResponse, *services.ServiceError)
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, *services.ServiceError)
}
