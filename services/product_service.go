package services

import (
	"context"
	"fmt"
	"time"

	"github.com/RafalSprengel/restaurant-pos-backend/models"
	"github.com/RafalSprengel/restaurant-pos-backend/repository"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ListProductsParams carries parsed catalog query parameters.
type ListProductsParams struct {
	Page       int
	PerPage    int
	CategoryID *uuid.UUID
	Vegetarian *bool
	GlutenFree *bool
	Sort       string
}

type ProductCreateRequest struct {
	Name        string    `json:"name" binding:"required"`
	Price       float64   `json:"price" binding:"required,gt=0"`
	CategoryID  uuid.UUID `json:"categoryId" binding:"required"`
	Vegetarian  bool      `json:"vegetarian"`
	GlutenFree  bool      `json:"glutenFree"`
	Ingredients []string  `json:"ingredients"`
	ImageURL    string    `json:"imageUrl"`
}

// S3Presigner is the subset of the S3 presign client used for image uploads.
type S3Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	presigner  S3Presigner
	bucket     string
	prefix     string
}

func NewProductService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	presigner S3Presigner,
	bucket, prefix string,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		presigner:  presigner,
		bucket:     bucket,
		prefix:     prefix,
	}
}

// ListProducts returns a filtered, sorted catalog page plus the total count.
func (s *ProductService) ListProducts(ctx context.Context, params ListProductsParams) ([]*models.Product, int64, error) {
	filter := bson.M{"deleted_at": bson.M{"$exists": false}}
	if params.CategoryID != nil {
		filter["category_id"] = *params.CategoryID
	}
	if params.Vegetarian != nil {
		filter["vegetarian"] = *params.Vegetarian
	}
	if params.GlutenFree != nil {
		filter["gluten_free"] = *params.GlutenFree
	}

	findOptions := options.Find().
		SetSkip(int64((params.Page - 1) * params.PerPage)).
		SetLimit(int64(params.PerPage))

	switch params.Sort {
	case "price_asc":
		findOptions.SetSort(bson.D{{Key: "price", Value: 1}})
	case "price_desc":
		findOptions.SetSort(bson.D{{Key: "price", Value: -1}})
	default:
		findOptions.SetSort(bson.D{{Key: "name", Value: 1}})
	}

	products, err := s.products.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		zap.L().Error("Failed to fetch product", zap.String("id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch product"}
	}
	return product, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *ProductCreateRequest) (*models.Product, *ServiceError) {
	if _, err := s.categories.FindByID(ctx, req.CategoryID); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &ServiceError{StatusCode: 400, Message: "Category does not exist"}
		}
		zap.L().Error("Failed to verify category", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create product"}
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Vegetarian:  req.Vegetarian,
		GlutenFree:  req.GlutenFree,
		Ingredients: req.Ingredients,
		ImageURL:    req.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Create(ctx, product); err != nil {
		zap.L().Error("Failed to create product", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create product"}
	}
	return product, nil
}

// UpdateProduct applies a partial $set patch. Unknown fields are rejected at
// the controller; a category change is re-validated here.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, updates bson.M) *ServiceError {
	if rawCategory, ok := updates["category_id"]; ok {
		categoryID, ok := rawCategory.(uuid.UUID)
		if !ok {
			return &ServiceError{StatusCode: 400, Message: "Invalid category id"}
		}
		if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
			if err == mongo.ErrNoDocuments {
				return &ServiceError{StatusCode: 400, Message: "Category does not exist"}
			}
			zap.L().Error("Failed to verify category", zap.Error(err))
			return &ServiceError{StatusCode: 500, Message: "Failed to update product"}
		}
	}

	matched, err := s.products.Update(ctx, id, updates)
	if err != nil {
		zap.L().Error("Failed to update product", zap.String("id", id.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to update product"}
	}
	if matched == 0 {
		return &ServiceError{StatusCode: 404, Message: "Product not found"}
	}
	return nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) *ServiceError {
	matched, err := s.products.Delete(ctx, id)
	if err != nil {
		zap.L().Error("Failed to delete product", zap.String("id", id.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete product"}
	}
	if matched == 0 {
		return &ServiceError{StatusCode: 404, Message: "Product not found"}
	}
	return nil
}

// GeneratePresignedUpload returns a presigned PUT URL for a product image.
// The upload itself goes straight to object storage; this service only signs.
func (s *ProductService) GeneratePresignedUpload(ctx context.Context, productID uuid.UUID, filename, contentType string, expires int64) (string, string, *ServiceError) {
	if s.presigner == nil {
		return "", "", &ServiceError{StatusCode: 503, Message: "Image uploads are not configured"}
	}
	if _, svcErr := s.GetProduct(ctx, productID); svcErr != nil {
		return "", "", svcErr
	}

	key := fmt.Sprintf("%s%s/%s", s.prefix, productID.String(), filename)
	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = time.Duration(expires) * time.Second
	})
	if err != nil {
		zap.L().Error("Failed to generate presigned upload", zap.String("key", key), zap.Error(err))
		return "", "", &ServiceError{StatusCode: 500, Message: "Failed to generate presigned upload"}
	}
	return request.URL, key, nil
}
