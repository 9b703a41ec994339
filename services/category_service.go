package services

import (
	"context"
	"time"

	"github.com/RafalSprengel/restaurant-pos-backend/models"
	"github.com/RafalSprengel/restaurant-pos-backend/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type CategoryService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
}

func NewCategoryService(categories repository.CategoryRepository, products repository.ProductRepository) *CategoryService {
	return &CategoryService{categories: categories, products: products}
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]*models.Category, *ServiceError) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		zap.L().Error("Failed to fetch categories", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch categories"}
	}
	return categories, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, name string) (*models.Category, *ServiceError) {
	now := time.Now().UTC()
	category := &models.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		zap.L().Error("Failed to create category", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create category"}
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, name string) *ServiceError {
	matched, err := s.categories.Update(ctx, id, bson.M{"name": name})
	if err != nil {
		zap.L().Error("Failed to update category", zap.String("id", id.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to update category"}
	}
	if matched == 0 {
		return &ServiceError{StatusCode: 404, Message: "Category not found"}
	}
	return nil
}

// DeleteCategory refuses to remove a category that live products still
// reference.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) *ServiceError {
	inUse, err := s.products.Count(ctx, bson.M{
		"category_id": id,
		"deleted_at":  bson.M{"$exists": false},
	})
	if err != nil {
		zap.L().Error("Failed to check category usage", zap.String("id", id.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete category"}
	}
	if inUse > 0 {
		return &ServiceError{StatusCode: 400, Message: "Category is still referenced by products"}
	}

	deleted, err := s.categories.Delete(ctx, id)
	if err != nil {
		zap.L().Error("Failed to delete category", zap.String("id", id.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete category"}
	}
	if deleted == 0 {
		return &ServiceError{StatusCode: 404, Message: "Category not found"}
	}
	return nil
}
