package repository

import (
	"context"
	"time"

	"github.com/RafalSprengel/restaurant-pos-backend/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindAll(ctx context.Context) ([]*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id uuid.UUID, updates bson.M) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type MongoCategoryRepository struct {
	collection *mongo.Collection
}

func NewMongoCategoryRepository(db *mongo.Database) *MongoCategoryRepository {
	return &MongoCategoryRepository{
		collection: db.Collection("categories"),
	}
}

func (r *MongoCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *MongoCategoryRepository) FindAll(ctx context.Context) ([]*models.Category, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []*models.Category
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *MongoCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	_, err := r.collection.InsertOne(ctx, category)
	return err
}

func (r *MongoCategoryRepository) Update(ctx context.Context, id uuid.UUID, updates bson.M) (int64, error) {
	updates["updated_at"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

func (r *MongoCategoryRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
