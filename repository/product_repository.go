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

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Product, error)
	Find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]*models.Product, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id uuid.UUID, updates bson.M) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		collection: db.Collection("products"),
	}
}

func notDeleted(filter bson.M) bson.M {
	filter["deleted_at"] = bson.M{"$exists": false}
	return filter
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, notDeleted(bson.M{"_id": id})).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs resolves all requested product ids in a single lookup. Ids with
// no matching document are simply absent from the result.
func (r *MongoProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Product, error) {
	filter := notDeleted(bson.M{"_id": bson.M{"$in": ids}})
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []*models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *MongoProductRepository) Find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]*models.Product, error) {
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []*models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *MongoProductRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	return r.collection.CountDocuments(ctx, filter)
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	_, err := r.collection.InsertOne(ctx, product)
	return err
}

func (r *MongoProductRepository) Update(ctx context.Context, id uuid.UUID, updates bson.M) (int64, error) {
	updates["updated_at"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), bson.M{"$set": updates})
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

// Delete performs a soft delete.
func (r *MongoProductRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	update := bson.M{"$set": bson.M{"deleted_at": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, notDeleted(bson.M{"_id": id}), update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}
