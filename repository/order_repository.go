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

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]*models.Order, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates bson.M) (int64, error)
}

type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	_, err := r.collection.InsertOne(ctx, order)
	return err
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) Find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]*models.Order, error) {
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrderRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	return r.collection.CountDocuments(ctx, filter)
}

// UpdateFields applies a $set of absolute field values to an order and
// returns the matched count. updated_at is always set. A zero matched count
// means no order with that id exists; callers decide whether that matters.
func (r *MongoOrderRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates bson.M) (int64, error) {
	updates["updated_at"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}
