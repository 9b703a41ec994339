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

// CustomerRepository defines the interface for customer data access.
type CustomerRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	UpdateContact(ctx context.Context, id uuid.UUID, name, surname string) error
	UpsertByEmail(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]*models.Customer, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
}

type MongoCustomerRepository struct {
	collection *mongo.Collection
}

func NewMongoCustomerRepository(db *mongo.Database) *MongoCustomerRepository {
	return &MongoCustomerRepository{
		collection: db.Collection("customers"),
	}
}

func (r *MongoCustomerRepository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *MongoCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *MongoCustomerRepository) UpdateContact(ctx context.Context, id uuid.UUID, name, surname string) error {
	update := bson.M{"$set": bson.M{
		"name":       name,
		"surname":    surname,
		"updated_at": time.Now().UTC(),
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// UpsertByEmail inserts the customer if no record with its email exists, or
// updates name/surname in place otherwise. The operation is a single atomic
// FindOneAndUpdate keyed by email, so concurrent checkouts from the same
// address cannot produce duplicate records.
func (r *MongoCustomerRepository) UpsertByEmail(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":       customer.Name,
			"surname":    customer.Surname,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":             customer.ID,
			"customer_number": customer.CustomerNumber,
			"email":           customer.Email,
			"registered":      customer.Registered,
			"created_at":      now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result models.Customer
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"email": customer.Email}, update, opts).Decode(&result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *MongoCustomerRepository) Find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]*models.Customer, error) {
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var customers []*models.Customer
	if err = cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *MongoCustomerRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	return r.collection.CountDocuments(ctx, filter)
}

// EnsureIndexes creates the unique email index backing the upsert.
func (r *MongoCustomerRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
