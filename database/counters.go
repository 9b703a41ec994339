package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Counter names used by the application.
const (
	CustomerCounter = "customers"
	OrderCounter    = "orders"
)

// Counters hands out sequential numbers backed by an atomic $inc on a
// per-name counter document. Uniqueness holds under concurrent creations.
type Counters struct {
	collection *mongo.Collection
}

func NewCounters(db *mongo.Database) *Counters {
	return &Counters{
		collection: db.Collection("counters"),
	}
}

// Next increments and returns the sequence value for the given counter name.
func (c *Counters) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := c.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
