package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID  `bson:"_id" json:"id"`
	Name        string     `bson:"name" json:"name"`
	Price       float64    `bson:"price" json:"price"`
	CategoryID  uuid.UUID  `bson:"category_id" json:"categoryId"`
	Vegetarian  bool       `bson:"vegetarian" json:"vegetarian"`
	GlutenFree  bool       `bson:"gluten_free" json:"glutenFree"`
	Ingredients []string   `bson:"ingredients" json:"ingredients"`
	ImageURL    string     `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
	DeletedAt   *time.Time `bson:"deleted_at,omitempty" json:"-"`
}

type Category struct {
	ID        uuid.UUID `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
