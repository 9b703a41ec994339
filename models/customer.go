package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the identity of a purchaser. Email is the natural lookup key
// and is stored lower-cased. Guests get Registered=false; the record may be
// linked to an authenticated account later.
type Customer struct {
	ID             uuid.UUID `bson:"_id" json:"id"`
	CustomerNumber int64     `bson:"customer_number" json:"customerNumber"`
	Name           string    `bson:"name" json:"name"`
	Surname        string    `bson:"surname" json:"surname"`
	Email          string    `bson:"email" json:"email"`
	Registered     bool      `bson:"registered" json:"registered"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}
