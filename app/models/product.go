package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog item owned by a store. Sold is a cumulative units
// counter, bumped only when an order reaches its terminal state.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Category    primitive.ObjectID `bson:"category" json:"category"`
	Store       primitive.ObjectID `bson:"store" json:"store"`
	Price       float64            `bson:"price" json:"price"`
	Size        string             `bson:"size" json:"size"`
	Description string             `bson:"description" json:"description"`
	Img         string             `bson:"img,omitempty" json:"img,omitempty"`
	ImgID       string             `bson:"img_id,omitempty" json:"img_id,omitempty"`
	Active      bool               `bson:"active" json:"active"`
	Sold        int64              `bson:"sold" json:"sold"`
	Rating      float64            `bson:"rating" json:"rating"`
	NumReviews  int                `bson:"numReviews" json:"num_reviews"`
	Reviews     []Review           `bson:"reviews" json:"reviews"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updated_at"`
}

// Snapshot copies the fields an order line item freezes at creation time.
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{Name: p.Name, Price: p.Price, Store: p.Store}
}
