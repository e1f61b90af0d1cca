package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups products inside a single store.
type Category struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Product   []primitive.ObjectID `bson:"product" json:"product"`
	Store     primitive.ObjectID   `bson:"store" json:"store"`
	Active    bool                 `bson:"active" json:"active"`
	CreatedAt time.Time            `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updated_at"`
}

// AddProduct appends a product id to the category's product list.
func (c *Category) AddProduct(productID primitive.ObjectID) {
	c.Product = append(c.Product, productID)
}

// RemoveProduct drops a product id from the category's product list.
func (c *Category) RemoveProduct(productID primitive.ObjectID) {
	kept := c.Product[:0]
	for _, id := range c.Product {
		if id != productID {
			kept = append(kept, id)
		}
	}
	c.Product = kept
}
