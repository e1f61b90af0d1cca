package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is a seller's shop. It owns categories and products, and carries a
// back-reference list of orders that include its products.
type Store struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name          string               `bson:"name" json:"name"`
	Description   string               `bson:"description" json:"description"`
	Img           string               `bson:"img,omitempty" json:"img,omitempty"`
	ImgID         string               `bson:"img_id,omitempty" json:"img_id,omitempty"`
	Address       string               `bson:"address" json:"address"`
	City          string               `bson:"city" json:"city"`
	Phone         string               `bson:"phone" json:"phone"`
	LicNo         string               `bson:"lic_no" json:"lic_no"`
	Discount      string               `bson:"discount" json:"discount"`
	CheapestPrice float64              `bson:"cheapestPrice" json:"cheapest_price"`
	Orders        []primitive.ObjectID `bson:"orders" json:"orders"`
	Category      []primitive.ObjectID `bson:"category" json:"category"`
	StoreOwner    []primitive.ObjectID `bson:"storeOwner" json:"store_owner"`
	Active        bool                 `bson:"active" json:"active"`
	Reviews       []Review             `bson:"reviews" json:"reviews"`
	Rating        float64              `bson:"rating" json:"rating"`
	NumReviews    int                  `bson:"numReviews" json:"num_reviews"`
	CreatedAt     time.Time            `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updated_at"`
}

// AddOrder appends an order id to the back-reference list.
func (s *Store) AddOrder(orderID primitive.ObjectID) {
	s.Orders = append(s.Orders, orderID)
}

// RemoveOrder drops an order id from the back-reference list.
func (s *Store) RemoveOrder(orderID primitive.ObjectID) {
	kept := s.Orders[:0]
	for _, id := range s.Orders {
		if id != orderID {
			kept = append(kept, id)
		}
	}
	s.Orders = kept
}

// HasOrder reports whether the order id is in the back-reference list.
func (s *Store) HasOrder(orderID primitive.ObjectID) bool {
	for _, id := range s.Orders {
		if id == orderID {
			return true
		}
	}
	return false
}

// AddCategory appends a category id to the store's category list.
func (s *Store) AddCategory(categoryID primitive.ObjectID) {
	s.Category = append(s.Category, categoryID)
}
