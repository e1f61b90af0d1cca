package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StateNames is the fixed, ordered state vocabulary of an order. An order
// materializes all five entries at creation and only ever flips their
// Confirmed flags afterwards; the slice order defines the allowed
// progression.
var StateNames = []string{
	StateShipped,
	StateAccepted,
	StateDispatched,
	StateDelivered,
	StateLiquidated,
}

const (
	StateShipped    = "shipped"
	StateAccepted   = "accepted"
	StateDispatched = "dispatched"
	StateDelivered  = "delivered"
	StateLiquidated = "liquidated"
)

// OrderState is one entry of an order's state timeline.
type OrderState struct {
	Name        string     `bson:"name" json:"name"`
	Confirmed   bool       `bson:"confirmed" json:"confirmed"`
	ConfirmedAt *time.Time `bson:"confirmedAt,omitempty" json:"confirmed_at,omitempty"`
}

// ProductSnapshot is the immutable copy of a product taken at order
// creation. Later price or name changes on the catalog product do not
// affect placed orders.
type ProductSnapshot struct {
	Name  string             `bson:"name" json:"name"`
	Price float64            `bson:"price" json:"price"`
	Store primitive.ObjectID `bson:"store" json:"store"`
}

// LineItem is one product batch inside an order.
type LineItem struct {
	Product  ProductSnapshot `bson:"product" json:"product"`
	Quantity int64           `bson:"quantity" json:"quantity"`
	Total    float64         `bson:"total" json:"total"`
}

// Order is a placed order. Client is stored as a list for compatibility
// with the historical document shape, but always holds exactly one user id.
type Order struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OrderNumber int64                `bson:"orderNumber" json:"order_number"`
	Client      []primitive.ObjectID `bson:"client" json:"client"`
	Items       []LineItem           `bson:"items" json:"items"`
	Total       float64              `bson:"total" json:"total"`
	States      []OrderState         `bson:"states" json:"states"`
	Finished    bool                 `bson:"finished" json:"finished"`
	CreatedAt   time.Time            `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updated_at"`
}

// ClientID returns the single user the order belongs to.
func (o *Order) ClientID() primitive.ObjectID {
	if len(o.Client) == 0 {
		return primitive.NilObjectID
	}
	return o.Client[0]
}

// MaterializeStates fills the full state timeline up front, with only the
// initial "shipped" state confirmed. Clients can then read the whole
// progression from a single document at any point.
func (o *Order) MaterializeStates(now time.Time) {
	o.States = make([]OrderState, len(StateNames))
	for i, name := range StateNames {
		o.States[i] = OrderState{Name: name}
		if name == StateShipped {
			at := now
			o.States[i].Confirmed = true
			o.States[i].ConfirmedAt = &at
		}
	}
}

// State returns the timeline entry with the given name, or nil if the name
// is not part of the vocabulary.
func (o *Order) State(name string) *OrderState {
	for i := range o.States {
		if o.States[i].Name == name {
			return &o.States[i]
		}
	}
	return nil
}

// NextState returns the name of the earliest unconfirmed state, or "" when
// the whole timeline is confirmed. Transitions are strictly linear: only
// this state may be confirmed next.
func (o *Order) NextState() string {
	for _, s := range o.States {
		if !s.Confirmed {
			return s.Name
		}
	}
	return ""
}

// Confirm flips the named state in place. It does not enforce ordering;
// callers go through the order service, which does.
func (o *Order) Confirm(name string, at time.Time) bool {
	s := o.State(name)
	if s == nil || s.Confirmed {
		return false
	}
	s.Confirmed = true
	s.ConfirmedAt = &at
	return true
}

// Close marks the order finished. No further transitions are permitted.
func (o *Order) Close() { o.Finished = true }

// DistinctStores returns every store referenced by the order's line items,
// each exactly once, in first-appearance order.
func (o *Order) DistinctStores() []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(o.Items))
	var stores []primitive.ObjectID
	for _, item := range o.Items {
		if !seen[item.Product.Store] {
			seen[item.Product.Store] = true
			stores = append(stores, item.Product.Store)
		}
	}
	return stores
}

// ValidState reports whether name belongs to the state vocabulary.
func ValidState(name string) bool {
	for _, s := range StateNames {
		if s == name {
			return true
		}
	}
	return false
}

// NewOrderNumber derives the human-facing numeric order id from the
// creation instant, like the legacy system did.
func NewOrderNumber(now time.Time) int64 {
	return now.UnixMilli()
}
