package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile states. A user cannot place orders until the profile carries
// basic shipping information.
const (
	ProfileIncomplete = "incomplete"
	ProfileComplete   = "complete"
)

const defaultProfilePicture = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_960_720.png"

// User is an account record. Orders is a back-reference list of placed
// order ids; Client flips to true once the user has placed an order.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name"`
	Email          string               `bson:"email" json:"email"`
	Password       string               `bson:"password" json:"-"`
	ProfilePicture string               `bson:"profilePicture" json:"profile_picture"`
	Address        string               `bson:"address,omitempty" json:"address,omitempty"`
	Mobile         string               `bson:"mobile" json:"mobile"`
	Roles          []primitive.ObjectID `bson:"roles" json:"roles"`
	Subscribed     bool                 `bson:"subscribed" json:"subscribed"`
	ProfileState   string               `bson:"profileState" json:"profile_state"`
	Store          *primitive.ObjectID  `bson:"store,omitempty" json:"store,omitempty"`
	Orders         []primitive.ObjectID `bson:"orders" json:"orders"`
	Client         bool                 `bson:"client" json:"client"`
	EmailToken     string               `bson:"emailToken" json:"-"`
	CreatedAt      time.Time            `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updated_at"`
}

// NewUser builds an account with the defaults the legacy system applied.
func NewUser(name, email, hashedPassword, mobile, emailToken string) *User {
	now := time.Now()
	return &User{
		Name:           name,
		Email:          email,
		Password:       hashedPassword,
		Mobile:         mobile,
		ProfilePicture: defaultProfilePicture,
		ProfileState:   ProfileIncomplete,
		EmailToken:     emailToken,
		Orders:         []primitive.ObjectID{},
		Roles:          []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// AddOrder appends an order id to the back-reference list.
func (u *User) AddOrder(orderID primitive.ObjectID) {
	u.Orders = append(u.Orders, orderID)
}

// RemoveOrder drops an order id from the back-reference list.
func (u *User) RemoveOrder(orderID primitive.ObjectID) {
	kept := u.Orders[:0]
	for _, id := range u.Orders {
		if id != orderID {
			kept = append(kept, id)
		}
	}
	u.Orders = kept
}

// HasOrder reports whether the order id is in the back-reference list.
func (u *User) HasOrder(orderID primitive.ObjectID) bool {
	for _, id := range u.Orders {
		if id == orderID {
			return true
		}
	}
	return false
}

// CompleteProfile reports whether the account carries the shipping
// information required to place orders.
func (u *User) CompleteProfile() bool {
	return u.Address != "" && u.Mobile != ""
}
