package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role names seeded at first boot.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Role is an access level referenced from User.Roles.
type Role struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// RoleNames is every role the seeder creates.
var RoleNames = []string{RoleUser, RoleModerator, RoleAdmin}
