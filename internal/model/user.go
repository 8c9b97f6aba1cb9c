package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role tags assignable to a user. Every account carries RoleUser; RoleAdmin
// is granted out of band (there is no endpoint that promotes a user).
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account document in the `users` collection. The bson
// field names mirror the wire names used by the frontend, so productsId and
// comments stay camelCased. Password and RefreshToken never serialize to
// JSON; handlers return users straight from this type.
type User struct {
	ID           bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string          `bson:"username" json:"username"`
	Email        string          `bson:"email" json:"email"`
	Password     string          `bson:"password" json:"-"`
	Roles        []string        `bson:"roles" json:"roles"`
	ProductIDs   []bson.ObjectID `bson:"productsId" json:"productsId"`
	CommentIDs   []bson.ObjectID `bson:"comments" json:"comments"`
	RefreshToken string          `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
}

// HasRole reports whether the user carries the given role tag.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin is a convenience wrapper used by ownership checks.
func (u User) IsAdmin() bool { return u.HasRole(RoleAdmin) }
