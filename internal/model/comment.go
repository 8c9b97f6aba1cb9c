package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MaxCommentLen bounds comment text length.
const MaxCommentLen = 250

// Rating bounds; a zero rating in a request defaults to MaxRating.
const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 5
)

// Comment is an annotation on a product authored by a user. UserID and
// ProductID are back-references that must stay consistent with the id lists
// on the corresponding user and product documents; every mutation that
// touches them runs inside an atomic unit.
type Comment struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Comment   string        `bson:"comment" json:"comment"`
	UserID    bson.ObjectID `bson:"user" json:"user"`
	ProductID bson.ObjectID `bson:"product" json:"product"`
	Ratings   int           `bson:"ratings" json:"ratings"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}

// CommentWithAuthor pairs a comment with its author's username for the
// product detail view. No other user fields are exposed.
type CommentWithAuthor struct {
	ID        bson.ObjectID `bson:"_id" json:"id"`
	Comment   string        `bson:"comment" json:"comment"`
	Ratings   int           `bson:"ratings" json:"ratings"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	Author    string        `bson:"author" json:"username"`
}
