// Package posts implements the post aggregate: a post owned by exactly one
// author, embedding its like-set and its ordered comment list. The aggregate
// is persisted and mutated as one document, so single-document write
// atomicity is the consistency boundary for every operation.
package posts

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is embedded in a Post. Comments are append-only: once added they
// are never edited or removed, and their order is append order.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Post is the aggregate root. Author is immutable after creation; the four
// content fields are mutable only by the author. Likes holds liking user ids
// with no duplicates.
type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title     string               `bson:"title" json:"title"`
	Content   string               `bson:"content" json:"content"`
	Excerpt   string               `bson:"excerpt" json:"excerpt"`
	Image     string               `bson:"image" json:"image"`
	Author    primitive.ObjectID   `bson:"author" json:"author"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []Comment            `bson:"comments" json:"comments"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ErrPostNotFound is the store-level sentinel for a missing post.
var ErrPostNotFound = errors.New("post not found")
