// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a text entry written by one author, optionally filed under a
// group and optionally carrying an image.
type Post struct {
	ID       primitive.ObjectID  `bson:"_id" json:"id"`
	Text     string              `bson:"text" json:"text"`
	AuthorID primitive.ObjectID  `bson:"author_id" json:"author_id"`
	GroupID  *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
	Image    string              `bson:"image,omitempty" json:"image,omitempty"` // media key, not a URL

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
