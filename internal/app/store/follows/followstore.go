// internal/app/store/follows/followstore.go
package followstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/yatube/internal/app/store"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store keeps follow edges. The unique index on (user_id, author_id) makes
// Insert safe against concurrent double-clicks.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("follows")}
}

func (s *Store) Exists(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID, "author_id": authorID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Insert records userID following authorID. An existing pair returns
// store.ErrDuplicate.
func (s *Store) Insert(ctx context.Context, userID, authorID primitive.ObjectID) error {
	f := models.Follow{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

// Delete removes the pair, returning store.ErrNotFound if it was absent.
func (s *Store) Delete(ctx context.Context, userID, authorID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "author_id": authorID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// AuthorIDsFollowedBy lists the authors userID follows. The result is never
// nil so callers can hand it straight to a PostFilter.
func (s *Store) AuthorIDsFollowedBy(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, options.Find().SetProjection(bson.M{"author_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := []primitive.ObjectID{}
	for cur.Next(ctx) {
		var f models.Follow
		if err := cur.Decode(&f); err != nil {
			return nil, err
		}
		ids = append(ids, f.AuthorID)
	}
	return ids, cur.Err()
}
