// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/yatube/internal/app/store"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("posts")}
}

// newestFirst is the order of every feed. _id breaks ties between posts
// created in the same millisecond.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// Create inserts a post. CreatedAt is set here unless the caller supplied one.
func (s *Store) Create(ctx context.Context, p models.Post) (models.Post, error) {
	p.ID = primitive.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Post{}, store.ErrNotFound
		}
		return models.Post{}, err
	}
	return p, nil
}

// UpdateContent replaces the author-editable fields. A nil groupID clears the
// group; an empty image keeps the current one.
func (s *Store) UpdateContent(ctx context.Context, id primitive.ObjectID, text string, groupID *primitive.ObjectID, image string) error {
	set := bson.M{"text": text, "updated_at": time.Now().UTC()}
	update := bson.M{"$set": set}
	if groupID != nil {
		set["group_id"] = *groupID
	} else {
		update["$unset"] = bson.M{"group_id": ""}
	}
	if image != "" {
		set["image"] = image
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Count returns how many posts match f.
func (s *Store) Count(ctx context.Context, f store.PostFilter) (int64, error) {
	if f.MatchesNothing() {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, filterDoc(f))
}

// List returns one window of the posts matching f, newest first.
func (s *Store) List(ctx context.Context, f store.PostFilter, skip, limit int64) ([]models.Post, error) {
	if f.MatchesNothing() {
		return nil, nil
	}
	opts := options.Find().SetSort(newestFirst).SetSkip(skip).SetLimit(limit)
	cur, err := s.c.Find(ctx, filterDoc(f), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func filterDoc(f store.PostFilter) bson.M {
	filter := bson.M{}
	if f.GroupID != nil {
		filter["group_id"] = *f.GroupID
	}
	if f.AuthorIDs != nil {
		filter["author_id"] = bson.M{"$in": f.AuthorIDs}
	}
	return filter
}
