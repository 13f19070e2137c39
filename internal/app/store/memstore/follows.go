package memstore

import (
	"context"

	"github.com/dalemusser/yatube/internal/app/store"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Follows struct{ db *DB }

func (s *Follows) Exists(_ context.Context, userID, authorID primitive.ObjectID) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	_, ok := s.db.follows[followKey{userID, authorID}]
	return ok, nil
}

func (s *Follows) Insert(_ context.Context, userID, authorID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	k := followKey{userID, authorID}
	if _, ok := s.db.follows[k]; ok {
		return store.ErrDuplicate
	}
	s.db.follows[k] = models.Follow{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		AuthorID:  authorID,
		CreatedAt: s.db.stamp(),
	}
	return nil
}

func (s *Follows) Delete(_ context.Context, userID, authorID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	k := followKey{userID, authorID}
	if _, ok := s.db.follows[k]; !ok {
		return store.ErrNotFound
	}
	delete(s.db.follows, k)
	return nil
}

func (s *Follows) AuthorIDsFollowedBy(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	ids := []primitive.ObjectID{}
	for k := range s.db.follows {
		if k.user == userID {
			ids = append(ids, k.author)
		}
	}
	return ids, nil
}

// Len reports the number of follow edges.
func (s *Follows) Len() int {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return len(s.db.follows)
}
