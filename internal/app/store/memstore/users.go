package memstore

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/dalemusser/yatube/internal/app/store"
	"github.com/dalemusser/yatube/internal/app/system/normalize"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Users struct{ db *DB }

var errUsernameRequired = errors.New("username is required")

func (s *Users) Create(_ context.Context, u models.User) (models.User, error) {
	u.Username = normalize.Username(u.Username)
	if u.Username == "" {
		return models.User{}, errUsernameRequired
	}
	u.UsernameCI = text.Fold(u.Username)
	u.Email = normalize.Email(u.Email)
	u.FullName = normalize.Name(u.FullName)
	if u.AuthMethod == "" {
		u.AuthMethod = models.AuthPassword
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.users {
		if existing.UsernameCI == u.UsernameCI {
			return models.User{}, store.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = s.db.stamp()
	s.db.users[u.ID] = u
	return u, nil
}

func (s *Users) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	u, ok := s.db.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Users) GetByUsername(_ context.Context, username string) (models.User, error) {
	folded := text.Fold(normalize.Username(username))
	return s.find(func(u models.User) bool { return u.UsernameCI == folded })
}

func (s *Users) GetByEmail(_ context.Context, email string) (models.User, error) {
	email = normalize.Email(email)
	if email == "" {
		return models.User{}, store.ErrNotFound
	}
	return s.find(func(u models.User) bool { return u.Email == email })
}

func (s *Users) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make(map[primitive.ObjectID]models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.db.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *Users) find(match func(models.User) bool) (models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, u := range s.db.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}
