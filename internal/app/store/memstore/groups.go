package memstore

import (
	"context"
	"errors"
	"sort"

	"github.com/dalemusser/yatube/internal/app/store"
	"github.com/dalemusser/yatube/internal/app/system/normalize"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Groups struct{ db *DB }

var errSlugRequired = errors.New("group slug is required")

func (s *Groups) Create(_ context.Context, g models.Group) (models.Group, error) {
	g.Slug = normalize.Slug(g.Slug)
	if g.Slug == "" {
		return models.Group{}, errSlugRequired
	}
	g.Title = normalize.Name(g.Title)

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.groups {
		if existing.Slug == g.Slug {
			return models.Group{}, store.ErrDuplicate
		}
	}
	g.ID = primitive.NewObjectID()
	g.CreatedAt = s.db.stamp()
	s.db.groups[g.ID] = g
	return g, nil
}

func (s *Groups) GetByID(_ context.Context, id primitive.ObjectID) (models.Group, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	g, ok := s.db.groups[id]
	if !ok {
		return models.Group{}, store.ErrNotFound
	}
	return g, nil
}

func (s *Groups) GetBySlug(_ context.Context, slug string) (models.Group, error) {
	slug = normalize.Slug(slug)
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, g := range s.db.groups {
		if g.Slug == slug {
			return g, nil
		}
	}
	return models.Group{}, store.ErrNotFound
}

func (s *Groups) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Group, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make(map[primitive.ObjectID]models.Group, len(ids))
	for _, id := range ids {
		if g, ok := s.db.groups[id]; ok {
			out[id] = g
		}
	}
	return out, nil
}

// List returns groups ordered by title.
func (s *Groups) List(_ context.Context) ([]models.Group, error) {
	s.db.mu.RLock()
	out := make([]models.Group, 0, len(s.db.groups))
	for _, g := range s.db.groups {
		out = append(out, g)
	}
	s.db.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}
