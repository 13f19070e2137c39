package memstore

import (
	"context"

	"github.com/dalemusser/yatube/internal/app/store"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Posts struct{ db *DB }

func (s *Posts) Create(_ context.Context, p models.Post) (models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p.ID = primitive.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.db.stamp()
	}
	s.db.posts[p.ID] = postRow{Post: p, seq: s.db.nextSeq()}
	return p, nil
}

func (s *Posts) GetByID(_ context.Context, id primitive.ObjectID) (models.Post, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	row, ok := s.db.posts[id]
	if !ok {
		return models.Post{}, store.ErrNotFound
	}
	return row.Post, nil
}

func (s *Posts) UpdateContent(_ context.Context, id primitive.ObjectID, text string, groupID *primitive.ObjectID, image string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	row, ok := s.db.posts[id]
	if !ok {
		return store.ErrNotFound
	}
	row.Text = text
	row.GroupID = nil
	if groupID != nil {
		gid := *groupID
		row.GroupID = &gid
	}
	if image != "" {
		row.Image = image
	}
	row.UpdatedAt = s.db.stamp()
	s.db.posts[id] = row
	return nil
}

func (s *Posts) Count(ctx context.Context, f store.PostFilter) (int64, error) {
	return int64(len(s.matching(f))), nil
}

func (s *Posts) List(_ context.Context, f store.PostFilter, skip, limit int64) ([]models.Post, error) {
	rows := s.matching(f)
	sortPostsNewestFirst(rows)

	if skip >= int64(len(rows)) {
		return nil, nil
	}
	end := int64(len(rows))
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	out := make([]models.Post, 0, end-skip)
	for _, r := range rows[skip:end] {
		out = append(out, r.Post)
	}
	return out, nil
}

func (s *Posts) matching(f store.PostFilter) []postRow {
	if f.MatchesNothing() {
		return nil
	}
	var authors map[primitive.ObjectID]bool
	if f.AuthorIDs != nil {
		authors = make(map[primitive.ObjectID]bool, len(f.AuthorIDs))
		for _, id := range f.AuthorIDs {
			authors[id] = true
		}
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var out []postRow
	for _, r := range s.db.posts {
		if f.GroupID != nil && (r.GroupID == nil || *r.GroupID != *f.GroupID) {
			continue
		}
		if authors != nil && !authors[r.AuthorID] {
			continue
		}
		out = append(out, r)
	}
	return out
}
