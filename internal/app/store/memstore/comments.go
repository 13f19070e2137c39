package memstore

import (
	"context"
	"sort"

	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comments struct{ db *DB }

func (s *Comments) Create(_ context.Context, c models.Comment) (models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c.ID = primitive.NewObjectID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.db.stamp()
	}
	s.db.comments[c.ID] = commentRow{Comment: c, seq: s.db.nextSeq()}
	return c, nil
}

// ListByPost returns comments oldest first.
func (s *Comments) ListByPost(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	s.db.mu.RLock()
	var rows []commentRow
	for _, r := range s.db.comments {
		if r.PostID == postID {
			rows = append(rows, r)
		}
	}
	s.db.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].seq < rows[j].seq
	})
	out := make([]models.Comment, len(rows))
	for i, r := range rows {
		out[i] = r.Comment
	}
	return out, nil
}
