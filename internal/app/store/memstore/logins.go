package memstore

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/dalemusser/yatube/internal/app/system/ratelimit"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Logins struct{ db *DB }

func (s *Logins) Create(_ context.Context, rec models.LoginRecord) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.db.stamp()
	}
	s.db.logins = append(s.db.logins, loginRow{LoginRecord: rec, seq: s.db.nextSeq()})
	return nil
}

func (s *Logins) CreateFrom(ctx context.Context, r *http.Request, userID primitive.ObjectID, provider string) error {
	return s.Create(ctx, models.LoginRecord{
		UserID:   userID,
		IP:       ratelimit.ClientIP(r),
		Provider: provider,
	})
}

func (s *Logins) RecentByUser(_ context.Context, userID primitive.ObjectID, limit int64) ([]models.LoginRecord, error) {
	s.db.mu.RLock()
	var rows []loginRow
	for _, row := range s.db.logins {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	s.db.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	if limit > 0 && int64(len(rows)) > limit {
		rows = rows[:limit]
	}
	out := make([]models.LoginRecord, len(rows))
	for i, row := range rows {
		out[i] = row.LoginRecord
	}
	return out, nil
}

func (s *Logins) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	kept := s.db.logins[:0]
	var n int64
	for _, row := range s.db.logins {
		if row.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	s.db.logins = kept
	return n, nil
}
