package memstore_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/yatube/internal/app/store/memstore"
	"github.com/dalemusser/yatube/internal/app/store/storetest"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Backend {
		db := memstore.New()
		return storetest.Backend{
			Users:    db.Users(),
			Groups:   db.Groups(),
			Posts:    db.Posts(),
			Comments: db.Comments(),
			Follows:  db.Follows(),
		}
	})
}

func TestLogins_RecentByUser(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	db := memstore.New(memstore.WithClock(func() time.Time { return now }))
	logins := db.Logins()
	ctx := context.Background()

	user, other := primitive.NewObjectID(), primitive.NewObjectID()
	r := httptest.NewRequest("POST", "/auth/login/", nil)
	r.RemoteAddr = "192.0.2.9:5000"

	// Same timestamp: insertion order decides.
	if err := logins.CreateFrom(ctx, r, user, models.ProviderPassword); err != nil {
		t.Fatalf("CreateFrom: %v", err)
	}
	if err := logins.CreateFrom(ctx, r, user, models.ProviderGoogle); err != nil {
		t.Fatalf("CreateFrom: %v", err)
	}
	if err := logins.CreateFrom(ctx, r, other, models.ProviderPassword); err != nil {
		t.Fatalf("CreateFrom: %v", err)
	}

	recs, err := logins.RecentByUser(ctx, user, 10)
	if err != nil {
		t.Fatalf("RecentByUser: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Provider != models.ProviderGoogle || recs[1].Provider != models.ProviderPassword {
		t.Errorf("order = %s, %s", recs[0].Provider, recs[1].Provider)
	}
	if recs[0].IP != "192.0.2.9" || !recs[0].CreatedAt.Equal(now) {
		t.Errorf("record = %+v", recs[0])
	}

	recs, _ = logins.RecentByUser(ctx, user, 1)
	if len(recs) != 1 {
		t.Errorf("limit not applied: %d", len(recs))
	}

	if n, _ := logins.DeleteBefore(ctx, now); n != 0 {
		t.Errorf("DeleteBefore(now) removed %d, want 0", n)
	}
	if n, _ := logins.DeleteBefore(ctx, now.Add(time.Second)); n != 3 {
		t.Errorf("DeleteBefore(later) removed %d, want 3", n)
	}
}
