package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/yatube/internal/app/feed"
	"github.com/dalemusser/yatube/internal/app/store/memstore"
	"github.com/dalemusser/yatube/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call a handler method directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures builds test data in an in-memory backend.
type Fixtures struct {
	t   *testing.T
	db  *memstore.DB
	svc *feed.Service
}

// NewFixtures creates an empty backend whose clock advances one second per
// write, so creation order is also timestamp order.
func NewFixtures(t *testing.T) *Fixtures {
	t.Helper()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	db := memstore.New(memstore.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))
	return &Fixtures{
		t:   t,
		db:  db,
		svc: feed.New(Stores(db), zap.NewNop()),
	}
}

// Stores adapts a memstore to feed.Stores.
func Stores(db *memstore.DB) feed.Stores {
	return feed.Stores{
		Users:    db.Users(),
		Groups:   db.Groups(),
		Posts:    db.Posts(),
		Comments: db.Comments(),
		Follows:  db.Follows(),
	}
}

func (f *Fixtures) DB() *memstore.DB       { return f.db }
func (f *Fixtures) Service() *feed.Service { return f.svc }

// CreateUser adds a password user with no password set.
func (f *Fixtures) CreateUser(username string) models.User {
	f.t.Helper()
	u, err := f.db.Users().Create(context.Background(), models.User{Username: username, FullName: username + " Test"})
	if err != nil {
		f.t.Fatalf("create user %q: %v", username, err)
	}
	return u
}

func (f *Fixtures) CreateGroup(slug, title string) models.Group {
	f.t.Helper()
	g, err := f.db.Groups().Create(context.Background(), models.Group{Slug: slug, Title: title, Description: title + " group"})
	if err != nil {
		f.t.Fatalf("create group %q: %v", slug, err)
	}
	return g
}

// CreatePost adds a post; group may be nil.
func (f *Fixtures) CreatePost(author models.User, group *models.Group, text string) models.Post {
	f.t.Helper()
	p := models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		gid := group.ID
		p.GroupID = &gid
	}
	created, err := f.db.Posts().Create(context.Background(), p)
	if err != nil {
		f.t.Fatalf("create post: %v", err)
	}
	return created
}

// Post reloads a post, failing the test if it is gone.
func (f *Fixtures) Post(p models.Post) models.Post {
	f.t.Helper()
	got, err := f.db.Posts().GetByID(context.Background(), p.ID)
	if err != nil {
		f.t.Fatalf("reload post: %v", err)
	}
	return got
}
