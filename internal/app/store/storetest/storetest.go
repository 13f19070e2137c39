// Package storetest is the behaviour every store backend must share. Backend
// test files call Run with a constructor for a fresh, empty backend.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/yatube/internal/app/feed"
	"github.com/dalemusser/yatube/internal/app/store"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore adds what auth and signup need on top of feed.UserStore.
type UserStore interface {
	feed.UserStore
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type GroupStore interface {
	feed.GroupStore
	Create(ctx context.Context, g models.Group) (models.Group, error)
}

// Backend is one complete set of stores.
type Backend struct {
	Users    UserStore
	Groups   GroupStore
	Posts    feed.PostStore
	Comments feed.CommentStore
	Follows  feed.FollowStore
}

// Run exercises the contract. newBackend must return an empty backend.
func Run(t *testing.T, newBackend func(t *testing.T) Backend) {
	t.Run("UsernameUniqueCaseInsensitive", func(t *testing.T) { usernameUnique(t, newBackend(t)) })
	t.Run("UserLookups", func(t *testing.T) { userLookups(t, newBackend(t)) })
	t.Run("GroupSlugs", func(t *testing.T) { groupSlugs(t, newBackend(t)) })
	t.Run("PostFilters", func(t *testing.T) { postFilters(t, newBackend(t)) })
	t.Run("PostWindowNewestFirst", func(t *testing.T) { postWindow(t, newBackend(t)) })
	t.Run("PostUpdateContent", func(t *testing.T) { postUpdate(t, newBackend(t)) })
	t.Run("CommentsOldestFirst", func(t *testing.T) { commentsOrder(t, newBackend(t)) })
	t.Run("FollowEdges", func(t *testing.T) { followEdges(t, newBackend(t)) })
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

func usernameUnique(t *testing.T, b Backend) {
	c := ctx(t)
	if _, err := b.Users.Create(c, models.User{Username: "Leo"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := b.Users.Create(c, models.User{Username: "leo"}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate username err = %v, want ErrDuplicate", err)
	}
	u, err := b.Users.GetByUsername(c, "LEO")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u.Username != "Leo" {
		t.Errorf("Username = %q, want original case", u.Username)
	}
}

func userLookups(t *testing.T, b Backend) {
	c := ctx(t)
	u, err := b.Users.Create(c, models.User{Username: "leo", Email: "Leo@Example.com", FullName: " Lev Tolstoy "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.AuthMethod != models.AuthPassword || u.FullName != "Lev Tolstoy" {
		t.Errorf("defaults not applied: %+v", u)
	}

	got, err := b.Users.GetByEmail(c, "leo@example.com")
	if err != nil || got.ID != u.ID {
		t.Errorf("GetByEmail = %v, %v", got.ID, err)
	}
	if _, err := b.Users.GetByEmail(c, ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByEmail(empty) err = %v", err)
	}
	if _, err := b.Users.GetByID(c, primitive.NewObjectID()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID(missing) err = %v", err)
	}

	m, err := b.Users.GetByIDs(c, []primitive.ObjectID{u.ID, primitive.NewObjectID()})
	if err != nil || len(m) != 1 || m[u.ID].Username != "leo" {
		t.Errorf("GetByIDs = %v, %v", m, err)
	}
}

func groupSlugs(t *testing.T, b Backend) {
	c := ctx(t)
	g, err := b.Groups.Create(c, models.Group{Slug: "Cats", Title: "Cats"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Slug != "cats" {
		t.Errorf("slug not normalized: %q", g.Slug)
	}
	if _, err := b.Groups.Create(c, models.Group{Slug: "cats", Title: "Other"}); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate slug err = %v", err)
	}
	b.Groups.Create(c, models.Group{Slug: "ants", Title: "Ants"})

	got, err := b.Groups.GetBySlug(c, "cats")
	if err != nil || got.ID != g.ID {
		t.Errorf("GetBySlug = %v, %v", got.ID, err)
	}
	if _, err := b.Groups.GetBySlug(c, "dogs"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetBySlug(missing) err = %v", err)
	}
	list, err := b.Groups.List(c)
	if err != nil || len(list) != 2 || list[0].Title != "Ants" {
		t.Errorf("List = %+v, %v", list, err)
	}
}

func postFilters(t *testing.T, b Backend) {
	c := ctx(t)
	a1, a2, a3 := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	g := primitive.NewObjectID()
	b.Posts.Create(c, models.Post{Text: "a1 in g", AuthorID: a1, GroupID: &g})
	b.Posts.Create(c, models.Post{Text: "a1", AuthorID: a1})
	b.Posts.Create(c, models.Post{Text: "a2", AuthorID: a2})
	b.Posts.Create(c, models.Post{Text: "a3 in g", AuthorID: a3, GroupID: &g})

	tests := []struct {
		name   string
		filter store.PostFilter
		want   int64
	}{
		{"all", store.PostFilter{}, 4},
		{"group", store.ForGroup(g), 2},
		{"author", store.ForAuthor(a1), 2},
		{"author set", store.PostFilter{AuthorIDs: []primitive.ObjectID{a1, a2}}, 3},
		{"empty author set", store.PostFilter{AuthorIDs: []primitive.ObjectID{}}, 0},
		{"group and author", store.PostFilter{GroupID: &g, AuthorIDs: []primitive.ObjectID{a3}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := b.Posts.Count(c, tt.filter)
			if err != nil || n != tt.want {
				t.Errorf("Count = %d, %v; want %d", n, err, tt.want)
			}
			list, err := b.Posts.List(c, tt.filter, 0, 10)
			if err != nil || int64(len(list)) != tt.want {
				t.Errorf("List len = %d, %v; want %d", len(list), err, tt.want)
			}
		})
	}
}

func postWindow(t *testing.T, b Backend) {
	c := ctx(t)
	author := primitive.NewObjectID()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		b.Posts.Create(c, models.Post{
			Text:      string(rune('a' + i)),
			AuthorID:  author,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	first, err := b.Posts.List(c, store.PostFilter{}, 0, 10)
	if err != nil || len(first) != 10 {
		t.Fatalf("page 1: %d posts, %v", len(first), err)
	}
	if first[0].Text != "m" || first[9].Text != "d" {
		t.Errorf("page 1 spans %q..%q, want m..d", first[0].Text, first[9].Text)
	}
	second, err := b.Posts.List(c, store.PostFilter{}, 10, 10)
	if err != nil || len(second) != 3 || second[2].Text != "a" {
		t.Errorf("page 2 = %d posts, %v", len(second), err)
	}
	past, err := b.Posts.List(c, store.PostFilter{}, 20, 10)
	if err != nil || len(past) != 0 {
		t.Errorf("past end = %d posts, %v", len(past), err)
	}
}

func postUpdate(t *testing.T, b Backend) {
	c := ctx(t)
	g1, g2 := primitive.NewObjectID(), primitive.NewObjectID()
	p, _ := b.Posts.Create(c, models.Post{Text: "old", AuthorID: primitive.NewObjectID(), GroupID: &g1, Image: "posts/a.png"})

	if err := b.Posts.UpdateContent(c, p.ID, "new", &g2, ""); err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	got, _ := b.Posts.GetByID(c, p.ID)
	if got.Text != "new" || got.GroupID == nil || *got.GroupID != g2 || got.Image != "posts/a.png" {
		t.Errorf("after update: %+v", got)
	}

	if err := b.Posts.UpdateContent(c, p.ID, "no group", nil, "posts/b.png"); err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	got, _ = b.Posts.GetByID(c, p.ID)
	if got.GroupID != nil || got.Image != "posts/b.png" {
		t.Errorf("group not cleared or image not replaced: %+v", got)
	}

	if err := b.Posts.UpdateContent(c, primitive.NewObjectID(), "x", nil, ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update missing err = %v", err)
	}
}

func commentsOrder(t *testing.T, b Backend) {
	c := ctx(t)
	post := primitive.NewObjectID()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b.Comments.Create(c, models.Comment{PostID: post, Text: "second", CreatedAt: base.Add(time.Minute)})
	b.Comments.Create(c, models.Comment{PostID: post, Text: "first", CreatedAt: base})
	b.Comments.Create(c, models.Comment{PostID: primitive.NewObjectID(), Text: "elsewhere"})

	list, err := b.Comments.ListByPost(c, post)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByPost = %d, %v", len(list), err)
	}
	if list[0].Text != "first" || list[1].Text != "second" {
		t.Errorf("order = %q, %q", list[0].Text, list[1].Text)
	}
}

func followEdges(t *testing.T, b Backend) {
	c := ctx(t)
	me, a, z := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	if ids, err := b.Follows.AuthorIDsFollowedBy(c, me); err != nil || ids == nil || len(ids) != 0 {
		t.Errorf("no follows: %v (nil=%v), %v", ids, ids == nil, err)
	}
	if err := b.Follows.Insert(c, me, a); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := b.Follows.Insert(c, me, a); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("second Insert err = %v, want ErrDuplicate", err)
	}
	b.Follows.Insert(c, me, z)

	if ok, _ := b.Follows.Exists(c, me, a); !ok {
		t.Error("Exists = false after Insert")
	}
	if ok, _ := b.Follows.Exists(c, a, me); ok {
		t.Error("follow edges must be directed")
	}
	ids, _ := b.Follows.AuthorIDsFollowedBy(c, me)
	if len(ids) != 2 {
		t.Errorf("AuthorIDsFollowedBy = %v", ids)
	}

	if err := b.Follows.Delete(c, me, a); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := b.Follows.Delete(c, me, a); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}
