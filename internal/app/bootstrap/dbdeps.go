// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/yatube/internal/app/feed"
	commentstore "github.com/dalemusser/yatube/internal/app/store/comments"
	followstore "github.com/dalemusser/yatube/internal/app/store/follows"
	groupstore "github.com/dalemusser/yatube/internal/app/store/groups"
	loginstore "github.com/dalemusser/yatube/internal/app/store/logins"
	"github.com/dalemusser/yatube/internal/app/store/memstore"
	poststore "github.com/dalemusser/yatube/internal/app/store/posts"
	userstore "github.com/dalemusser/yatube/internal/app/store/users"
	"github.com/dalemusser/yatube/internal/app/system/workers"
	"github.com/dalemusser/yatube/internal/domain/models"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app. Exactly one of
// the Mongo pair and Memory is set; Redis is nil unless the page cache uses it.
// LoginPrune is nil when sign-in history is kept forever.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Memory        *memstore.DB
	Redis         *redis.Client
	LoginPrune    *workers.LoginPrune
}

// userStore is what sign-in, sign-up and the session fetcher need on top of
// the feed's reads.
type userStore interface {
	feed.UserStore
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
}

// loginStore records successful sign-ins and drops old ones.
type loginStore interface {
	CreateFrom(ctx context.Context, r *http.Request, userID primitive.ObjectID, provider string) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type groupStore interface {
	feed.GroupStore
	Create(ctx context.Context, g models.Group) (models.Group, error)
}

// backends are the stores over whichever database is configured.
type backends struct {
	users    userStore
	groups   groupStore
	posts    feed.PostStore
	comments feed.CommentStore
	follows  feed.FollowStore
	logins   loginStore
}

func (b backends) feedStores() feed.Stores {
	return feed.Stores{
		Users:    b.users,
		Groups:   b.groups,
		Posts:    b.posts,
		Comments: b.comments,
		Follows:  b.follows,
	}
}

func newBackends(deps DBDeps) backends {
	if deps.Memory != nil {
		return backends{
			users:    deps.Memory.Users(),
			groups:   deps.Memory.Groups(),
			posts:    deps.Memory.Posts(),
			comments: deps.Memory.Comments(),
			follows:  deps.Memory.Follows(),
			logins:   deps.Memory.Logins(),
		}
	}
	db := deps.MongoDatabase
	return backends{
		users:    userstore.New(db),
		groups:   groupstore.New(db),
		posts:    poststore.New(db),
		comments: commentstore.New(db),
		follows:  followstore.New(db),
		logins:   loginstore.New(db),
	}
}
