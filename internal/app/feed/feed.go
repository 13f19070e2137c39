// Package feed composes the stores into the pages and actions of the blog:
// paginated feeds, post detail, post and comment writes, and follows.
package feed

import (
	"context"
	"errors"

	"github.com/dalemusser/yatube/internal/app/store"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned for an unknown group slug, username or post.
	ErrNotFound = store.ErrNotFound
	// ErrNotAuthor is returned when someone other than the author edits a post.
	ErrNotAuthor = errors.New("only the author can edit this post")
	// ErrUnknownGroup is returned when a post names a group that does not exist.
	ErrUnknownGroup = errors.New("unknown group")
	// ErrEmptyText is returned for a post or comment with no text.
	ErrEmptyText = errors.New("text is required")
)

type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
}

type GroupStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
	GetBySlug(ctx context.Context, slug string) (models.Group, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Group, error)
	List(ctx context.Context) ([]models.Group, error)
}

type PostStore interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Post, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, text string, groupID *primitive.ObjectID, image string) error
	Count(ctx context.Context, f store.PostFilter) (int64, error)
	List(ctx context.Context, f store.PostFilter, skip, limit int64) ([]models.Post, error)
}

type CommentStore interface {
	Create(ctx context.Context, c models.Comment) (models.Comment, error)
	ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
}

type FollowStore interface {
	Exists(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error)
	Insert(ctx context.Context, userID, authorID primitive.ObjectID) error
	Delete(ctx context.Context, userID, authorID primitive.ObjectID) error
	AuthorIDsFollowedBy(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Stores bundles the backends the service reads and writes.
type Stores struct {
	Users    UserStore
	Groups   GroupStore
	Posts    PostStore
	Comments CommentStore
	Follows  FollowStore
}

type Service struct {
	users    UserStore
	groups   GroupStore
	posts    PostStore
	comments CommentStore
	follows  FollowStore
	imageURL func(key string) string
	log      *zap.Logger
}

// Option adjusts a Service at construction.
type Option func(*Service)

// WithImageURL sets how a stored image key becomes the URL put on PostView.
// Without it keys are served from /media/.
func WithImageURL(fn func(key string) string) Option {
	return func(s *Service) { s.imageURL = fn }
}

func New(s Stores, logger *zap.Logger, opts ...Option) *Service {
	svc := &Service{
		users:    s.Users,
		groups:   s.Groups,
		posts:    s.Posts,
		comments: s.Comments,
		follows:  s.Follows,
		imageURL: func(key string) string { return "/media/" + key },
		log:      logger,
	}
	for _, o := range opts {
		o(svc)
	}
	return svc
}

// ImageURL is the public URL of a stored image key, or "" for no image.
func (s *Service) ImageURL(key string) string {
	if key == "" {
		return ""
	}
	return s.imageURL(key)
}

// Groups lists every group, for the post form.
func (s *Service) Groups(ctx context.Context) ([]models.Group, error) {
	return s.groups.List(ctx)
}
