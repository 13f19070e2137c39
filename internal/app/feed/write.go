package feed

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/yatube/internal/app/policy/postpolicy"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PostInput is the author-editable part of a post.
type PostInput struct {
	Text    string
	GroupID *primitive.ObjectID
	Image   string // media key; empty keeps the current image on edit
}

// CheckPostInput reports ErrEmptyText or ErrUnknownGroup for input that
// CreatePost and EditPost would refuse. Handlers call it before storing an
// upload.
func (s *Service) CheckPostInput(ctx context.Context, in PostInput) error {
	if strings.TrimSpace(in.Text) == "" {
		return ErrEmptyText
	}
	if in.GroupID != nil {
		if _, err := s.groups.GetByID(ctx, *in.GroupID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrUnknownGroup
			}
			return err
		}
	}
	return nil
}

// CreatePost publishes a new post owned by author.
func (s *Service) CreatePost(ctx context.Context, author primitive.ObjectID, in PostInput) (models.Post, error) {
	if err := s.CheckPostInput(ctx, in); err != nil {
		return models.Post{}, err
	}
	p, err := s.posts.Create(ctx, models.Post{
		Text:     in.Text,
		AuthorID: author,
		GroupID:  in.GroupID,
		Image:    in.Image,
	})
	if err != nil {
		return models.Post{}, err
	}
	s.log.Info("post created", zap.String("post_id", p.ID.Hex()), zap.String("author_id", author.Hex()))
	return p, nil
}

// Editable loads a post for its edit form, applying the same guard as
// EditPost.
func (s *Service) Editable(ctx context.Context, viewer *primitive.ObjectID, id primitive.ObjectID) (models.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if !postpolicy.CanEdit(viewer, p).Allowed() {
		return p, ErrNotAuthor
	}
	return p, nil
}

// EditPost changes text, group and optionally image. Anyone other than the
// author gets ErrNotAuthor and the post is left as it was.
func (s *Service) EditPost(ctx context.Context, viewer *primitive.ObjectID, id primitive.ObjectID, in PostInput) error {
	if _, err := s.Editable(ctx, viewer, id); err != nil {
		return err
	}
	if err := s.CheckPostInput(ctx, in); err != nil {
		return err
	}
	return s.posts.UpdateContent(ctx, id, in.Text, in.GroupID, in.Image)
}

// AddComment appends a comment by author to the post.
func (s *Service) AddComment(ctx context.Context, author, postID primitive.ObjectID, text string) (models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return models.Comment{}, ErrEmptyText
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return models.Comment{}, err
	}
	return s.comments.Create(ctx, models.Comment{PostID: postID, AuthorID: author, Text: text})
}
