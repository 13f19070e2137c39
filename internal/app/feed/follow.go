package feed

import (
	"context"
	"errors"

	"github.com/dalemusser/yatube/internal/app/policy/followpolicy"
	"github.com/dalemusser/yatube/internal/app/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Follow makes follower follow the user named username. Following yourself
// or someone you already follow is silently ignored; created reports whether
// a new edge was written. An unknown username returns ErrNotFound.
func (s *Service) Follow(ctx context.Context, follower primitive.ObjectID, username string) (created bool, err error) {
	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if followpolicy.CanFollow(&follower, target.ID) != followpolicy.Allow {
		return false, nil
	}
	exists, err := s.follows.Exists(ctx, follower, target.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := s.follows.Insert(ctx, follower, target.ID); err != nil {
		// a concurrent request won the insert
		if errors.Is(err, store.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	s.log.Info("follow created", zap.String("user_id", follower.Hex()), zap.String("author_id", target.ID.Hex()))
	return true, nil
}

// Unfollow removes the edge. Unlike Follow it is not idempotent: a missing
// edge (or unknown username) returns ErrNotFound.
func (s *Service) Unfollow(ctx context.Context, follower primitive.ObjectID, username string) error {
	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.follows.Delete(ctx, follower, target.ID)
}

// IsFollowing reports whether viewer follows author. The result is nil for
// an anonymous viewer, whose follow state is unknown.
func (s *Service) IsFollowing(ctx context.Context, viewer *primitive.ObjectID, author primitive.ObjectID) (*bool, error) {
	if viewer == nil {
		return nil, nil
	}
	ok, err := s.follows.Exists(ctx, *viewer, author)
	if err != nil {
		return nil, err
	}
	return &ok, nil
}
