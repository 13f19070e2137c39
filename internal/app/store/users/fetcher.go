package userstore

import (
	"context"

	"github.com/dalemusser/yatube/internal/app/system/auth"
	"github.com/dalemusser/yatube/internal/app/system/timeouts"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// byIDGetter is satisfied by every user backend.
type byIDGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// Fetcher implements auth.UserFetcher so each request sees current user data
// (a renamed account shows its new username immediately).
type Fetcher struct {
	users byIDGetter
}

// NewFetcher creates a UserFetcher over any user backend.
func NewFetcher(users byIDGetter) *Fetcher {
	return &Fetcher{users: users}
}

// FetchUser returns nil if the ID is malformed, the user is gone, or the
// lookup fails.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := f.users.GetByID(ctx, oid)
	if err != nil {
		return nil
	}
	return &auth.SessionUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Name:     u.DisplayName(),
	}
}
