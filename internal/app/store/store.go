// internal/app/store/store.go
package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors shared by every backend so callers can use errors.Is without
// knowing which backend is wired.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// PostFilter narrows a post listing.
//
// AuthorIDs follows the nil/empty convention:
//   - nil means "any author"
//   - a non-nil empty slice means "no authors", so nothing matches
type PostFilter struct {
	GroupID   *primitive.ObjectID
	AuthorIDs []primitive.ObjectID
}

// ForAuthor returns a filter matching a single author.
func ForAuthor(id primitive.ObjectID) PostFilter {
	return PostFilter{AuthorIDs: []primitive.ObjectID{id}}
}

// ForGroup returns a filter matching a single group.
func ForGroup(id primitive.ObjectID) PostFilter {
	return PostFilter{GroupID: &id}
}

// MatchesNothing reports whether the filter can be answered without a query.
func (f PostFilter) MatchesNothing() bool {
	return f.AuthorIDs != nil && len(f.AuthorIDs) == 0
}
