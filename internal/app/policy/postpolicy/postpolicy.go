// internal/app/policy/postpolicy/postpolicy.go
package postpolicy

import (
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Decision is the outcome of an authorization check on a post.
type Decision int

const (
	Allow Decision = iota
	DenyAnonymous
	DenyNotAuthor
)

func (d Decision) Allowed() bool { return d == Allow }

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyAnonymous:
		return "deny_anonymous"
	case DenyNotAuthor:
		return "deny_not_author"
	default:
		return "unknown"
	}
}

// CanEdit reports whether viewer may change p. Only the author may; a nil
// viewer is anonymous.
func CanEdit(viewer *primitive.ObjectID, p models.Post) Decision {
	if viewer == nil || viewer.IsZero() {
		return DenyAnonymous
	}
	if *viewer != p.AuthorID {
		return DenyNotAuthor
	}
	return Allow
}

// CanComment reports whether viewer may comment. Any signed-in user may.
func CanComment(viewer *primitive.ObjectID) Decision {
	if viewer == nil || viewer.IsZero() {
		return DenyAnonymous
	}
	return Allow
}
