// internal/app/policy/followpolicy/followpolicy.go
package followpolicy

import "go.mongodb.org/mongo-driver/bson/primitive"

// Decision is the outcome of a follow check.
type Decision int

const (
	Allow Decision = iota
	DenyAnonymous
	// DenySelf is silent: following yourself is ignored rather than reported.
	DenySelf
)

// CanFollow reports whether follower may start following target.
func CanFollow(follower *primitive.ObjectID, target primitive.ObjectID) Decision {
	if follower == nil || follower.IsZero() {
		return DenyAnonymous
	}
	if *follower == target {
		return DenySelf
	}
	return Allow
}
