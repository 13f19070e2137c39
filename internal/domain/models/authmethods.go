// internal/domain/models/authmethods.go
package models

// Auth methods recorded on User.AuthMethod.
const (
	AuthPassword = "password"
	AuthGoogle   = "google"
)
