// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework side: ports, TLS, logging, CORS and request limits. Everything
// specific to the blog lives here.
type AppConfig struct {
	// Storage backend: "mongo" or "memory"
	DBBackend string

	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: yatube-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Index page cache: "memory" or "redis"
	CacheBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	IndexCacheTTL time.Duration

	// Post images
	StorageType string // Storage backend: "local" or "s3"
	MediaPath   string // local directory (e.g., "./media")
	MediaURL    string // URL prefix the images are served under (e.g., "/media")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region   string
	StorageS3Bucket   string
	StorageS3Prefix   string
	StorageS3Endpoint string // S3-compatible services such as MinIO
	StorageS3BaseURL  string // public URL for objects; blank serves them through MediaURL

	// Groups created at startup, "slug|title|description;..."
	SeedGroups string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for the OAuth callback, e.g. "https://yatube.example"
	BaseURL  string
	SiteName string

	// Sign-in history kept for LoginRetention (0 keeps it forever),
	// pruned every LoginPruneInterval
	LoginRetention     time.Duration
	LoginPruneInterval time.Duration

	// Store call deadlines
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c AppConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
