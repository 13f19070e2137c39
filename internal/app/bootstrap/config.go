// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Yatube.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: YATUBE_MONGO_URI, YATUBE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "db_backend", Default: "mongo", Desc: "Storage backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "yatube", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "yatube-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "336h", Desc: "Session cookie lifetime (e.g., 336h)"},

	// Index page cache
	{Name: "cache_backend", Default: "memory", Desc: "Index page cache: 'memory' or 'redis'"},
	{Name: "redis_addr", Default: "localhost:6379", Desc: "Redis address for the page cache"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "index_cache_ttl", Default: "20s", Desc: "How long the index page is served from cache"},

	// Post images
	{Name: "storage_type", Default: "local", Desc: "Image storage backend: 'local' or 's3'"},
	{Name: "media_path", Default: "./media", Desc: "Directory for uploaded post images"},
	{Name: "media_url", Default: "/media", Desc: "URL prefix for serving post images"},
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "yatube/", Desc: "S3 key prefix"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "Custom S3 endpoint (MinIO and other S3-compatible services)"},
	{Name: "storage_s3_base_url", Default: "", Desc: "Public URL for stored images (bucket website or CDN)"},

	// Groups
	{Name: "seed_groups", Default: "", Desc: "Groups to create at startup: 'slug|title|description;...'"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL (OAuth callback)"},
	{Name: "site_name", Default: "Yatube", Desc: "Name shown in the page header"},

	{Name: "login_history_retention", Default: "2160h", Desc: "How long sign-in history is kept (0 keeps it forever)"},
	{Name: "login_prune_interval", Default: "1h", Desc: "How often old sign-in history is removed"},

	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document store calls"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for feed queries"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, YATUBE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "YATUBE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		DBBackend:        appValues.String("db_backend"),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 14*24*time.Hour),

		CacheBackend:  appValues.String("cache_backend"),
		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),
		IndexCacheTTL: appValues.Duration("index_cache_ttl", 20*time.Second),

		StorageType: appValues.String("storage_type"),
		MediaPath:   appValues.String("media_path"),
		MediaURL:    appValues.String("media_url"),

		StorageS3Region:   appValues.String("storage_s3_region"),
		StorageS3Bucket:   appValues.String("storage_s3_bucket"),
		StorageS3Prefix:   appValues.String("storage_s3_prefix"),
		StorageS3Endpoint: appValues.String("storage_s3_endpoint"),
		StorageS3BaseURL:  appValues.String("storage_s3_base_url"),

		SeedGroups: appValues.String("seed_groups"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		BaseURL:  appValues.String("base_url"),
		SiteName: appValues.String("site_name"),

		LoginRetention:     appValues.Duration("login_history_retention", 90*24*time.Hour),
		LoginPruneInterval: appValues.Duration("login_prune_interval", time.Hour),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	return validateAppConfig(appCfg, logger)
}

func validateAppConfig(appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.DBBackend {
	case "memory":
		logger.Warn("using the in-memory store; data is lost on restart")
	case "mongo":
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required")
		}
	default:
		return fmt.Errorf("unknown db_backend %q (want mongo or memory)", appCfg.DBBackend)
	}

	switch appCfg.CacheBackend {
	case "memory":
	case "redis":
		if appCfg.RedisAddr == "" {
			return fmt.Errorf("cache_backend redis requires redis_addr")
		}
	default:
		return fmt.Errorf("unknown cache_backend %q (want memory or redis)", appCfg.CacheBackend)
	}

	if appCfg.IndexCacheTTL <= 0 {
		return fmt.Errorf("index_cache_ttl must be positive, got %s", appCfg.IndexCacheTTL)
	}
	if appCfg.LoginRetention < 0 {
		return fmt.Errorf("login_history_retention must not be negative, got %s", appCfg.LoginRetention)
	}
	if appCfg.LoginRetention > 0 && appCfg.LoginPruneInterval <= 0 {
		return fmt.Errorf("login_prune_interval must be positive, got %s", appCfg.LoginPruneInterval)
	}
	switch appCfg.StorageType {
	case "local":
		if appCfg.MediaPath == "" {
			return fmt.Errorf("media_path is required")
		}
	case "s3":
		if appCfg.StorageS3Bucket == "" {
			return fmt.Errorf("storage_type s3 requires storage_s3_bucket")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want local or s3)", appCfg.StorageType)
	}
	if (appCfg.GoogleClientID == "") != (appCfg.GoogleClientSecret == "") {
		return fmt.Errorf("google_client_id and google_client_secret must be set together")
	}
	if _, err := parseSeedGroups(appCfg.SeedGroups); err != nil {
		return err
	}
	return nil
}
