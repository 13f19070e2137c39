// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"crypto/sha256"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	aboutfeature "github.com/dalemusser/yatube/internal/app/features/about"
	authgooglefeature "github.com/dalemusser/yatube/internal/app/features/authgoogle"
	errorsfeature "github.com/dalemusser/yatube/internal/app/features/errors"
	healthfeature "github.com/dalemusser/yatube/internal/app/features/health"
	loginfeature "github.com/dalemusser/yatube/internal/app/features/login"
	logoutfeature "github.com/dalemusser/yatube/internal/app/features/logout"
	postsfeature "github.com/dalemusser/yatube/internal/app/features/posts"
	"github.com/dalemusser/yatube/internal/app/feed"
	userstore "github.com/dalemusser/yatube/internal/app/store/users"
	"github.com/dalemusser/yatube/internal/app/system/auth"
	"github.com/dalemusser/yatube/internal/app/system/media"
	"github.com/dalemusser/yatube/internal/app/system/pagecache"
	"github.com/dalemusser/yatube/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// Yatube boots the page templates, applies session middleware, and mounts
// the feeds, post authoring, accounts and the static pages.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	stores := newBackends(deps)

	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Reload the user on each request so a renamed or removed account is
	// reflected immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(stores.users))

	images, err := newImages(context.Background(), appCfg)
	if err != nil {
		logger.Error("media store init failed", zap.String("storage_type", appCfg.StorageType), zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Set before any Mount so sub-routers inherit it.
	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(databasePinger(deps), cachePinger(deps), logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Uploaded post images. Backends with their own public URL are linked
	// directly; the route still serves anything stored there.
	r.Handle(images.Prefix()+"/*", images.Handler())

	// Static pages
	aboutHandler := aboutfeature.NewHandler(logger)
	r.Mount("/about", aboutfeature.Routes(aboutHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(stores.users, sessionMgr, errLog, appCfg.GoogleEnabled(), logger)
	loginHandler.Logins = stores.logins
	loginHandler.Limiter = ratelimit.NewLoginLimiter()
	r.Mount("/auth/login", loginfeature.Routes(loginHandler))
	r.Mount("/auth/signup", loginfeature.SignupRoutes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/auth/logout", logoutfeature.Routes(logoutHandler))

	if appCfg.GoogleEnabled() {
		stateKey := sha256.Sum256([]byte("oauth-state:" + appCfg.SessionKey))
		googleHandler := authgooglefeature.NewHandler(
			stores.users, sessionMgr,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL,
			stateKey[:], secure, logger,
		)
		googleHandler.Logins = stores.logins
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
		logger.Info("Google sign-in enabled", zap.String("redirect", googleHandler.RedirectURL))
	}

	// Feeds, posts, comments and follows
	svc := feed.New(stores.feedStores(), logger, feed.WithImageURL(images.URL))
	postsHandler := postsfeature.NewHandler(svc, images, errLog, logger)
	indexCache := pagecache.Middleware(newPageCache(deps), appCfg.IndexCacheTTL, pagecache.ViewerKey("index:"), logger)
	r.Mount("/", postsfeature.Routes(postsHandler, sessionMgr, indexCache))

	return r, nil
}

// newImages opens the post image store named by storage_type.
func newImages(ctx context.Context, appCfg AppConfig) (*media.Images, error) {
	if appCfg.StorageType != "s3" {
		return media.NewLocal(appCfg.MediaPath, appCfg.MediaURL)
	}
	store, err := storage.NewS3(ctx, storage.S3Config{
		Bucket:       appCfg.StorageS3Bucket,
		Region:       appCfg.StorageS3Region,
		Prefix:       appCfg.StorageS3Prefix,
		Endpoint:     appCfg.StorageS3Endpoint,
		UsePathStyle: appCfg.StorageS3Endpoint != "",
		BaseURL:      appCfg.StorageS3BaseURL,
	})
	if err != nil {
		return nil, err
	}
	return media.New(store, appCfg.MediaURL), nil
}

func newPageCache(deps DBDeps) pagecache.Cache {
	if deps.Redis != nil {
		return pagecache.NewRedis(deps.Redis, "yatube:page:")
	}
	return pagecache.NewMemory()
}

// databasePinger and cachePinger return an untyped nil for in-process
// backends so the health handler reports them as "memory".
func databasePinger(deps DBDeps) healthfeature.Pinger {
	if deps.MongoClient == nil {
		return nil
	}
	return healthfeature.MongoPinger{Client: deps.MongoClient}
}

func cachePinger(deps DBDeps) healthfeature.Pinger {
	if deps.Redis == nil {
		return nil
	}
	return healthfeature.RedisPinger{Client: deps.Redis}
}
