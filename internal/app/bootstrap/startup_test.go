package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/yatube/internal/app/store/memstore"
	"github.com/dalemusser/yatube/internal/domain/models"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestParseSeedGroups(t *testing.T) {
	got, err := parseSeedGroups(" Cats|Cat lovers|All about cats ; dogs|Dogs ;; ")
	if err != nil {
		t.Fatalf("parseSeedGroups: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if got[0].Slug != "cats" || got[0].Title != "Cat lovers" || got[0].Description != "All about cats" {
		t.Errorf("first group = %+v", got[0])
	}
	if got[1].Slug != "dogs" || got[1].Title != "Dogs" || got[1].Description != "" {
		t.Errorf("second group = %+v", got[1])
	}
}

func TestParseSeedGroups_Empty(t *testing.T) {
	got, err := parseSeedGroups("")
	if err != nil || len(got) != 0 {
		t.Errorf("parseSeedGroups(\"\") = %v, %v", got, err)
	}
}

func TestParseSeedGroups_Invalid(t *testing.T) {
	for _, raw := range []string{"cats", "|Cats", "cats|", "cats|Cats;CATS|Again"} {
		t.Run(raw, func(t *testing.T) {
			if _, err := parseSeedGroups(raw); err == nil {
				t.Errorf("expected error for %q", raw)
			}
		})
	}
}

func TestSeedGroups_CreatesMissingOnly(t *testing.T) {
	db := memstore.New()
	ctx := context.Background()

	existing, err := db.Groups().Create(ctx, models.Group{Slug: "cats", Title: "Original"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	seeds := []models.Group{
		{Slug: "cats", Title: "Replaced"},
		{Slug: "dogs", Title: "Dogs"},
	}
	if err := seedGroups(ctx, db.Groups(), seeds, testLogger()); err != nil {
		t.Fatalf("seedGroups: %v", err)
	}
	// A second run is a no-op.
	if err := seedGroups(ctx, db.Groups(), seeds, testLogger()); err != nil {
		t.Fatalf("second seedGroups: %v", err)
	}

	all, err := db.Groups().List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(all))
	}
	cats, _ := db.Groups().GetBySlug(ctx, "cats")
	if cats.ID != existing.ID || cats.Title != "Original" {
		t.Errorf("existing group changed: %+v", cats)
	}
	if _, err := db.Groups().GetBySlug(ctx, "dogs"); err != nil {
		t.Errorf("dogs not created: %v", err)
	}
}

func TestValidateAppConfig(t *testing.T) {
	base := AppConfig{
		DBBackend:     "memory",
		CacheBackend:  "memory",
		IndexCacheTTL: 20 * time.Second,
		StorageType:   "local",
		MediaPath:     "./media",
	}

	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr bool
	}{
		{"memory ok", func(c *AppConfig) {}, false},
		{"mongo ok", func(c *AppConfig) {
			c.DBBackend = "mongo"
			c.MongoURI = "mongodb://localhost:27017"
			c.MongoDatabase = "yatube"
		}, false},
		{"mongo without database", func(c *AppConfig) {
			c.DBBackend = "mongo"
			c.MongoURI = "mongodb://localhost:27017"
		}, true},
		{"unknown backend", func(c *AppConfig) { c.DBBackend = "sqlite" }, true},
		{"unknown cache", func(c *AppConfig) { c.CacheBackend = "memcached" }, true},
		{"redis without addr", func(c *AppConfig) { c.CacheBackend = "redis" }, true},
		{"redis ok", func(c *AppConfig) { c.CacheBackend = "redis"; c.RedisAddr = "localhost:6379" }, false},
		{"zero ttl", func(c *AppConfig) { c.IndexCacheTTL = 0 }, true},
		{"no media path", func(c *AppConfig) { c.MediaPath = "" }, true},
		{"s3 without bucket", func(c *AppConfig) { c.StorageType = "s3" }, true},
		{"s3 ok", func(c *AppConfig) { c.StorageType = "s3"; c.StorageS3Bucket = "yatube-media"; c.MediaPath = "" }, false},
		{"unknown storage", func(c *AppConfig) { c.StorageType = "ftp" }, true},
		{"google half set", func(c *AppConfig) { c.GoogleClientID = "id" }, true},
		{"bad seeds", func(c *AppConfig) { c.SeedGroups = "cats" }, true},
		{"negative retention", func(c *AppConfig) { c.LoginRetention = -time.Hour }, true},
		{"retention without interval", func(c *AppConfig) { c.LoginRetention = time.Hour }, true},
		{"retention ok", func(c *AppConfig) { c.LoginRetention = time.Hour; c.LoginPruneInterval = time.Minute }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := validateAppConfig(cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewImages_Local(t *testing.T) {
	images, err := newImages(context.Background(), AppConfig{StorageType: "local", MediaPath: t.TempDir(), MediaURL: "/media"})
	if err != nil {
		t.Fatalf("newImages: %v", err)
	}
	if got := images.URL("posts/a.png"); got != "/media/posts/a.png" {
		t.Errorf("URL = %q", got)
	}
}

func TestConnectDB_Memory(t *testing.T) {
	deps, err := ConnectDB(context.Background(), nil, AppConfig{DBBackend: "memory", CacheBackend: "memory"}, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if deps.Memory == nil || deps.MongoClient != nil || deps.Redis != nil || deps.LoginPrune != nil {
		t.Errorf("unexpected deps: %+v", deps)
	}
	if err := EnsureSchema(context.Background(), nil, AppConfig{}, deps, testLogger()); err != nil {
		t.Errorf("EnsureSchema on memory: %v", err)
	}
}
